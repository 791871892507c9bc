package unavail

import (
	"testing"
	"time"

	"github.com/matzehuels/ganttrow/pkg/core/scale"
	"github.com/matzehuels/ganttrow/pkg/core/timeline"
)

var d0 = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func hours(h float64) time.Time {
	return d0.Add(time.Duration(h * float64(time.Hour)))
}

func period(from, to float64) timeline.Period {
	return timeline.Period{Start: hours(from), Stop: hours(to)}
}

func daySlot() []timeline.Slot {
	return []timeline.Slot{{Start: d0, Stop: d0.AddDate(0, 0, 1)}}
}

func TestMergeWeekMonth(t *testing.T) {
	tests := []struct {
		name      string
		unit      scale.Unit
		precision scale.Precision
		periods   []timeline.Period
		want      timeline.Unavailability
	}{
		{"month full day", scale.Month, scale.PrecisionFull, []timeline.Period{period(0, 24)}, timeline.Full},
		{"month first nine hours", scale.Month, scale.PrecisionFull, []timeline.Period{period(0, 9)}, timeline.Available},
		{"week spanning several days", scale.Week, scale.PrecisionFull, []timeline.Period{period(-30, 48)}, timeline.Full},
		{"lunch break stays full", scale.Week, scale.PrecisionFull, []timeline.Period{period(0, 11.5), period(12.5, 24)}, timeline.Full},
		{"half precision morning", scale.Week, scale.PrecisionHalf, []timeline.Period{period(0, 11)}, timeline.FirstHalf},
		{"half precision afternoon", scale.Week, scale.PrecisionHalf, []timeline.Period{period(13, 24)}, timeline.SecondHalf},
		{"half precision both", scale.Month, scale.PrecisionHalf, []timeline.Period{period(1, 23)}, timeline.Full},
		{"full precision morning only", scale.Week, scale.PrecisionFull, []timeline.Period{period(0, 11)}, timeline.Available},
		{"straddling midpoint below threshold", scale.Week, scale.PrecisionHalf, []timeline.Period{period(8, 16)}, timeline.Available},
		{"exactly ten hours", scale.Week, scale.PrecisionHalf, []timeline.Period{period(2, 12)}, timeline.Available},
		{"quarter behaves as full", scale.Month, scale.PrecisionQuarter, []timeline.Period{period(0, 24)}, timeline.Full},
		{"outside slot", scale.Month, scale.PrecisionFull, []timeline.Period{period(24, 48)}, timeline.Available},
		{"morning capped at twelve", scale.Week, scale.PrecisionHalf, []timeline.Period{period(0, 12), period(0, 12)}, timeline.FirstHalf},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(daySlot(), tt.periods, tt.unit, tt.precision)
			if len(got) != 1 {
				t.Fatalf("len(Merge) = %d, want 1", len(got))
			}
			if got[0] != tt.want {
				t.Errorf("Merge() = %q, want %q", got[0], tt.want)
			}
		})
	}
}

func TestMergeDayAndYear(t *testing.T) {
	c := scale.MustNew(scale.Day, scale.PrecisionFull)
	slots := c.Slots(timeline.Window{Start: d0, Stop: d0.AddDate(0, 0, 1)})

	got := Merge(slots, []timeline.Period{period(9.75, 10.25)}, scale.Day, scale.PrecisionFull)
	for i, u := range got {
		want := timeline.Available
		if i == 9 || i == 10 {
			want = timeline.Full
		}
		if u != want {
			t.Errorf("hour %d = %q, want %q", i, u, want)
		}
	}

	months := scale.MustNew(scale.Year, scale.PrecisionFull).Slots(scale.WindowAround(d0, scale.Year))
	got = Merge(months, []timeline.Period{period(0, 1)}, scale.Year, scale.PrecisionFull)
	if got[2] != timeline.Full || got[1] != timeline.Available {
		t.Errorf("year months = %v, want March full", got)
	}
}

func TestMergeNoPeriods(t *testing.T) {
	got := Merge(daySlot(), nil, scale.Week, scale.PrecisionFull)
	if len(got) != 1 || got[0] != timeline.Available {
		t.Errorf("Merge(no periods) = %v", got)
	}
}

func TestAnnotate(t *testing.T) {
	slots := []timeline.Slot{
		{Start: d0, Stop: d0.AddDate(0, 0, 1)},
		{Start: d0.AddDate(0, 0, 1), Stop: d0.AddDate(0, 0, 2)},
	}
	Annotate(slots, []timeline.Period{period(24, 48)}, scale.Month, scale.PrecisionFull)
	if slots[0].Unavailability != timeline.Available || slots[1].Unavailability != timeline.Full {
		t.Errorf("slots = %q, %q", slots[0].Unavailability, slots[1].Unavailability)
	}
}

func TestHalves(t *testing.T) {
	m, a := halves(daySlot()[0], []timeline.Period{period(10, 15), period(20, 30)})
	if m != 2 || a != 7 {
		t.Errorf("halves = %v, %v, want 2, 7", m, a)
	}
}
