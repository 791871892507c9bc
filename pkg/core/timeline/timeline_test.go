package timeline

import (
	"testing"
	"time"

	"github.com/matzehuels/ganttrow/pkg/errors"
)

func at(h, m int) time.Time {
	return time.Date(2024, 3, 4, h, m, 0, 0, time.UTC)
}

func TestIntervalOverlaps(t *testing.T) {
	tests := []struct {
		name        string
		iv          Interval
		start, stop time.Time
		want        bool
	}{
		{"inside", Interval{Start: at(9, 0), Stop: at(10, 0)}, at(8, 0), at(12, 0), true},
		{"straddles start", Interval{Start: at(7, 0), Stop: at(9, 0)}, at(8, 0), at(12, 0), true},
		{"touches stop", Interval{Start: at(12, 0), Stop: at(13, 0)}, at(8, 0), at(12, 0), false},
		{"touches start", Interval{Start: at(7, 0), Stop: at(8, 0)}, at(8, 0), at(12, 0), false},
		{"degenerate inside", Interval{Start: at(9, 0), Stop: at(9, 0)}, at(8, 0), at(12, 0), true},
		{"degenerate at start", Interval{Start: at(8, 0), Stop: at(8, 0)}, at(8, 0), at(12, 0), true},
		{"degenerate at stop", Interval{Start: at(12, 0), Stop: at(12, 0)}, at(8, 0), at(12, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.iv.Overlaps(tt.start, tt.stop); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecordValidate(t *testing.T) {
	ok := Record{ID: "a", Start: at(9, 0), Stop: at(10, 0)}
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	bad := Record{ID: "b", Start: at(10, 0), Stop: at(9, 0)}
	if err := bad.Validate(); !errors.Is(err, errors.ErrCodeInvalidRange) {
		t.Errorf("Validate() = %v, want INVALID_RANGE", err)
	}

	noID := Record{Start: at(9, 0), Stop: at(10, 0)}
	if err := noID.Validate(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Validate() = %v, want INVALID_INPUT", err)
	}
}

func TestRecordValueAndFlag(t *testing.T) {
	r := Record{
		Values: map[string]float64{"hours": 4},
		Flags:  map[string]bool{"archived": true},
	}
	if got := r.Value("hours"); got != 4 {
		t.Errorf("Value(hours) = %v, want 4", got)
	}
	if got := r.Value("missing"); got != 0 {
		t.Errorf("Value(missing) = %v, want 0", got)
	}
	if !r.Flag("archived") {
		t.Error("Flag(archived) = false, want true")
	}
	if r.Flag("") {
		t.Error("Flag(\"\") = true, want false")
	}
	var empty Record
	if empty.Value("hours") != 0 || empty.Flag("archived") {
		t.Error("zero record should have no values or flags")
	}
}

func TestWindowClip(t *testing.T) {
	w := Window{Start: at(8, 0), Stop: at(18, 0)}

	tests := []struct {
		name                      string
		rec                       Record
		wantStart, wantStop       time.Time
		wantStartClip, wantStopCl bool
		wantOK                    bool
	}{
		{"inside", Record{ID: "a", Start: at(9, 0), Stop: at(10, 0)}, at(9, 0), at(10, 0), false, false, true},
		{"left", Record{ID: "b", Start: at(6, 0), Stop: at(10, 0)}, at(8, 0), at(10, 0), true, false, true},
		{"right", Record{ID: "c", Start: at(17, 0), Stop: at(20, 0)}, at(17, 0), at(18, 0), false, true, true},
		{"both", Record{ID: "d", Start: at(6, 0), Stop: at(20, 0)}, at(8, 0), at(18, 0), true, true, true},
		{"outside", Record{ID: "e", Start: at(19, 0), Stop: at(20, 0)}, at(19, 0), at(20, 0), false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, sc, stc, ok := w.Clip(tt.rec)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !got.Start.Equal(tt.wantStart) || !got.Stop.Equal(tt.wantStop) {
				t.Errorf("clipped = [%v, %v), want [%v, %v)", got.Start, got.Stop, tt.wantStart, tt.wantStop)
			}
			if sc != tt.wantStartClip || stc != tt.wantStopCl {
				t.Errorf("clip flags = %v/%v, want %v/%v", sc, stc, tt.wantStartClip, tt.wantStopCl)
			}
		})
	}
}

func TestWidthString(t *testing.T) {
	tests := []struct {
		w    Width
		want string
	}{
		{Width{Pct: 100}, "100%"},
		{Width{Pct: 50}, "50%"},
		{Width{Pct: 12.5}, "12.5%"},
		{Width{Pct: 300, Px: 2}, "calc(300% + 2px)"},
		{Width{}, "0%"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.w.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPillContains(t *testing.T) {
	p := Pill{Count: 2, AggregatedPills: []Interval{{ID: "a"}, {ID: "b"}}}
	if !p.IsAggregate() {
		t.Error("IsAggregate() = false, want true")
	}
	if !p.Contains("b") || p.Contains("c") {
		t.Error("Contains() mismatch")
	}
}

func TestSlotContains(t *testing.T) {
	s := Slot{Start: at(9, 0), Stop: at(10, 0)}
	if !s.Contains(at(9, 0)) || !s.Contains(at(9, 59)) || s.Contains(at(10, 0)) {
		t.Error("Slot.Contains is not half-open")
	}
}
