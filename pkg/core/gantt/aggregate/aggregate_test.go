package aggregate

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/matzehuels/ganttrow/pkg/core/scale"
	"github.com/matzehuels/ganttrow/pkg/core/timeline"
	"github.com/matzehuels/ganttrow/pkg/errors"
)

// monday is the first day of the test week.
var monday = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func day(d int, h int) time.Time {
	return monday.AddDate(0, 0, d).Add(time.Duration(h) * time.Hour)
}

func rec(id string, start, stop time.Time) timeline.Record {
	return timeline.Record{ID: id, Start: start, Stop: stop}
}

func weekCells(p scale.Precision) []timeline.Window {
	return scale.MustNew(scale.Week, p).Grid(scale.WindowAround(monday, scale.Week))
}

func TestAggregateRunMerge(t *testing.T) {
	records := []timeline.Record{
		rec("A", day(0, 0), day(2, 0)),
		rec("B", day(0, 0), day(2, 0)),
		rec("C", day(0, 0), day(1, 0)),
		rec("D", day(1, 0), day(2, 0)),
	}

	pills := Aggregate("row", records, weekCells(scale.PrecisionFull), nil)
	if len(pills) != 1 {
		t.Fatalf("len(pills) = %d, want 1: %+v", len(pills), pills)
	}
	p := pills[0]
	if p.Count != 3 {
		t.Errorf("Count = %d, want 3", p.Count)
	}
	if !p.Start.Equal(day(0, 0)) || !p.Stop.Equal(day(2, 0)) {
		t.Errorf("span = [%v, %v), want two days", p.Start, p.Stop)
	}
	for _, id := range []string{"A", "B", "C", "D"} {
		if !p.Contains(id) {
			t.Errorf("aggregate is missing %s", id)
		}
	}
	if len(p.AggregatedPills) != 4 {
		t.Errorf("len(AggregatedPills) = %d, want 4", len(p.AggregatedPills))
	}
}

func TestAggregateBreaks(t *testing.T) {
	tests := []struct {
		name      string
		records   []timeline.Record
		wantCount []int
	}{
		{
			name:      "count changes",
			records:   []timeline.Record{rec("A", day(0, 0), day(2, 0)), rec("B", day(0, 0), day(1, 0))},
			wantCount: []int{2, 1},
		},
		{
			name:      "same count without shared record",
			records:   []timeline.Record{rec("A", day(0, 0), day(1, 0)), rec("B", day(1, 0), day(2, 0))},
			wantCount: []int{1, 1},
		},
		{
			name:      "gap between records",
			records:   []timeline.Record{rec("A", day(0, 0), day(1, 0)), rec("B", day(2, 0), day(3, 0))},
			wantCount: []int{1, 1},
		},
		{
			name:      "one long record",
			records:   []timeline.Record{rec("A", day(0, 0), day(7, 0))},
			wantCount: []int{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pills := Aggregate("row", tt.records, weekCells(scale.PrecisionFull), nil)
			if len(pills) != len(tt.wantCount) {
				t.Fatalf("len(pills) = %d, want %d", len(pills), len(tt.wantCount))
			}
			for i, want := range tt.wantCount {
				if pills[i].Count != want {
					t.Errorf("pills[%d].Count = %d, want %d", i, pills[i].Count, want)
				}
				if pills[i].Level != 0 {
					t.Errorf("pills[%d].Level = %d, want 0", i, pills[i].Level)
				}
			}
		})
	}
}

func TestAggregateClipsToRecords(t *testing.T) {
	pills := Aggregate("row", []timeline.Record{rec("A", day(0, 6), day(0, 18))}, weekCells(scale.PrecisionFull), nil)
	if len(pills) != 1 {
		t.Fatalf("len(pills) = %d, want 1", len(pills))
	}
	if !pills[0].Start.Equal(day(0, 6)) || !pills[0].Stop.Equal(day(0, 18)) {
		t.Errorf("span = [%v, %v), want [06:00, 18:00)", pills[0].Start, pills[0].Stop)
	}
}

func TestAggregateQuarterCells(t *testing.T) {
	// Overlap only in the afternoon of Monday.
	records := []timeline.Record{
		rec("A", day(0, 0), day(0, 18)),
		rec("B", day(0, 12), day(1, 0)),
	}
	pills := Aggregate("row", records, weekCells(scale.PrecisionQuarter), nil)

	counts := make([]int, len(pills))
	for i, p := range pills {
		counts[i] = p.Count
	}
	want := []int{1, 2, 1}
	if fmt.Sprint(counts) != fmt.Sprint(want) {
		t.Fatalf("counts = %v, want %v", counts, want)
	}
	if !pills[1].Start.Equal(day(0, 12)) || !pills[1].Stop.Equal(day(0, 18)) {
		t.Errorf("overlap pill = [%v, %v)", pills[1].Start, pills[1].Stop)
	}
}

func TestAggregateDegenerate(t *testing.T) {
	pills := Aggregate("row", []timeline.Record{rec("A", day(1, 12), day(1, 12))}, weekCells(scale.PrecisionFull), nil)
	if len(pills) != 1 {
		t.Fatalf("len(pills) = %d, want 1", len(pills))
	}
	if !pills[0].Contains("A") || pills[0].Count != 1 {
		t.Errorf("degenerate record not aggregated: %+v", pills[0])
	}
}

func TestAggregateEmpty(t *testing.T) {
	if got := Aggregate("row", nil, weekCells(scale.PrecisionFull), nil); got != nil {
		t.Errorf("Aggregate(nil) = %v, want nil", got)
	}
	if got := Aggregate("row", []timeline.Record{rec("A", day(0, 0), day(1, 0))}, nil, nil); got != nil {
		t.Errorf("Aggregate(no cells) = %v, want nil", got)
	}
}

func TestAggregateConservation(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 8))
	window := scale.WindowAround(monday, scale.Week)
	for round := 0; round < 30; round++ {
		var records []timeline.Record
		for i := 0; i < 20; i++ {
			start := monday.Add(time.Duration(r.IntN(10*24)-24) * time.Hour)
			stop := start.Add(time.Duration(r.IntN(72)) * time.Hour)
			records = append(records, rec(fmt.Sprintf("r%d", i), start, stop))
		}

		pills := Aggregate("row", records, weekCells(scale.PrecisionHalf), nil)
		seen := make(map[string]bool)
		for _, p := range pills {
			for _, iv := range p.AggregatedPills {
				seen[iv.ID] = true
			}
		}
		for _, rc := range records {
			if rc.Interval().Overlaps(window.Start, window.Stop) && !seen[rc.ID] {
				t.Fatalf("round %d: %s overlaps the window but is in no aggregate", round, rc.ID)
			}
		}
	}
}

func TestAggregateConsolidation(t *testing.T) {
	records := []timeline.Record{
		{ID: "A", Start: day(0, 0), Stop: day(1, 0), Values: map[string]float64{"hours": 8}},
		{ID: "B", Start: day(0, 0), Stop: day(1, 0), Values: map[string]float64{"hours": 4}, Flags: map[string]bool{"archived": true}},
		{ID: "C", Start: day(0, 0), Stop: day(1, 0), Values: map[string]float64{"hours": 6}},
		{ID: "D", Start: day(2, 0), Stop: day(3, 0), Values: map[string]float64{"hours": 2}},
	}

	tests := []struct {
		name       string
		cons       Consolidation
		wantValue  []float64
		wantStatus []timeline.Status
	}{
		{
			name:       "threshold",
			cons:       Consolidation{Field: "hours", ExcludeField: "archived", MaxValue: 10},
			wantValue:  []float64{14, 2},
			wantStatus: []timeline.Status{timeline.StatusDanger, timeline.StatusSuccess},
		},
		{
			name:       "no exclusion",
			cons:       Consolidation{Field: "hours", MaxValue: 20},
			wantValue:  []float64{18, 2},
			wantStatus: []timeline.Status{timeline.StatusSuccess, timeline.StatusSuccess},
		},
		{
			name:       "zero maximum",
			cons:       Consolidation{Field: "hours"},
			wantValue:  []float64{18, 2},
			wantStatus: []timeline.Status{timeline.StatusDanger, timeline.StatusDanger},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cons := tt.cons
			pills := Aggregate("row", records, weekCells(scale.PrecisionFull), &cons)
			if len(pills) != 2 {
				t.Fatalf("len(pills) = %d, want 2", len(pills))
			}
			for i, p := range pills {
				if !p.Consolidated {
					t.Errorf("pills[%d].Consolidated = false", i)
				}
				if p.ConsolidationValue != tt.wantValue[i] {
					t.Errorf("pills[%d].ConsolidationValue = %v, want %v", i, p.ConsolidationValue, tt.wantValue[i])
				}
				if p.Status != tt.wantStatus[i] {
					t.Errorf("pills[%d].Status = %q, want %q", i, p.Status, tt.wantStatus[i])
				}
				if p.Shade != 0 {
					t.Errorf("pills[%d].Shade = %d, want 0 under consolidation", i, p.Shade)
				}
			}
		})
	}
}

func TestAggregateConsolidationPeakOnMerge(t *testing.T) {
	// One record spanning two days: the merged pill reports the daily sum,
	// not the sum over both days.
	records := []timeline.Record{
		{ID: "A", Start: day(0, 0), Stop: day(2, 0), Values: map[string]float64{"hours": 8}},
	}
	cons := Consolidation{Field: "hours", MaxValue: 6}
	pills := Aggregate("row", records, weekCells(scale.PrecisionFull), &cons)
	if len(pills) != 1 {
		t.Fatalf("len(pills) = %d, want 1", len(pills))
	}
	if pills[0].ConsolidationValue != 8 || !pills[0].ConsolidationExceeded {
		t.Errorf("merged pill = %v exceeded %v, want 8 exceeded", pills[0].ConsolidationValue, pills[0].ConsolidationExceeded)
	}
}

func TestAggregateConsolidationZeroMax(t *testing.T) {
	records := []timeline.Record{
		{ID: "A", Start: day(0, 0), Stop: day(1, 0), Values: map[string]float64{"hours": 8}},
		{ID: "B", Start: day(2, 0), Stop: day(3, 0)},
	}
	pills := Aggregate("row", records, weekCells(scale.PrecisionFull), &Consolidation{Field: "hours"})
	if len(pills) != 2 {
		t.Fatalf("len(pills) = %d, want 2", len(pills))
	}
	if p := pills[0]; !p.ConsolidationExceeded || p.Status != timeline.StatusDanger || p.ConsolidationMaxValue != 0 {
		t.Errorf("pills[0] = value %v exceeded %v status %q, want exceeded danger", p.ConsolidationValue, p.ConsolidationExceeded, p.Status)
	}
	// A record without the field sums to zero, which does not exceed zero.
	if p := pills[1]; p.ConsolidationExceeded || p.Status != timeline.StatusSuccess {
		t.Errorf("pills[1] = value %v exceeded %v status %q, want success", p.ConsolidationValue, p.ConsolidationExceeded, p.Status)
	}
}

func TestShade(t *testing.T) {
	tests := []struct {
		count, maxCount, want int
	}{
		{1, 3, 215},
		{3, 3, 138},
		{4, 4, 129},
		{2, 0, 215},
		{0, 5, 215},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_of_%d", tt.count, tt.maxCount), func(t *testing.T) {
			if got := Shade(tt.count, tt.maxCount); got != tt.want {
				t.Errorf("Shade(%d, %d) = %d, want %d", tt.count, tt.maxCount, got, tt.want)
			}
		})
	}
}

func TestID(t *testing.T) {
	a := ID("row", day(0, 0), day(1, 0))
	if a != ID("row", day(0, 0), day(1, 0)) {
		t.Error("ID is not deterministic")
	}
	if a == ID("other", day(0, 0), day(1, 0)) || a == ID("row", day(0, 0), day(2, 0)) {
		t.Error("ID collides across rows or spans")
	}
	if len(a) != 36 {
		t.Errorf("ID = %q, want a UUID", a)
	}
}

func TestConsolidationValidate(t *testing.T) {
	var nilCons *Consolidation
	if err := nilCons.Validate(); err != nil {
		t.Errorf("nil.Validate() = %v", err)
	}
	tests := []struct {
		name    string
		cons    Consolidation
		wantErr bool
	}{
		{"ok", Consolidation{Field: "hours", ExcludeField: "archived", MaxValue: 8}, false},
		{"missing field", Consolidation{MaxValue: 8}, true},
		{"bad exclude", Consolidation{Field: "hours", ExcludeField: "a b"}, true},
		{"negative max", Consolidation{Field: "hours", MaxValue: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cons.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.IsInvalid(err) {
				t.Errorf("Validate() code = %s, want an INVALID_* code", errors.GetCode(err))
			}
		})
	}
}
