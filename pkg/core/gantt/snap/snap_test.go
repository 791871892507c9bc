package snap

import (
	"math"
	"testing"

	"github.com/matzehuels/ganttrow/pkg/core/scale"
	"github.com/matzehuels/ganttrow/pkg/errors"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name      string
		offset    float64
		cellWidth float64
		interval  int
		want      int
	}{
		{"zero offset", 0, 40, 60, 0},
		{"one cell right", 40, 40, 60, 60},
		{"one cell left", -40, 40, 60, -60},
		{"rounds down", 19, 40, 30, 0},
		{"rounds half away from zero", 20, 40, 30, 30},
		{"negative half", -20, 40, 30, -30},
		{"several cells", 130, 40, 6, 18},
		{"zero cell width", 100, 0, 60, 0},
		{"negative cell width", 100, -5, 60, 0},
		{"nan cell width", 100, math.NaN(), 60, 0},
		{"inf cell width", 100, math.Inf(1), 60, 0},
		{"nan offset", math.NaN(), 40, 60, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Diff(tt.offset, tt.cellWidth, tt.interval); got != tt.want {
				t.Errorf("Diff(%v, %v, %d) = %d, want %d", tt.offset, tt.cellWidth, tt.interval, got, tt.want)
			}
		})
	}
}

func TestDiffDeterministic(t *testing.T) {
	for i := 0; i < 100; i++ {
		if Diff(123.4, 17.5, 15) != Diff(123.4, 17.5, 15) {
			t.Fatal("Diff is not deterministic")
		}
	}
	for _, w := range []float64{1, 7.5, 40, 1000} {
		for _, n := range []int{1, 6, 12, 15, 24, 30, 60} {
			if got := Diff(0, w, n); got != 0 {
				t.Errorf("Diff(0, %v, %d) = %d, want 0", w, n, got)
			}
		}
	}
}

func TestCellWidth(t *testing.T) {
	tests := []struct {
		precision scale.Precision
		want      float64
	}{
		{scale.PrecisionFull, 80},
		{scale.PrecisionHalf, 40},
		{scale.PrecisionQuarter, 20},
	}
	for _, tt := range tests {
		t.Run(string(tt.precision), func(t *testing.T) {
			if got := CellWidth(80, tt.precision); got != tt.want {
				t.Errorf("CellWidth(80, %s) = %v, want %v", tt.precision, got, tt.want)
			}
		})
	}
}

func TestDiffFor(t *testing.T) {
	// Week scale, half precision: 12 hours per 40 px half-cell.
	c := scale.MustNew(scale.Week, scale.PrecisionHalf)
	if got := DiffFor(c, 85, 80); got != 24 {
		t.Errorf("DiffFor() = %d, want 24", got)
	}
}

func TestNewEvent(t *testing.T) {
	c := scale.MustNew(scale.Day, scale.PrecisionQuarter)

	e, err := NewEvent(c, "task-7", -30, 60, "alice", "bob", "")
	if err != nil {
		t.Fatalf("NewEvent() error = %v", err)
	}
	if e.DiffUnits != -30 {
		t.Errorf("DiffUnits = %d, want -30", e.DiffUnits)
	}
	if e.Action != Reschedule {
		t.Errorf("Action = %q, want reschedule", e.Action)
	}
	if !e.Moved() {
		t.Error("Moved() = false, want true")
	}

	if _, err := NewEvent(c, "", 0, 60, "", "", Copy); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("NewEvent(empty id) error = %v", err)
	}

	still, _ := NewEvent(c, "task-7", 3, 60, "g", "g", Reschedule)
	if still.Moved() {
		t.Error("Moved() = true for a sub-cell nudge in the same group")
	}
}

func TestParseAction(t *testing.T) {
	if a, err := ParseAction(""); err != nil || a != Reschedule {
		t.Errorf("ParseAction(\"\") = %q, %v", a, err)
	}
	if a, err := ParseAction("copy"); err != nil || a != Copy {
		t.Errorf("ParseAction(copy) = %q, %v", a, err)
	}
	if _, err := ParseAction("move"); err == nil {
		t.Error("ParseAction(move) should fail")
	}
}
