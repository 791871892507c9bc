package timeline

import (
	"time"

	"github.com/matzehuels/ganttrow/pkg/errors"
)

// Interval is a time-bounded item with an assigned stacking level.
// Level is an output of level assignment and is never read from input.
type Interval struct {
	ID    string
	Start time.Time
	Stop  time.Time
	Level int
}

// Duration returns the span of the interval.
func (i Interval) Duration() time.Duration { return i.Stop.Sub(i.Start) }

// IsDegenerate reports whether the interval has zero width.
func (i Interval) IsDegenerate() bool { return !i.Stop.After(i.Start) }

// Overlaps reports whether the interval intersects [start, stop).
// A degenerate interval overlaps when its instant lies in [start, stop).
func (i Interval) Overlaps(start, stop time.Time) bool {
	if i.IsDegenerate() {
		return !i.Start.Before(start) && i.Start.Before(stop)
	}
	return i.Start.Before(stop) && i.Stop.After(start)
}

// Record is a scheduled item as supplied by the record collaborator.
type Record struct {
	ID          string
	Name        string
	Start       time.Time
	Stop        time.Time
	Responsible string
	GroupKey    string

	// Values holds numeric fields addressable by consolidation.
	Values map[string]float64
	// Flags holds boolean fields, used as consolidation exclusions.
	Flags map[string]bool
}

// Interval returns the record's time bounds as an unleveled interval.
func (r Record) Interval() Interval {
	return Interval{ID: r.ID, Start: r.Start, Stop: r.Stop}
}

// Validate rejects records with a missing id or a stop before their start.
func (r Record) Validate() error {
	if err := errors.ValidateID(r.ID); err != nil {
		return err
	}
	return errors.ValidateRange(r.ID, r.Start, r.Stop)
}

// Value returns the numeric field name, or 0 when absent.
func (r Record) Value(name string) float64 {
	if r.Values == nil {
		return 0
	}
	return r.Values[name]
}

// Flag returns the boolean field name, or false when absent.
func (r Record) Flag(name string) bool {
	if r.Flags == nil || name == "" {
		return false
	}
	return r.Flags[name]
}

// Period is a span during which a row's resource is unavailable.
// Periods are expected in the caller's local time.
type Period struct {
	Start time.Time
	Stop  time.Time
}

// Overlaps reports whether p intersects [start, stop).
func (p Period) Overlaps(start, stop time.Time) bool {
	return p.Start.Before(stop) && p.Stop.After(start)
}

// Window is the visible date range of a chart.
type Window struct {
	Start time.Time
	Stop  time.Time
}

// Validate checks that the window is non-empty.
func (w Window) Validate() error {
	return errors.ValidateWindow(w.Start, w.Stop)
}

// Contains reports whether t lies in [Start, Stop).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.Stop)
}

// Clip restricts r to the window. It reports whether the start and the stop
// had to be moved, and false for ok when r lies entirely outside.
func (w Window) Clip(r Record) (clipped Record, startClipped, stopClipped, ok bool) {
	if !r.Interval().Overlaps(w.Start, w.Stop) {
		return r, false, false, false
	}
	clipped = r
	if r.Start.Before(w.Start) {
		clipped.Start = w.Start
		startClipped = true
	}
	if r.Stop.After(w.Stop) {
		clipped.Stop = w.Stop
		stopClipped = true
	}
	return clipped, startClipped, stopClipped, true
}
