package timeline

import (
	"strconv"
	"time"
)

// Width is a horizontal extent: a percentage of one slot plus a pixel
// compensation for the borders crossed between slots.
type Width struct {
	Pct float64 `json:"pct"`
	Px  int     `json:"px,omitempty"`
}

// String renders the width as a CSS length, "N%" or "calc(N% + Mpx)".
func (w Width) String() string {
	pct := strconv.FormatFloat(w.Pct, 'f', -1, 64) + "%"
	if w.Px == 0 {
		return pct
	}
	return "calc(" + pct + " + " + strconv.Itoa(w.Px) + "px)"
}

// Status is the consolidation status of an aggregate pill.
type Status string

const (
	StatusNone    Status = ""
	StatusSuccess Status = "success"
	StatusDanger  Status = "danger"
)

// Pill is an interval with its screen projection.
//
// Leaf-row pills map one-to-one to records. Group-row pills are synthetic
// aggregates; they carry Count, AggregatedPills and, when consolidation is
// configured, the consolidation fields.
type Pill struct {
	Interval

	Name        string
	Responsible string
	GroupKey    string

	LeftMarginPct float64
	Width         Width
	TopPadding    int
	Height        int
	SlotIndex     int

	DisableStartResize bool
	DisableStopResize  bool

	Count           int
	AggregatedPills []Interval

	Consolidated          bool
	ConsolidationValue    float64
	ConsolidationMaxValue float64
	ConsolidationExceeded bool

	// Shade is a grey level in [100, 215]; 0 when Status is set.
	Shade  int
	Status Status
}

// IsAggregate reports whether the pill was produced by aggregation.
func (p Pill) IsAggregate() bool { return p.Count > 0 }

// Contains reports whether the aggregate lists the source interval id.
func (p Pill) Contains(id string) bool {
	for _, iv := range p.AggregatedPills {
		if iv.ID == id {
			return true
		}
	}
	return false
}

// Unavailability is the per-slot unavailability status.
type Unavailability string

const (
	Available  Unavailability = ""
	Full       Unavailability = "full"
	FirstHalf  Unavailability = "first_half"
	SecondHalf Unavailability = "second_half"
)

// Slot is one bucket of the active scale.
type Slot struct {
	Start          time.Time
	Stop           time.Time
	Unavailability Unavailability
	// Pills holds indices into the row's pill slice of pills anchored here.
	Pills []int
}

// Contains reports whether t lies in [Start, Stop).
func (s Slot) Contains(t time.Time) bool {
	return !t.Before(s.Start) && t.Before(s.Stop)
}
