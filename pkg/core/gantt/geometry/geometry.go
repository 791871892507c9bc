// Package geometry projects time spans onto the horizontal axis of a Gantt
// row.
//
// Positions are relative to the slot containing the span's start: the left
// margin is a percentage of that slot, and the width is a percentage of one
// slot (so a span of three slots is 300%). Every slot boundary a span
// crosses adds one pixel of border, which the width compensates for with a
// pixel term, rendered as "calc(N% + Mpx)".
//
// The rules differ per unit:
//
//   - day: slots are hours; offsets are whole minutes.
//   - week, month: slots are days; offsets are whole hours.
//   - year: slots are months of varying length; offsets are days. Spans
//     shorter than two days are widened to two days so they stay visible.
package geometry

import (
	"math"
	"time"

	"github.com/matzehuels/ganttrow/pkg/core/scale"
	"github.com/matzehuels/ganttrow/pkg/core/timeline"
	"github.com/matzehuels/ganttrow/pkg/errors"
)

// Geometry is the horizontal projection of a span.
type Geometry struct {
	LeftMarginPct float64
	Width         timeline.Width
}

const (
	// minYearDays is the narrowest a pill is drawn on the year scale.
	minYearDays = 2
	// minYearFraction floors multi-month spans to two days of a 30-day month.
	minYearFraction = 2.0 / 30.0
)

// Compute returns the geometry of iv on the given unit. An unknown unit is
// a configuration error.
func Compute(iv timeline.Interval, unit scale.Unit) (Geometry, error) {
	switch unit {
	case scale.Day:
		return hourly(iv), nil
	case scale.Week, scale.Month:
		return daily(iv), nil
	case scale.Year:
		return monthly(iv), nil
	}
	return Geometry{}, errors.New(errors.ErrCodeInvalidScale, "unknown scale %q", unit)
}

// Apply computes the geometry of p and stores it on the pill.
func Apply(p *timeline.Pill, unit scale.Unit) error {
	g, err := Compute(p.Interval, unit)
	if err != nil {
		return err
	}
	p.LeftMarginPct = g.LeftMarginPct
	p.Width = g.Width
	return nil
}

func hourly(iv timeline.Interval) Geometry {
	y, mo, d := iv.Start.Date()
	hourStart := time.Date(y, mo, d, iv.Start.Hour(), 0, 0, 0, iv.Start.Location())

	left := wholeUnits(iv.Start.Sub(hourStart), time.Minute)
	span := wholeUnits(iv.Duration(), time.Minute)
	gap := wholeUnits(iv.Duration(), time.Hour) - 1

	return Geometry{
		LeftMarginPct: ratio(float64(left), 60) * 100,
		Width:         width(ratio(float64(span), 60)*100, gap),
	}
}

func daily(iv timeline.Interval) Geometry {
	y, mo, d := iv.Start.Date()
	dayStart := time.Date(y, mo, d, 0, 0, 0, 0, iv.Start.Location())

	left := wholeUnits(iv.Start.Sub(dayStart), time.Hour)
	span := wholeUnits(iv.Duration(), time.Hour)
	gap := wholeUnits(iv.Duration(), 24*time.Hour) - 1

	return Geometry{
		LeftMarginPct: ratio(float64(left), 24) * 100,
		Width:         width(ratio(float64(span), 24)*100, gap),
	}
}

func monthly(iv timeline.Interval) Geometry {
	loc := iv.Start.Location()
	startMonth := time.Date(iv.Start.Year(), iv.Start.Month(), 1, 0, 0, 0, 0, loc)
	stopMonth := time.Date(iv.Stop.Year(), iv.Stop.Month(), 1, 0, 0, 0, 0, iv.Stop.Location())
	startDays := float64(scale.DaysIn(iv.Start))

	left := ratio(float64(wholeUnits(iv.Start.Sub(startMonth), 24*time.Hour)), startDays) * 100

	months := monthIndex(iv.Stop) - monthIndex(iv.Start) + 1
	if months <= 1 {
		days := math.Max(math.Ceil(days(iv.Duration())), minYearDays)
		return Geometry{
			LeftMarginPct: left,
			Width:         timeline.Width{Pct: ratio(days, startDays) * 100},
		}
	}

	startCover := ratio(math.Ceil(days(startMonth.AddDate(0, 1, 0).Sub(iv.Start))), startDays)
	stopCover := ratio(math.Ceil(days(iv.Stop.Sub(stopMonth))), float64(scale.DaysIn(iv.Stop)))
	pct := math.Max(startCover+stopCover, minYearFraction) * 100
	pct += float64(months-2) * 100

	return Geometry{LeftMarginPct: left, Width: timeline.Width{Pct: pct}}
}

func width(pct float64, gap int) timeline.Width {
	if gap > 0 {
		return timeline.Width{Pct: pct, Px: gap}
	}
	return timeline.Width{Pct: pct}
}

// wholeUnits truncates d to a whole number of u.
func wholeUnits(d, u time.Duration) int {
	return int(d / u)
}

func days(d time.Duration) float64 {
	return d.Hours() / 24
}

func monthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

// ratio divides num by den, returning 0 instead of NaN or Inf.
func ratio(num, den float64) float64 {
	if den == 0 || math.IsNaN(den) || math.IsInf(den, 0) {
		return 0
	}
	r := num / den
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}
