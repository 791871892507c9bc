// Package unavail decides, per slot, whether a row's resource is
// unavailable.
//
// On the day and year scales any overlap with an unavailability period
// marks the whole slot. On the week and month scales each day slot is split
// at its midpoint and the unavailable hours of each half are accumulated;
// a half counts as unavailable above 10 hours and the whole day above 22.
// The thresholds are approximations of "mostly unavailable", so that a day
// with a short lunch break still reads as available.
package unavail

import (
	"time"

	"github.com/matzehuels/ganttrow/pkg/core/scale"
	"github.com/matzehuels/ganttrow/pkg/core/timeline"
)

const (
	// halfCap bounds the hours one half-day can contribute.
	halfCap = 12.0
	// halfThreshold is the hours above which a half-day is unavailable.
	halfThreshold = 10.0
	// dayThreshold is the hours above which a day is unavailable when
	// precision is not half.
	dayThreshold = 22.0
)

// Merge returns the unavailability status of each slot.
func Merge(slots []timeline.Slot, periods []timeline.Period, unit scale.Unit, precision scale.Precision) []timeline.Unavailability {
	out := make([]timeline.Unavailability, len(slots))
	if len(periods) == 0 {
		return out
	}
	for i, s := range slots {
		switch unit {
		case scale.Week, scale.Month:
			morning, afternoon := halves(s, periods)
			out[i] = decide(morning, afternoon, precision)
		default:
			out[i] = anyOverlap(s, periods)
		}
	}
	return out
}

// Annotate stores the result of Merge on the slots.
func Annotate(slots []timeline.Slot, periods []timeline.Period, unit scale.Unit, precision scale.Precision) {
	for i, u := range Merge(slots, periods, unit, precision) {
		slots[i].Unavailability = u
	}
}

func anyOverlap(s timeline.Slot, periods []timeline.Period) timeline.Unavailability {
	for _, p := range periods {
		if p.Overlaps(s.Start, s.Stop) {
			return timeline.Full
		}
	}
	return timeline.Available
}

// halves returns the unavailable hours before and after the slot midpoint,
// each capped at halfCap.
func halves(s timeline.Slot, periods []timeline.Period) (morning, afternoon float64) {
	mid := s.Start.Add(s.Stop.Sub(s.Start) / 2)
	for _, p := range periods {
		if !p.Overlaps(s.Start, s.Stop) {
			continue
		}
		start, stop := maxTime(p.Start, s.Start), minTime(p.Stop, s.Stop)
		switch {
		case !stop.After(mid):
			morning += stop.Sub(start).Hours()
		case !start.Before(mid):
			afternoon += stop.Sub(start).Hours()
		default:
			morning += mid.Sub(start).Hours()
			afternoon += stop.Sub(mid).Hours()
		}
	}
	return min(morning, halfCap), min(afternoon, halfCap)
}

func decide(morning, afternoon float64, precision scale.Precision) timeline.Unavailability {
	switch {
	case morning > halfThreshold && afternoon > halfThreshold:
		return timeline.Full
	case precision != scale.PrecisionHalf && morning+afternoon > dayThreshold:
		return timeline.Full
	case precision == scale.PrecisionHalf && morning > halfThreshold:
		return timeline.FirstHalf
	case precision == scale.PrecisionHalf && afternoon > halfThreshold:
		return timeline.SecondHalf
	}
	return timeline.Available
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
