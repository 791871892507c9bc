// Package level assigns vertical stacking levels to the pills of a leaf
// row so that pills sharing a level never overlap in time.
//
// Assignment is a greedy single pass over the intervals sorted by start:
// each interval goes into the first level whose latest stop is at or before
// its start, otherwise it opens a new level. For a given arrival order this
// opens the fewest levels; it makes no attempt to keep levels stable across
// recomputations, which always start from scratch.
package level

import (
	"slices"
	"time"

	"github.com/matzehuels/ganttrow/pkg/core/timeline"
)

// Assign returns a copy of intervals sorted by start (stable) with Level
// set, and the number of levels used. The input is not modified.
func Assign(intervals []timeline.Interval) ([]timeline.Interval, int) {
	if len(intervals) == 0 {
		return nil, 0
	}

	out := slices.Clone(intervals)
	slices.SortStableFunc(out, func(a, b timeline.Interval) int {
		return a.Start.Compare(b.Start)
	})

	var buckets stack
	for i := range out {
		out[i].Level = buckets.place(out[i].Start, out[i].Stop)
	}
	return out, len(buckets)
}

// AssignPills sets Level on each pill in place using the same rule as
// Assign, and returns the number of levels. Pill order is preserved.
func AssignPills(pills []timeline.Pill) int {
	order := make([]int, len(pills))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return pills[a].Start.Compare(pills[b].Start)
	})

	var buckets stack
	for _, i := range order {
		pills[i].Level = buckets.place(pills[i].Start, pills[i].Stop)
	}
	return len(buckets)
}

// stack tracks the latest stop of each open level.
type stack []time.Time

// place puts [start, stop) into the first level free at start, opening a
// new level when none is, and returns the level.
func (s *stack) place(start, stop time.Time) int {
	for i, maxStop := range *s {
		if !maxStop.After(start) {
			if stop.After(maxStop) {
				(*s)[i] = stop
			}
			return i
		}
	}
	*s = append(*s, stop)
	return len(*s) - 1
}

// Overlapping returns the first pair of same-level intervals that overlap,
// or false when the assignment is valid.
func Overlapping(intervals []timeline.Interval) (a, b timeline.Interval, found bool) {
	byLevel := make(map[int][]timeline.Interval)
	for _, iv := range intervals {
		byLevel[iv.Level] = append(byLevel[iv.Level], iv)
	}
	for _, group := range byLevel {
		for i := range group {
			for j := i + 1; j < len(group); j++ {
				x, y := group[i], group[j]
				if x.Start.Before(y.Stop) && y.Start.Before(x.Stop) {
					return x, y, true
				}
			}
		}
	}
	return timeline.Interval{}, timeline.Interval{}, false
}
