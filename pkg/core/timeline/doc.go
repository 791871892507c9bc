// Package timeline defines the time-bounded values shared by every stage of
// the Gantt row engine.
//
// # Overview
//
// A [Record] is what collaborators hand in: an identifier, a start/stop pair
// and optional metadata (responsible, group key, numeric values used for
// consolidation, boolean flags used to exclude records from it).
//
// An [Interval] is the engine's working unit: a record reduced to its time
// bounds plus the stacking level assigned by the level assigner. A [Pill] is
// an interval with its derived screen projection (left margin, width, top
// padding) and, for group rows, its aggregation data.
//
// A [Slot] is one bucket of the active calendar scale (an hour in the day
// view, a day in week and month views, a month in the year view). Slots
// carry the unavailability status computed for them and the indices of the
// pills anchored in them.
//
// # Bounds
//
// All ranges are half-open: [Start, Stop). A zero-width interval
// (Start == Stop) is degenerate; it overlaps a range only when its instant
// falls inside that range. See [Interval.Overlaps].
package timeline
