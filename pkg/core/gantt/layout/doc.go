// Package layout computes the final geometry of a Gantt row.
//
// # Overview
//
// [BuildRow] is the entry point. It takes the records of one row together
// with the active scale, the visible window and the row's unavailability
// periods, and returns a [Row] whose pills carry everything a renderer
// needs: left margin and width as percentages of the slot they start in,
// top padding from their stacking level, and the resize flags set when a
// record had to be clipped to the window.
//
// # Pipeline
//
// A row is built in fixed stages, each a pure function:
//
//  1. Validate the scale, the window and every record. A record whose stop
//     precedes its start fails the whole row with INVALID_RANGE.
//  2. Clip records to the window. Records entirely outside are dropped.
//  3. Snap start and stop to the nearest sub-cell boundary (not on the
//     year scale).
//  4. Leaf rows: assign stacking levels. Group rows: aggregate records
//     into count pills, all at level 0.
//  5. Compute geometry and top padding.
//  6. Anchor each pill to the slot containing its start and annotate slots
//     with their unavailability.
//
// # Snapping
//
// Snapping can collapse a short record to zero width. Such a record is
// widened by one sub-cell: its stop moves forward, or its start moves back
// when moving the stop would leave the window. Records that were already
// zero-width stay that way.
//
// # Options
//
//   - [WithLevelHeight]: vertical distance between levels (default 31 px)
//   - [WithPillHeight]: height of a pill (default 29 px)
//   - [WithoutSnapping]: keep record times as they are
package layout
