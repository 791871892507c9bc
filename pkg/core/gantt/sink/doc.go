// Package sink renders a laid-out chart to SVG.
//
// # Overview
//
// The layout engine produces positions as slot-relative percentages so
// that a front end can render rows at any width. [RenderSVG] turns those
// percentages into pixels for a fixed-width preview: one column per slot,
// one horizontal band per row, pills drawn at their computed level.
//
// Basic usage:
//
//	svg := sink.RenderSVG(l,
//	    sink.WithWidth(1200),
//	    sink.WithLabelWidth(200),
//	)
//
// # Appearance
//
//   - Slots are drawn as columns; unavailable slots are hatched, whole or
//     by half depending on the slot's unavailability.
//   - Leaf pills take a colour derived from their group key, so pills of
//     one group share a colour across rows.
//   - Aggregate pills are tinted by their shade (darker means more
//     overlap) or, under a consolidation limit, coloured by status.
//
// # SVG Options
//
//   - [WithWidth]: total width in pixels
//   - [WithLabelWidth]: width of the row label column
//   - [WithoutLabels]: omit the label column
//   - [WithoutHeader]: omit the slot header
package sink
