// Package chart provides the serialization types for Gantt charts and their
// layouts.
//
// This package defines the canonical wire format used for chart files, API
// requests and responses, and cached layouts.
//
// # Architecture
//
// The package sits at the serialization boundary:
//
//   - [Chart], [Layout]: serialization types (this package)
//   - pkg/core/timeline: internal record, pill and slot types
//   - pkg/core/gantt/layout.Row: internal laid-out row
//
// [Chart.Plan] turns a chart into one layout.RowInput per row; [NewLayout]
// turns the laid-out rows back into a [Layout].
//
// # Chart Format
//
//	{
//	  "scale": {"unit": "week", "precision": "half"},
//	  "window": {"start": "2024-03-04T00:00:00Z", "stop": "2024-03-11T00:00:00Z"},
//	  "rows": [
//	    {
//	      "id": "alice",
//	      "name": "Alice",
//	      "records": [
//	        {"id": "t1", "start": "2024-03-04T08:00:00Z", "stop": "2024-03-05T17:00:00Z"}
//	      ],
//	      "unavailabilities": [{"start": "2024-03-08T00:00:00Z", "stop": "2024-03-09T00:00:00Z"}],
//	      "recurring": [{"rrule": "FREQ=WEEKLY;BYDAY=SA,SU", "dtstart": "2024-01-06T00:00:00Z", "duration": "24h"}]
//	    }
//	  ]
//	}
//
// The window is optional; without it the chart shows the page of the scale
// unit containing the earliest record.
//
// # Rows
//
// A row with children is a group row: its pills aggregate the records of
// all its descendants, and the children follow it in the layout with their
// depth recorded. Instead of rows, a chart may list flat records with a
// group_by field ("responsible" or "group_key"); [GroupRecords] then builds
// one row per key.
package chart
