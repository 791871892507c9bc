// Package pkg provides the core libraries for ganttrow Gantt row layout.
//
// # Overview
//
// ganttrow turns rows of timed records into positioned pills: records snap
// to the time grid, overlapping records stack on levels, group rows fold
// their children's records into aggregate pills, and unavailability marks
// the slots a row cannot be booked in. The pkg directory is organized into
// four main areas:
//
//  1. [core] - Domain logic (scales, snapping, levels, aggregation, geometry)
//  2. [chart] - Input charts and output layouts
//  3. [pipeline] - Orchestration (load → layout → render) with caching
//  4. [server] - HTTP API over the pipeline
//
// # Architecture
//
// The typical data flow through ganttrow:
//
//	Chart file (JSON, YAML, TOML, CSV)
//	         ↓
//	    [io] package (import)
//	         ↓
//	    [chart] package (plan: scale, window, row inputs)
//	         ↓
//	    [core/gantt/layout] package (snap → level → aggregate → geometry)
//	         ↓
//	    [core/gantt/sink] package (SVG) or JSON/YAML layout
//
// # Quick Start
//
// Lay out a single row:
//
//	import (
//	    "github.com/matzehuels/ganttrow/pkg/core/gantt/layout"
//	    "github.com/matzehuels/ganttrow/pkg/core/scale"
//	    "github.com/matzehuels/ganttrow/pkg/core/timeline"
//	)
//
//	cfg := scale.MustNew(scale.Week, scale.PrecisionHalf)
//	window := scale.WindowAround(time.Now(), scale.Week)
//	row, _ := layout.BuildRow(layout.RowInput{
//	    ID:      "alice",
//	    Scale:   cfg,
//	    Window:  window,
//	    Records: records,
//	})
//
// Lay out and render a whole chart:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	result, _ := runner.Execute(ctx, pipeline.Options{
//	    Input:   "team.yaml",
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	svg := result.Artifacts[pipeline.FormatSVG]
//
// # Main Packages
//
// ## Core Domain Logic
//
// [core/scale] - Units (day, week, month, year), precisions and the time
// grid: slots, sub-cells, snapping and page windows.
//
// [core/timeline] - Records, intervals, periods, windows and pills.
//
// [core/gantt] - The row engine:
//
//   - [core/gantt/snap]: Pixel drag offsets to snapped time units
//   - [core/gantt/level]: First-fit stacking levels for overlapping intervals
//   - [core/gantt/aggregate]: Aggregate pills for group rows with consolidation
//   - [core/gantt/unavail]: Per-slot unavailability from periods
//   - [core/gantt/geometry]: Left margin and width of pills in a slot
//   - [core/gantt/layout]: One row, all of the above in order
//   - [core/gantt/sink]: SVG preview of a layout
//
// [core/recurrence] - RRULE expansion of recurring unavailability.
//
// ## Serialization
//
// [chart] - The chart input format and the layout output format.
//
// [io] - Import and export by file extension.
//
// ## Infrastructure
//
// [pipeline] - The load → layout → render pipeline used by the CLI and the
// HTTP server. Ensures consistent behavior across both entry points.
//
// [cache] - Cache backends (file, redis, null) and key builders.
//
// [observability] - Hooks for pipeline, cache and server events, with a
// Prometheus implementation in [observability/prom].
//
// [errors] - Coded errors and input validation.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                 # All tests
//	go test ./pkg/core/gantt/...      # Specific package
//	go test -run Example ./pkg/...    # Examples only
//
// [core]: https://pkg.go.dev/github.com/matzehuels/ganttrow/pkg/core
// [core/scale]: https://pkg.go.dev/github.com/matzehuels/ganttrow/pkg/core/scale
// [core/timeline]: https://pkg.go.dev/github.com/matzehuels/ganttrow/pkg/core/timeline
// [core/gantt]: https://pkg.go.dev/github.com/matzehuels/ganttrow/pkg/core/gantt
// [core/gantt/snap]: https://pkg.go.dev/github.com/matzehuels/ganttrow/pkg/core/gantt/snap
// [core/gantt/level]: https://pkg.go.dev/github.com/matzehuels/ganttrow/pkg/core/gantt/level
// [core/gantt/aggregate]: https://pkg.go.dev/github.com/matzehuels/ganttrow/pkg/core/gantt/aggregate
// [core/gantt/unavail]: https://pkg.go.dev/github.com/matzehuels/ganttrow/pkg/core/gantt/unavail
// [core/gantt/geometry]: https://pkg.go.dev/github.com/matzehuels/ganttrow/pkg/core/gantt/geometry
// [core/gantt/layout]: https://pkg.go.dev/github.com/matzehuels/ganttrow/pkg/core/gantt/layout
// [core/gantt/sink]: https://pkg.go.dev/github.com/matzehuels/ganttrow/pkg/core/gantt/sink
// [core/recurrence]: https://pkg.go.dev/github.com/matzehuels/ganttrow/pkg/core/recurrence
// [chart]: https://pkg.go.dev/github.com/matzehuels/ganttrow/pkg/chart
// [io]: https://pkg.go.dev/github.com/matzehuels/ganttrow/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/ganttrow/pkg/pipeline
// [server]: https://pkg.go.dev/github.com/matzehuels/ganttrow/pkg/server
// [cache]: https://pkg.go.dev/github.com/matzehuels/ganttrow/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/ganttrow/pkg/observability
// [observability/prom]: https://pkg.go.dev/github.com/matzehuels/ganttrow/pkg/observability/prom
// [errors]: https://pkg.go.dev/github.com/matzehuels/ganttrow/pkg/errors
package pkg
