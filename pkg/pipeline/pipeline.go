// Package pipeline runs the load → layout → render pipeline for ganttrow.
//
// The CLI and the HTTP server both go through this package so that defaults,
// validation and caching behave the same everywhere.
//
// # Architecture
//
//  1. Load: read a chart file (or take an inline chart) and apply overrides
//  2. Layout: plan the chart and lay out its rows in parallel
//  3. Render: encode the layout as SVG, JSON or YAML
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:   "team.yaml",
//	    Unit:    "week",
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run single stages:
//
//	c, err := pipeline.LoadChart(opts)
//	l, err := runner.Layout(ctx, c, opts)
//	artifacts, err := runner.Render(ctx, l, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ganttrow/pkg/cache"
	"github.com/matzehuels/ganttrow/pkg/chart"
	"github.com/matzehuels/ganttrow/pkg/core/gantt/aggregate"
	"github.com/matzehuels/ganttrow/pkg/core/gantt/layout"
	"github.com/matzehuels/ganttrow/pkg/core/scale"
	"github.com/matzehuels/ganttrow/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultUnit applies when neither the chart nor the options name a unit.
	DefaultUnit = "week"

	// DefaultConcurrency bounds the rows laid out at once.
	DefaultConcurrency = 8

	// DefaultWidth is the default SVG width in pixels.
	DefaultWidth = 1000.0

	// DefaultLabelWidth is the default width of the SVG row label column.
	DefaultLabelWidth = 160.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatJSON: true,
	FormatYAML: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline. It supports JSON
// for API requests.
type Options struct {
	// Load options
	Input string       `json:"-"`
	Chart *chart.Chart `json:"chart,omitempty"`

	// Layout options. Unit, Precision, Window and Consolidation override the
	// chart's own values when set.
	Unit          string                   `json:"unit,omitempty"`
	Precision     string                   `json:"precision,omitempty"`
	Window        *chart.Window            `json:"window,omitempty"`
	Consolidation *aggregate.Consolidation `json:"consolidation,omitempty"`
	LevelHeight   int                      `json:"level_height,omitempty"`
	PillHeight    int                      `json:"pill_height,omitempty"`
	NoSnap        bool                     `json:"no_snap,omitempty"`
	Concurrency   int                      `json:"-"`
	Refresh       bool                     `json:"refresh,omitempty"`

	// FallbackUnit and FallbackPrecision name the scale of charts that
	// name no unit. An empty FallbackUnit means DefaultUnit.
	FallbackUnit      string `json:"-"`
	FallbackPrecision string `json:"-"`

	// Render options
	Formats    []string `json:"formats,omitempty"`
	Width      float64  `json:"width,omitempty"`
	LabelWidth float64  `json:"label_width,omitempty"`

	// Runtime options (not serialized)
	Now    time.Time   `json:"-"`
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Chart     chart.Chart
	ChartHash string
	Layout    chart.Layout
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	RowCount   int
	PillCount  int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits per stage.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, json, yaml)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks that there is a chart to load.
func (o *Options) ValidateForLoad() error {
	if o.Input == "" && o.Chart == nil {
		return errors.New(errors.ErrCodeInvalidInput, "input file or inline chart is required")
	}
	o.setLoggerDefault()
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	o.setLoggerDefault()
}

// ValidateForLayout validates scale overrides and sets layout defaults.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if o.Unit != "" {
		if _, err := scale.ParseUnit(o.Unit); err != nil {
			return err
		}
	}
	if o.Precision != "" {
		if _, err := scale.ParsePrecision(o.Precision); err != nil {
			return err
		}
	}
	if o.FallbackUnit != "" {
		if _, err := scale.ParseUnit(o.FallbackUnit); err != nil {
			return err
		}
	}
	if o.Window != nil {
		if err := errors.ValidateWindow(o.Window.Start, o.Window.Stop); err != nil {
			return err
		}
	}
	if o.LevelHeight < 0 || o.PillHeight < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "level and pill heights must not be negative")
	}
	return o.Consolidation.Validate()
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.LabelWidth <= 0 {
		o.LabelWidth = DefaultLabelWidth
	}
	o.setLoggerDefault()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

func (o *Options) setLoggerDefault() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// RowOptions returns the layout options for single rows.
func (o *Options) RowOptions() []layout.Option {
	var opts []layout.Option
	if o.LevelHeight > 0 {
		opts = append(opts, layout.WithLevelHeight(o.LevelHeight))
	}
	if o.PillHeight > 0 {
		opts = append(opts, layout.WithPillHeight(o.PillHeight))
	}
	if o.NoSnap {
		opts = append(opts, layout.WithoutSnapping())
	}
	return opts
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Unit:        o.Unit,
		Precision:   o.Precision,
		LevelHeight: o.LevelHeight,
		PillHeight:  o.PillHeight,
		NoSnap:      o.NoSnap,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format}
	if format == FormatSVG {
		opts.Width = o.Width
		opts.LabelWidth = o.LabelWidth
	}
	return opts
}
