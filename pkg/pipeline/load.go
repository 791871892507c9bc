package pipeline

import (
	"github.com/matzehuels/ganttrow/pkg/chart"
	ganttio "github.com/matzehuels/ganttrow/pkg/io"
)

// LoadChart returns the inline chart or reads opts.Input, then applies the
// option overrides. The inline chart is copied, not modified.
func LoadChart(opts Options) (chart.Chart, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return chart.Chart{}, err
	}

	var c chart.Chart
	if opts.Chart != nil {
		c = *opts.Chart
	} else {
		var err error
		if c, err = ganttio.ImportChart(opts.Input); err != nil {
			return chart.Chart{}, err
		}
	}
	ApplyOverrides(&c, opts)
	return c, nil
}

// ApplyOverrides replaces the chart's scale, window and consolidation with
// the ones set in opts. A chart that still names no unit gets the fallback
// scale.
func ApplyOverrides(c *chart.Chart, opts Options) {
	if opts.Unit != "" {
		if opts.Unit != c.Scale.Unit {
			// A precision chosen for another unit may not apply.
			c.Scale.Precision = ""
		}
		c.Scale.Unit = opts.Unit
	}
	if opts.Precision != "" {
		c.Scale.Precision = opts.Precision
	}
	if c.Scale.Unit == "" {
		c.Scale.Unit = opts.FallbackUnit
		if c.Scale.Unit == "" {
			c.Scale.Unit = DefaultUnit
		}
		if c.Scale.Precision == "" {
			c.Scale.Precision = opts.FallbackPrecision
		}
	}
	if opts.Window != nil {
		w := *opts.Window
		c.Window = &w
	}
	if opts.Consolidation != nil {
		cons := *opts.Consolidation
		c.Consolidation = &cons
	}
}
