package chart

import (
	"time"

	"github.com/matzehuels/ganttrow/pkg/core/gantt/layout"
	"github.com/matzehuels/ganttrow/pkg/core/recurrence"
	"github.com/matzehuels/ganttrow/pkg/core/scale"
	"github.com/matzehuels/ganttrow/pkg/core/timeline"
	"github.com/matzehuels/ganttrow/pkg/errors"
)

// Plan is a chart resolved into independent row layout inputs.
type Plan struct {
	Title  string
	Scale  scale.Config
	Window timeline.Window
	Rows   []PlannedRow
}

// PlannedRow is one row to lay out, with its place in the row tree.
type PlannedRow struct {
	Input  layout.RowInput
	Depth  int
	Parent string
}

// ScaleConfig resolves the chart's scale names.
func (c *Chart) ScaleConfig() (scale.Config, error) {
	unit, err := scale.ParseUnit(c.Scale.Unit)
	if err != nil {
		return scale.Config{}, err
	}
	precision, err := scale.ParsePrecision(c.Scale.Precision)
	if err != nil {
		return scale.Config{}, err
	}
	return scale.New(unit, precision)
}

// ResolveWindow returns the explicit window, or the page of the unit
// containing the earliest record, or the page containing now.
func (c *Chart) ResolveWindow(unit scale.Unit, now time.Time) (timeline.Window, error) {
	if c.Window != nil {
		w := timeline.Window{Start: c.Window.Start, Stop: c.Window.Stop}
		if err := w.Validate(); err != nil {
			return timeline.Window{}, err
		}
		return w, nil
	}
	if t, ok := c.EarliestStart(); ok {
		return scale.WindowAround(t, unit), nil
	}
	return scale.WindowAround(now, unit), nil
}

// AllRows returns the explicit rows followed by the rows built from flat
// records.
func (c *Chart) AllRows() ([]Row, error) {
	rows := c.Rows
	if len(c.Records) > 0 {
		grouped, err := GroupRecords(c.Records, c.GroupBy, c.Collapse)
		if err != nil {
			return nil, err
		}
		rows = append(append([]Row(nil), rows...), grouped...)
	}
	return rows, nil
}

// Plan resolves the scale, the window and every row. Recurring
// unavailability is expanded within the window. Record ranges are checked
// later, when the rows are built.
func (c *Chart) Plan(now time.Time) (Plan, error) {
	cfg, err := c.ScaleConfig()
	if err != nil {
		return Plan{}, err
	}
	window, err := c.ResolveWindow(cfg.Unit, now)
	if err != nil {
		return Plan{}, err
	}
	if err := c.Consolidation.Validate(); err != nil {
		return Plan{}, err
	}
	rows, err := c.AllRows()
	if err != nil {
		return Plan{}, err
	}

	plan := Plan{Title: c.Title, Scale: cfg, Window: window}
	seen := make(map[string]bool)
	var walkErr error
	Walk(rows, func(r *Row, depth int, parent string) {
		if walkErr != nil {
			return
		}
		if err := errors.ValidateID(r.ID); err != nil {
			walkErr = err
			return
		}
		if seen[r.ID] {
			walkErr = errors.New(errors.ErrCodeInvalidInput, "duplicate row id %q", r.ID)
			return
		}
		seen[r.ID] = true

		in, err := rowInput(r, cfg, window, c)
		if err != nil {
			walkErr = err
			return
		}
		plan.Rows = append(plan.Rows, PlannedRow{Input: in, Depth: depth, Parent: parent})
	})
	if walkErr != nil {
		return Plan{}, walkErr
	}
	return plan, nil
}

func rowInput(r *Row, cfg scale.Config, window timeline.Window, c *Chart) (layout.RowInput, error) {
	records := r.Records
	grouped := r.Grouped
	if len(r.Children) > 0 {
		records = r.Descendants()
		grouped = true
	}

	if !grouped {
		ids := make(map[string]bool, len(records))
		for _, rec := range records {
			if ids[rec.ID] {
				return layout.RowInput{}, errors.New(errors.ErrCodeInvalidInput, "row %q: duplicate record id %q", r.ID, rec.ID)
			}
			ids[rec.ID] = true
		}
	}

	fixed := make([]timeline.Period, len(r.Unavailabilities))
	for i, p := range r.Unavailabilities {
		fixed[i] = timeline.Period{Start: p.Start, Stop: p.Stop}
	}
	rules := make([]recurrence.Rule, len(r.Recurring))
	for i, rc := range r.Recurring {
		rules[i] = rc.Rule()
	}
	periods, err := recurrence.ExpandAll(fixed, rules, window)
	if err != nil {
		return layout.RowInput{}, errors.Wrap(errors.GetCode(err), err, "row %q", r.ID)
	}

	in := layout.RowInput{
		ID:               r.ID,
		Name:             r.DisplayName(),
		Grouped:          grouped,
		Records:          make([]timeline.Record, len(records)),
		Unavailabilities: periods,
		Scale:            cfg,
		Window:           window,
	}
	for i, rec := range records {
		in.Records[i] = rec.Timeline()
	}
	if grouped {
		in.Consolidation = c.Consolidation
	}
	return in, nil
}
