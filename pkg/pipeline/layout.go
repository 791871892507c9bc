package pipeline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/ganttrow/pkg/chart"
	"github.com/matzehuels/ganttrow/pkg/core/gantt/layout"
	"github.com/matzehuels/ganttrow/pkg/observability"
)

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout plans c and lays out every row.
func GenerateLayout(ctx context.Context, c chart.Chart, opts Options) (chart.Layout, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return chart.Layout{}, err
	}

	plan, err := c.Plan(opts.Now)
	if err != nil {
		return chart.Layout{}, err
	}
	unit := string(plan.Scale.Unit)

	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, unit, len(plan.Rows))
	rows, err := BuildRows(ctx, plan, opts)
	if err != nil {
		observability.Pipeline().OnLayoutComplete(ctx, unit, len(plan.Rows), 0, time.Since(start), err)
		return chart.Layout{}, err
	}

	l := chart.NewLayout(plan, rows)
	observability.Pipeline().OnLayoutComplete(ctx, unit, len(rows), l.PillCount(), time.Since(start), nil)
	return l, nil
}

// BuildRows lays out the rows of plan concurrently, at most
// opts.Concurrency at a time. Rows keep plan order. The first failing row
// cancels the rest.
func BuildRows(ctx context.Context, plan chart.Plan, opts Options) ([]layout.Row, error) {
	opts.SetLayoutDefaults()
	rowOpts := opts.RowOptions()
	rows := make([]layout.Row, len(plan.Rows))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, pr := range plan.Rows {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			row, err := layout.BuildRow(pr.Input, rowOpts...)
			observability.Pipeline().OnRowComplete(ctx, pr.Input.Grouped, len(row.Pills), time.Since(start), err)
			if err != nil {
				return err
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	opts.Logger.Debug("laid out rows", "rows", len(rows), "concurrency", opts.Concurrency)
	return rows, nil
}
