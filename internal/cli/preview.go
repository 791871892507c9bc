package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ganttrow/pkg/chart"
	"github.com/matzehuels/ganttrow/pkg/pipeline"
)

// previewCommand creates the preview command, which prints a laid-out
// chart as a terminal table.
func (c *CLI) previewCommand() *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "preview [chart]",
		Short: "Print a chart's layout as a terminal table",
		Long: `Print a chart's layout as a terminal table.

Each row shows its stacking levels, its pill count and one cell per slot:
a dot for a free slot, the number of pills overlapping a busy one, and a
hatched cell for unavailability.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, cached, err := c.loadLayout(cmd.Context(), args[0], &flags)
			if err != nil {
				return err
			}
			fmt.Println(StyleTitle.Render(layoutTitle(l)))
			fmt.Println(previewTable(l))
			fmt.Println(statsLine(len(l.Rows), l.PillCount(), cached))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// loadLayout loads a chart file and lays it out through the cache.
func (c *CLI) loadLayout(ctx context.Context, input string, flags *layoutFlags) (chart.Layout, bool, error) {
	opts, err := c.options(input, flags)
	if err != nil {
		return chart.Layout{}, false, err
	}
	ch, err := pipeline.LoadChart(opts)
	if err != nil {
		return chart.Layout{}, false, err
	}
	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return chart.Layout{}, false, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	return runner.LayoutWithCacheInfo(ctx, ch, opts)
}

func layoutTitle(l chart.Layout) string {
	title := l.Title
	if title == "" {
		title = "Layout"
	}
	return fmt.Sprintf("%s  %s", title, StyleDim.Render(fmt.Sprintf("%s, %s → %s",
		l.Scale.String(), formatStamp(l.Window.Start), formatStamp(l.Window.Stop))))
}

func previewTable(l chart.Layout) string {
	rows := make([][]string, 0, len(l.Rows))
	for _, r := range l.Rows {
		rows = append(rows, []string{
			strings.Repeat("  ", r.Depth) + r.Name,
			fmt.Sprint(r.Level),
			fmt.Sprint(len(r.Pills)),
			occupancy(r),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("Row", "Levels", "Pills", "Slots").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			if row < len(l.Rows) && l.Rows[row].Grouped && col == 0 {
				return StyleHighlight.Bold(true)
			}
			if col == 1 || col == 2 {
				return StyleDim
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// occupancy draws one cell per slot of r.
func occupancy(r chart.RowLayout) string {
	var b strings.Builder
	for _, slot := range r.Slots {
		n := 0
		exceeded := false
		for _, p := range r.Pills {
			if p.Start.Before(slot.Stop) && p.Stop.After(slot.Start) {
				n++
				if p.Consolidation != nil && p.Consolidation.Exceeded {
					exceeded = true
				}
			}
		}
		b.WriteString(slotCell(slot.Unavailability, n, exceeded))
	}
	return b.String()
}

func slotCell(unavailability string, pills int, exceeded bool) string {
	switch {
	case pills > 0:
		label := fmt.Sprint(pills)
		if pills > 9 {
			label = "+"
		}
		if exceeded {
			return StyleDanger.Render(label)
		}
		return StyleHighlight.Render(label)
	case unavailability == "full":
		return StyleDim.Render("▓")
	case unavailability != "":
		return StyleWarning.Render("░")
	}
	return StyleSuccess.Render("·")
}
