package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ganttrow/pkg/chart"
	"github.com/matzehuels/ganttrow/pkg/core/scale"
	"github.com/matzehuels/ganttrow/pkg/core/timeline"
)

// slotsCommand creates the slots command, which prints the time grid of a
// scale.
func (c *CLI) slotsCommand() *cobra.Command {
	var (
		unit, precision string
		at, from, to    string
	)

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Print the slots and sub-cells of a scale",
		Long: `Print the slots and sub-cells of a scale.

Without --from/--to the window is the page of the unit containing --at
(default: now): the day, the week starting Monday, the month or the year.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if unit == "" {
				unit, precision = cfg.Layout.Unit, firstNonEmpty(precision, cfg.Layout.Precision)
			}
			sc := chart.Chart{Scale: chart.Scale{Unit: unit, Precision: precision}}
			scaleCfg, err := sc.ScaleConfig()
			if err != nil {
				return err
			}

			var window timeline.Window
			switch {
			case from != "" || to != "":
				w, err := parseWindow(from, to)
				if err != nil {
					return err
				}
				window = timeline.Window{Start: w.Start, Stop: w.Stop}
				if err := window.Validate(); err != nil {
					return err
				}
			default:
				t := time.Now()
				if at != "" {
					if t, err = parseTime(at); err != nil {
						return err
					}
				}
				window = scale.WindowAround(t, scaleCfg.Unit)
			}

			fmt.Println(StyleTitle.Render(scaleCfg.String()) + " " + StyleDim.Render(fmt.Sprintf("%s → %s", formatStamp(window.Start), formatStamp(window.Stop))))
			fmt.Println(slotTable(scaleCfg, window))
			return nil
		},
	}

	cmd.Flags().StringVarP(&unit, "unit", "u", "", "scale unit (default from config)")
	cmd.Flags().StringVarP(&precision, "precision", "p", "", "sub-cell precision")
	cmd.Flags().StringVar(&at, "at", "", "time inside the page to show (default: now)")
	cmd.Flags().StringVar(&from, "from", "", "window start")
	cmd.Flags().StringVar(&to, "to", "", "window stop, exclusive")
	registerScaleCompletion(cmd)

	return cmd
}

// slotTable renders one table line per slot with its sub-cell starts.
func slotTable(c scale.Config, w timeline.Window) string {
	var rows [][]string
	for i, slot := range c.Slots(w) {
		var cells []string
		for _, cell := range c.Cells(slot) {
			cells = append(cells, cell.Start.Format(cellLayout(c.Unit)))
		}
		rows = append(rows, []string{
			fmt.Sprint(i),
			formatStamp(slot.Start),
			formatStamp(slot.Stop),
			strings.Join(cells, "  "),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("#", "Start", "Stop", "Cells").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			if col == 0 || col == 3 {
				return StyleDim
			}
			return StyleValue
		}).
		Render()
}

func cellLayout(u scale.Unit) string {
	switch u {
	case scale.Day:
		return "15:04"
	case scale.Year:
		return "Jan 2"
	}
	return "Mon 2 15:04"
}

func formatStamp(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04")
}
