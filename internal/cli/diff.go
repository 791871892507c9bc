package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ganttrow/pkg/chart"
	"github.com/matzehuels/ganttrow/pkg/core/gantt/snap"
)

// diffCommand creates the diff command, which turns a drag offset into the
// drop event a client would send.
func (c *CLI) diffCommand() *cobra.Command {
	var (
		unit, precision    string
		pillID             string
		offset, reference  float64
		oldGroup, newGroup string
		action             string
		at                 string
	)

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Convert a pixel drag offset into snapped time units",
		Long: `Convert a pixel drag offset into snapped time units.

The offset is measured against the rendered width of one slot (--reference,
default cell_width from the config). The result counts units of the scale's
snap unit: minutes for day, hours for week, months for year.`,
		Example: `  ganttrow diff --unit week --precision half --pill 42 --offset 85
  ganttrow diff -u day --pill 7 --offset -30 --at 2024-03-04T09:00`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if reference <= 0 {
				reference = cfg.Layout.CellWidth
			}
			if unit == "" {
				unit, precision = cfg.Layout.Unit, firstNonEmpty(precision, cfg.Layout.Precision)
			}

			sc := chart.Chart{Scale: chart.Scale{Unit: unit, Precision: precision}}
			scaleCfg, err := sc.ScaleConfig()
			if err != nil {
				return err
			}
			act, err := snap.ParseAction(action)
			if err != nil {
				return err
			}
			ev, err := snap.NewEvent(scaleCfg, pillID, offset, reference, oldGroup, newGroup, act)
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("computed diff", "scale", scaleCfg.String(), "units", ev.DiffUnits)

			out := struct {
				snap.Event
				SnapUnit string `json:"snap_unit"`
				Moved    bool   `json:"moved"`
				Start    string `json:"start,omitempty"`
			}{Event: ev, SnapUnit: string(scaleCfg.SnapUnit), Moved: ev.Moved()}
			if at != "" {
				t, err := parseTime(at)
				if err != nil {
					return err
				}
				out.Start = scaleCfg.Shift(t, ev.DiffUnits).Format(time.RFC3339)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				return fmt.Errorf("encode event: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&unit, "unit", "u", "", "scale unit (default from config)")
	cmd.Flags().StringVarP(&precision, "precision", "p", "", "sub-cell precision")
	cmd.Flags().StringVar(&pillID, "pill", "", "id of the dragged pill")
	cmd.Flags().Float64Var(&offset, "offset", 0, "horizontal drag offset in pixels")
	cmd.Flags().Float64Var(&reference, "reference", 0, "rendered slot width in pixels")
	cmd.Flags().StringVar(&oldGroup, "old-group", "", "group key before the drop")
	cmd.Flags().StringVar(&newGroup, "new-group", "", "group key after the drop")
	cmd.Flags().StringVar(&action, "action", "", "reschedule (default) or copy")
	cmd.Flags().StringVar(&at, "at", "", "current pill start; prints the shifted start")
	_ = cmd.MarkFlagRequired("pill")

	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
