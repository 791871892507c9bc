package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ganttrow/pkg/pipeline"
)

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  layoutFlags
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "layout [chart]",
		Short: "Lay out a chart and write the layout",
		Long: `Lay out a chart and write the layout.

The chart may be JSON, YAML, TOML or a CSV list of records (grouped by the
responsible column). The layout holds every row with its slots, levels and
positioned pills. It can be rendered later with 'ganttrow render'.

Results are cached; --refresh recomputes them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != pipeline.FormatJSON && format != pipeline.FormatYAML {
				return fmt.Errorf("invalid format: %s (must be 'json' or 'yaml')", format)
			}
			return c.runLayout(cmd.Context(), args[0], &flags, format, output)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.<format>, - for stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatJSON, "layout format: json, yaml")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input string, flags *layoutFlags, format, output string) error {
	opts, err := c.options(input, flags)
	if err != nil {
		return err
	}
	opts.Formats = []string{format}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Laying out rows...")
	spinner.Start()
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".layout." + format
	}
	if err := writeOutput(output, result.Artifacts[format]); err != nil {
		return err
	}
	if output == "-" {
		return nil
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(result.Stats.RowCount, result.Stats.PillCount, result.CacheInfo.LayoutHit)
	if format == pipeline.FormatJSON {
		printNewline()
		printNextStep("Render", "ganttrow render "+output)
	}
	return nil
}

// writeOutput writes data to path, or to stdout when path is "-".
func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
