package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ganttrow/pkg/chart"
	ganttio "github.com/matzehuels/ganttrow/pkg/io"
)

// convertCommand creates the convert command, which rewrites a chart or a
// saved layout in another format.
func (c *CLI) convertCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "convert [input] [output]",
		Short: "Convert a chart or a saved layout to another format",
		Long: `Convert a chart or a saved layout to another format.

Formats follow the file extensions. A CSV record list becomes a chart with
one row per responsible. With output "-" the result goes to stdout in the
--format encoding.`,
		Example: `  ganttrow convert bookings.csv team.yaml
  ganttrow convert team.layout.json team.layout.yaml
  ganttrow convert team.toml - --format json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, output := args[0], args[1]
			if strings.HasSuffix(input, layoutSuffix) {
				return convertLayout(input, output, format)
			}
			return convertChart(input, output, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "stdout format: json, yaml, toml")
	return cmd
}

func convertChart(input, output, format string) error {
	ch, err := ganttio.ImportChart(input)
	if err != nil {
		return err
	}
	if err := materializeRows(&ch); err != nil {
		return err
	}
	if output == "-" {
		f, err := ganttio.ParseFormat(format)
		if err != nil {
			return err
		}
		return ganttio.WriteChart(ch, os.Stdout, f)
	}
	if err := ganttio.ExportChart(ch, output); err != nil {
		return err
	}
	printSuccess("Converted %d rows", countRows(ch.Rows))
	printFile(output)
	return nil
}

func convertLayout(input, output, format string) error {
	l, err := chart.ReadLayoutFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}
	if output == "-" {
		f, err := ganttio.ParseFormat(format)
		if err != nil {
			return err
		}
		return ganttio.WriteLayout(l, os.Stdout, f)
	}
	f, err := ganttio.DetectFormat(output)
	if err != nil {
		return err
	}
	if f == ganttio.FormatJSON {
		err = chart.WriteLayoutFile(l, output)
	} else {
		err = ganttio.ExportLayout(l, output)
	}
	if err != nil {
		return err
	}
	printSuccess("Converted layout")
	printFile(output)
	printStats(len(l.Rows), l.PillCount(), false)
	return nil
}

// materializeRows replaces flat records with the rows they group into.
func materializeRows(ch *chart.Chart) error {
	if len(ch.Records) == 0 {
		return nil
	}
	rows, err := ch.AllRows()
	if err != nil {
		return err
	}
	ch.Rows, ch.Records, ch.GroupBy, ch.Collapse = rows, nil, "", false
	return nil
}

func countRows(rows []chart.Row) int {
	n := 0
	chart.Walk(rows, func(*chart.Row, int, string) { n++ })
	return n
}
