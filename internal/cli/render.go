package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ganttrow/pkg/chart"
	"github.com/matzehuels/ganttrow/pkg/pipeline"
)

// layoutSuffix marks files written by the layout command.
const layoutSuffix = ".layout.json"

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags      layoutFlags
		output     string
		formatsStr string
		width      float64
		labelWidth float64
	)

	cmd := &cobra.Command{
		Use:   "render [chart|layout.json]",
		Short: "Render a chart or a saved layout",
		Long: `Render a chart or a saved layout to SVG, JSON or YAML.

A file ending in .layout.json is taken as a layout written by 'ganttrow
layout' and is rendered as is; anything else is laid out first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], &flags, renderTarget{
				output:     output,
				formats:    formats,
				width:      width,
				labelWidth: labelWidth,
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (several)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, yaml (comma-separated)")
	cmd.Flags().Float64Var(&width, "width", 0, "SVG width in pixels (default from config)")
	cmd.Flags().Float64Var(&labelWidth, "label-width", 0, "SVG row label column width (default from config)")

	return cmd
}

type renderTarget struct {
	output     string
	formats    []string
	width      float64
	labelWidth float64
}

func (c *CLI) runRender(ctx context.Context, input string, flags *layoutFlags, target renderTarget) error {
	opts, err := c.options(input, flags)
	if err != nil {
		return err
	}
	opts.Formats = target.formats
	if target.width > 0 {
		opts.Width = target.width
	}
	if target.labelWidth > 0 {
		opts.LabelWidth = target.labelWidth
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	var (
		artifacts   map[string][]byte
		rows, pills int
		cached      bool
	)
	if strings.HasSuffix(input, layoutSuffix) {
		l, err := chart.ReadLayoutFile(input)
		if err != nil {
			return fmt.Errorf("load layout %s: %w", input, err)
		}
		artifacts, cached, err = runner.RenderWithCacheInfo(ctx, l, opts)
		if err != nil {
			return err
		}
		rows, pills = len(l.Rows), l.PillCount()
	} else {
		result, err := runner.Execute(ctx, opts)
		if err != nil {
			return err
		}
		artifacts = result.Artifacts
		rows, pills = result.Stats.RowCount, result.Stats.PillCount
		cached = result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit
	}
	prog.done(fmt.Sprintf("Rendered %s", strings.Join(target.formats, ", ")))

	base := basePath(target.output, input)
	var written []string
	for _, format := range target.formats {
		path := base + "." + format
		if len(target.formats) == 1 && target.output != "" {
			path = target.output
		}
		if err := writeOutput(path, artifacts[format]); err != nil {
			return err
		}
		written = append(written, path)
	}
	if target.output == "-" {
		return nil
	}

	printSuccess("Render complete")
	for _, path := range written {
		printFile(path)
	}
	printStats(rows, pills, cached)
	return nil
}

// basePath derives the output base path. Without an output it strips the
// input's extension, including a .layout.json suffix; with one it strips a
// known format extension.
func basePath(output, input string) string {
	if output == "" {
		if strings.HasSuffix(input, layoutSuffix) {
			return strings.TrimSuffix(input, layoutSuffix)
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
