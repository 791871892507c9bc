package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/matzehuels/ganttrow/pkg/chart"
	"github.com/matzehuels/ganttrow/pkg/core/gantt/sink"
	"github.com/matzehuels/ganttrow/pkg/errors"
	ganttio "github.com/matzehuels/ganttrow/pkg/io"
	"github.com/matzehuels/ganttrow/pkg/observability"
)

// RenderFromLayout encodes l in every requested format.
func RenderFromLayout(ctx context.Context, l chart.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	artifacts, err := render(l, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

func render(l chart.Layout, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		switch format {
		case FormatSVG:
			artifacts[format] = sink.RenderSVG(l,
				sink.WithWidth(opts.Width),
				sink.WithLabelWidth(opts.LabelWidth),
			)
		case FormatJSON, FormatYAML:
			var buf bytes.Buffer
			if err := ganttio.WriteLayout(l, &buf, ganttio.Format(format)); err != nil {
				return nil, errors.Wrap(errors.GetCode(err), err, "render %s", format)
			}
			artifacts[format] = buf.Bytes()
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
		}
	}
	return artifacts, nil
}
