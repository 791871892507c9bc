package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ganttrow/pkg/cache"
	"github.com/matzehuels/ganttrow/pkg/chart"
	"github.com/matzehuels/ganttrow/pkg/core/gantt/layout"
	"github.com/matzehuels/ganttrow/pkg/errors"
	"github.com/matzehuels/ganttrow/pkg/observability"
)

// Runner executes the pipeline with caching. It holds no per-run state, so
// one Runner can serve concurrent runs with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL, when positive, replaces the per-stage cache TTLs.
	TTL time.Duration
}

// NewRunner creates a runner. A nil cache disables caching; a nil keyer
// means the default keyer.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs load → layout → render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	c, err := LoadChart(opts)
	if err != nil {
		return nil, err
	}
	result.Chart = c
	result.Stats.LoadTime = time.Since(loadStart)
	r.Logger.Debug("loaded chart", "title", c.Title, "unit", c.Scale.Unit, "duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	l, layoutHit, err := r.LayoutWithCacheInfo(ctx, c, opts)
	if err != nil {
		return nil, err
	}
	result.Layout = l
	result.ChartHash, _ = cache.HashJSON(c)
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.RowCount = len(l.Rows)
	result.Stats.PillCount = l.PillCount()
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"rows", result.Stats.RowCount,
		"pills", result.Stats.PillCount,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LayoutWithCacheInfo lays out c, reading and filling the cache, and
// reports whether the layout came from the cache.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, c chart.Chart, opts Options) (chart.Layout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return chart.Layout{}, false, err
	}

	chartHash, err := cache.HashJSON(c)
	if err != nil {
		return chart.Layout{}, false, errors.Wrap(errors.ErrCodeInternal, err, "hash chart")
	}
	keyOpts := opts.LayoutKeyOpts()
	if c.Window == nil {
		if _, ok := c.EarliestStart(); !ok {
			keyOpts.Now = opts.Now.Format(time.DateOnly)
		}
	}
	key := r.Keyer.LayoutKey(chartHash, keyOpts)

	if !opts.Refresh {
		if data, ok := r.get(ctx, "layout", key); ok {
			if l, err := chart.UnmarshalLayout(data); err == nil {
				return l, true, nil
			}
		}
	}

	l, err := GenerateLayout(ctx, c, opts)
	if err != nil {
		return chart.Layout{}, false, err
	}
	if data, err := chart.MarshalLayout(l); err == nil {
		r.set(ctx, "layout", key, data, cache.TTLLayout)
	}
	return l, false, nil
}

// Layout is LayoutWithCacheInfo without the cache hit info.
func (r *Runner) Layout(ctx context.Context, c chart.Chart, opts Options) (chart.Layout, error) {
	l, _, err := r.LayoutWithCacheInfo(ctx, c, opts)
	return l, err
}

// LayoutRow lays out a single row input, with caching.
func (r *Runner) LayoutRow(ctx context.Context, in layout.RowInput, opts Options) (chart.RowLayout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return chart.RowLayout{}, false, err
	}

	inputHash, err := cache.HashJSON(in)
	if err != nil {
		return chart.RowLayout{}, false, errors.Wrap(errors.ErrCodeInternal, err, "hash row")
	}
	key := r.Keyer.RowKey(inputHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, ok := r.get(ctx, "row", key); ok {
			var cached chart.RowLayout
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, true, nil
			}
		}
	}

	start := time.Now()
	row, err := layout.BuildRow(in, opts.RowOptions()...)
	observability.Pipeline().OnRowComplete(ctx, in.Grouped, len(row.Pills), time.Since(start), err)
	if err != nil {
		return chart.RowLayout{}, false, err
	}
	out := chart.ExportRow(row, 0, "")
	if data, err := json.Marshal(out); err == nil {
		r.set(ctx, "row", key, data, cache.TTLRow)
	}
	return out, false, nil
}

// RenderWithCacheInfo renders every requested format and reports whether
// all of them came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l chart.Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	layoutData, err := chart.MarshalLayout(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, ok := r.get(ctx, "artifact", r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format)))
		if !ok {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	rendered, err := RenderFromLayout(ctx, l, opts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		r.set(ctx, "artifact", r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format)), data, cache.TTLArtifact)
	}
	return rendered, false, nil
}

// Render is RenderWithCacheInfo without the cache hit info.
func (r *Runner) Render(ctx context.Context, l chart.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// get reads the cache. Backend errors are logged and count as misses.
func (r *Runner) get(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

func (r *Runner) set(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if r.TTL > 0 {
		ttl = r.TTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
