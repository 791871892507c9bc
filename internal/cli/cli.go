// Package cli implements the ganttrow command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ganttrow/internal/config"
	"github.com/matzehuels/ganttrow/pkg/buildinfo"
	"github.com/matzehuels/ganttrow/pkg/cache"
	"github.com/matzehuels/ganttrow/pkg/chart"
	"github.com/matzehuels/ganttrow/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "ganttrow"

	// redisDialTimeout bounds the startup ping of the redis cache.
	redisDialTimeout = 3 * time.Second
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "ganttrow lays out Gantt rows",
		Long: `ganttrow lays out Gantt chart rows: it snaps records to the time grid,
stacks overlapping records on levels, aggregates group rows and computes the
geometry of every pill.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/ganttrow/config.toml)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.diffCommand())
	root.AddCommand(c.slotsCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config
// =============================================================================

// config loads the configuration once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	path := c.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded config", "path", path, "cache", cfg.Cache.Backend)
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	backend, err := c.newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(backend, nil, c.Logger)
	runner.TTL, _ = cfg.CacheTTL()
	return runner, nil
}

func (c *CLI) newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:        cfg.Cache.RedisAddr,
			Password:    cfg.Cache.RedisPassword,
			DB:          cfg.Cache.RedisDB,
			Prefix:      cfg.Cache.RedisPrefix,
			DialTimeout: redisDialTimeout,
		})
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "addr", cfg.Cache.RedisAddr, "err", err)
			return cache.NewNullCache(), nil
		}
		return rc, nil
	default:
		fc, err := cache.NewFileCache(cfg.Cache.Dir)
		if err != nil {
			c.Logger.Warn("file cache unavailable, caching disabled", "dir", cfg.Cache.Dir, "err", err)
			return cache.NewNullCache(), nil
		}
		return fc, nil
	}
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutFlags are the flags shared by commands that lay out a chart.
type layoutFlags struct {
	unit        string
	precision   string
	windowStart string
	windowStop  string
	levelHeight int
	pillHeight  int
	noSnap      bool
	noCache     bool
	refresh     bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.unit, "unit", "u", "", "scale unit: day, week, month, year (overrides the chart)")
	cmd.Flags().StringVarP(&f.precision, "precision", "p", "", "sub-cell precision: full, half, quarter")
	cmd.Flags().StringVar(&f.windowStart, "from", "", "window start (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringVar(&f.windowStop, "to", "", "window stop, exclusive (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().IntVar(&f.levelHeight, "level-height", 0, "pixels per stacking level (default from config)")
	cmd.Flags().IntVar(&f.pillHeight, "pill-height", 0, "pill height in pixels (default from config)")
	cmd.Flags().BoolVar(&f.noSnap, "no-snap", false, "keep record times off the grid")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when cached")
	registerScaleCompletion(cmd)
	cmd.ValidArgsFunction = completeChartFiles
}

// options builds pipeline options from the config and the flags.
func (c *CLI) options(input string, f *layoutFlags) (pipeline.Options, error) {
	cfg, err := c.config()
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := cfg.PipelineOptions()
	opts.Input = input
	opts.Unit = f.unit
	opts.Precision = f.precision
	opts.NoSnap = f.noSnap
	opts.Refresh = f.refresh
	opts.Logger = c.Logger
	if f.levelHeight > 0 {
		opts.LevelHeight = f.levelHeight
	}
	if f.pillHeight > 0 {
		opts.PillHeight = f.pillHeight
	}

	if f.windowStart != "" || f.windowStop != "" {
		w, err := parseWindow(f.windowStart, f.windowStop)
		if err != nil {
			return pipeline.Options{}, err
		}
		opts.Window = w
	}
	return opts, nil
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

func parseTime(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q (want YYYY-MM-DD or RFC 3339)", s)
}

func parseWindow(start, stop string) (*chart.Window, error) {
	if start == "" || stop == "" {
		return nil, fmt.Errorf("--from and --to must be given together")
	}
	from, err := parseTime(start)
	if err != nil {
		return nil, err
	}
	to, err := parseTime(stop)
	if err != nil {
		return nil, err
	}
	return &chart.Window{Start: from, Stop: to}, nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
