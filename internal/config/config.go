// Package config loads ganttrow settings from defaults, a TOML file and
// GANTTROW_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/ganttrow/pkg/core/gantt/aggregate"
	"github.com/matzehuels/ganttrow/pkg/core/scale"
	"github.com/matzehuels/ganttrow/pkg/pipeline"
	"github.com/matzehuels/ganttrow/pkg/server"
)

const appName = "ganttrow"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GANTTROW_"

// Config is the full configuration.
type Config struct {
	Layout        LayoutConfig             `toml:"layout"`
	Consolidation *aggregate.Consolidation `toml:"consolidation"`
	Cache         CacheConfig              `toml:"cache"`
	Server        ServerConfig             `toml:"server"`
}

// LayoutConfig holds layout and render defaults.
type LayoutConfig struct {
	Unit        string  `toml:"unit"`
	Precision   string  `toml:"precision"`
	LevelHeight int     `toml:"level_height"`
	PillHeight  int     `toml:"pill_height"`
	CellWidth   float64 `toml:"cell_width"` // rendered slot width in px, the diff reference
	Width       float64 `toml:"width"`
	LabelWidth  float64 `toml:"label_width"`
	Concurrency int     `toml:"concurrency"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"` // "file", "redis" or "none"
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix"`
	TTL           string `toml:"ttl"` // e.g. "24h"; empty keeps per-stage TTLs
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr    string `toml:"addr"`
	Timeout string `toml:"timeout"`
	Metrics bool   `toml:"metrics"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Layout: LayoutConfig{
			Unit:        pipeline.DefaultUnit,
			CellWidth:   80,
			Width:       pipeline.DefaultWidth,
			LabelWidth:  pipeline.DefaultLabelWidth,
			Concurrency: pipeline.DefaultConcurrency,
		},
		Cache: CacheConfig{
			Backend: BackendFile,
			Dir:     DefaultCacheDir(),
		},
		Server: ServerConfig{
			Addr:    server.DefaultAddr,
			Timeout: server.DefaultTimeout.String(),
			Metrics: true,
		},
	}
}

// =============================================================================
// Paths
// =============================================================================

// DefaultPath returns $XDG_CONFIG_HOME/ganttrow/config.toml, falling back
// to ~/.config.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

// DefaultCacheDir returns $XDG_CACHE_HOME/ganttrow, falling back to
// ~/.cache.
func DefaultCacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName)
	}
	return filepath.Join(home, ".cache", appName)
}

// =============================================================================
// Loading
// =============================================================================

// Load reads the config from DefaultPath.
func Load() (*Config, error) {
	return LoadFrom(DefaultPath())
}

// LoadFrom starts from defaults, overlays the file at path if it exists,
// then applies environment overrides and validates the result.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	if err := loadFile(path, cfg); err != nil {
		return nil, err
	}
	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.Cache.Dir = expandHome(cfg.Cache.Dir)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("parse config %s: unknown key %q", path, undecoded[0].String())
	}
	return nil
}

// applyEnv applies GANTTROW_* overrides through lookup.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"UNIT":           &cfg.Layout.Unit,
		"PRECISION":      &cfg.Layout.Precision,
		"CACHE_BACKEND":  &cfg.Cache.Backend,
		"CACHE_DIR":      &cfg.Cache.Dir,
		"CACHE_TTL":      &cfg.Cache.TTL,
		"REDIS_ADDR":     &cfg.Cache.RedisAddr,
		"REDIS_PASSWORD": &cfg.Cache.RedisPassword,
		"REDIS_PREFIX":   &cfg.Cache.RedisPrefix,
		"SERVER_ADDR":    &cfg.Server.Addr,
		"SERVER_TIMEOUT": &cfg.Server.Timeout,
	}
	for key, dst := range str {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"LEVEL_HEIGHT": &cfg.Layout.LevelHeight,
		"PILL_HEIGHT":  &cfg.Layout.PillHeight,
		"CONCURRENCY":  &cfg.Layout.Concurrency,
		"REDIS_DB":     &cfg.Cache.RedisDB,
	}
	for key, dst := range ints {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
	}

	floats := map[string]*float64{
		"CELL_WIDTH":  &cfg.Layout.CellWidth,
		"WIDTH":       &cfg.Layout.Width,
		"LABEL_WIDTH": &cfg.Layout.LabelWidth,
	}
	for key, dst := range floats {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = f
	}

	if v, ok := lookup(EnvPrefix + "SERVER_METRICS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sSERVER_METRICS: %w", EnvPrefix, err)
		}
		cfg.Server.Metrics = b
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// =============================================================================
// Validation
// =============================================================================

// Validate checks every section.
func (c *Config) Validate() error {
	if c.Layout.Unit != "" {
		if _, err := scale.ParseUnit(c.Layout.Unit); err != nil {
			return err
		}
	}
	if c.Layout.Precision != "" {
		if _, err := scale.ParsePrecision(c.Layout.Precision); err != nil {
			return err
		}
	}
	if c.Layout.LevelHeight < 0 || c.Layout.PillHeight < 0 || c.Layout.Concurrency < 0 {
		return fmt.Errorf("layout heights and concurrency must not be negative")
	}
	if c.Layout.CellWidth < 0 || c.Layout.Width < 0 || c.Layout.LabelWidth < 0 {
		return fmt.Errorf("layout widths must not be negative")
	}
	if err := c.Consolidation.Validate(); err != nil {
		return err
	}

	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache backend redis needs redis_addr")
		}
	default:
		return fmt.Errorf("unknown cache backend %q (want file, redis or none)", c.Cache.Backend)
	}
	if _, err := c.CacheTTL(); err != nil {
		return err
	}
	if _, err := c.ServerTimeout(); err != nil {
		return err
	}
	return nil
}

// CacheTTL parses the cache TTL. Zero means the per-stage defaults.
func (c *Config) CacheTTL() (time.Duration, error) {
	return parseDuration("cache.ttl", c.Cache.TTL)
}

// ServerTimeout parses the per-request timeout.
func (c *Config) ServerTimeout() (time.Duration, error) {
	return parseDuration("server.timeout", c.Server.Timeout)
}

func parseDuration(field, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", field)
	}
	return d, nil
}

// =============================================================================
// Conversion
// =============================================================================

// PipelineOptions returns pipeline options carrying the configured
// defaults. The configured scale only applies to charts that name no unit.
func (c *Config) PipelineOptions() pipeline.Options {
	opts := pipeline.Options{
		FallbackUnit:      c.Layout.Unit,
		FallbackPrecision: c.Layout.Precision,
		LevelHeight: c.Layout.LevelHeight,
		PillHeight:  c.Layout.PillHeight,
		Concurrency: c.Layout.Concurrency,
		Width:       c.Layout.Width,
		LabelWidth:  c.Layout.LabelWidth,
	}
	if c.Consolidation != nil {
		cons := *c.Consolidation
		opts.Consolidation = &cons
	}
	return opts
}

// =============================================================================
// Saving
// =============================================================================

// SaveTo writes c to path as TOML, creating the directory.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	defer f.Close()
	if err := c.Encode(f); err != nil {
		return err
	}
	return f.Close()
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
