package cli

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ganttrow/internal/config"
	"github.com/matzehuels/ganttrow/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout and artifact cache",
	}

	cmd.AddCommand(c.cacheInfoCommand())
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheInfoCommand creates the "cache info" subcommand.
func (c *CLI) cacheInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the cache backend and its usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			printKeyValue("Backend", cfg.Cache.Backend)
			if ttl, err := cfg.CacheTTL(); err == nil && ttl > 0 {
				printKeyValue("TTL", ttl.String())
			}

			switch cfg.Cache.Backend {
			case config.BackendRedis:
				printKeyValue("Address", cfg.Cache.RedisAddr)
				printKeyValue("Database", fmt.Sprint(cfg.Cache.RedisDB))
				printKeyValue("Prefix", cfg.Cache.RedisPrefix)
			case config.BackendFile:
				fc, err := cache.NewFileCache(cfg.Cache.Dir)
				if err != nil {
					return fmt.Errorf("open cache: %w", err)
				}
				entries, size, err := fc.Usage()
				if err != nil {
					return fmt.Errorf("read cache: %w", err)
				}
				printKeyValue("Directory", fc.Dir())
				printKeyValue("Entries", fmt.Sprint(entries))
				printKeyValue("Size", formatBytes(size))
			}
			return nil
		},
	}
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached layouts and artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			n, where, err := clearCache(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if n == 0 {
				printInfo("Cache is empty")
				return nil
			}
			printSuccess("Cleared %d cached entries", n)
			printDetail("Location: %s", where)
			return nil
		},
	}
}

func clearCache(ctx context.Context, cfg *config.Config) (int, string, error) {
	switch cfg.Cache.Backend {
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:        cfg.Cache.RedisAddr,
			Password:    cfg.Cache.RedisPassword,
			DB:          cfg.Cache.RedisDB,
			Prefix:      cfg.Cache.RedisPrefix,
			DialTimeout: redisDialTimeout,
		})
		if err != nil {
			return 0, "", fmt.Errorf("connect to redis: %w", err)
		}
		defer rc.Close()
		n, err := rc.Clear(ctx)
		return n, cfg.Cache.RedisAddr, err
	case config.BackendFile:
		fc, err := cache.NewFileCache(cfg.Cache.Dir)
		if err != nil {
			return 0, "", fmt.Errorf("open cache: %w", err)
		}
		n, err := fc.Clear()
		return n, fc.Dir(), err
	}
	return 0, "", nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the file cache directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			fmt.Println(cfg.Cache.Dir)
			return nil
		},
	}
}

func formatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}
