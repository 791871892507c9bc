package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ganttrow/pkg/cache"
	"github.com/matzehuels/ganttrow/pkg/observability/prom"
	"github.com/matzehuels/ganttrow/pkg/server"
)

const serverKeyPrefix = "server:"

// serveCommand creates the serve command, which runs the HTTP layout API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noCache   bool
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout API over HTTP",
		Long: `Serve the layout API over HTTP.

Routes:
  GET  /healthz      liveness and version
  GET  /metrics      Prometheus metrics (unless disabled)
  POST /v1/layout    lay out and render a chart
  POST /v1/rows      lay out single rows
  POST /v1/diff      convert a drag offset into a drop event`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			timeout, err := cfg.ServerTimeout()
			if err != nil {
				return err
			}

			runner, err := c.newRunner(cmd.Context(), noCache)
			if err != nil {
				return err
			}
			defer runner.Close()
			// Server entries live apart from CLI entries in a shared backend.
			runner.Keyer = cache.NewScopedKeyer(runner.Keyer, serverKeyPrefix)

			opts := []server.Option{
				server.WithLogger(c.Logger),
				server.WithTimeout(timeout),
				server.WithDefaults(cfg.PipelineOptions()),
			}
			if cfg.Server.Metrics && !noMetrics {
				m := prom.New(prometheus.NewRegistry())
				m.Register()
				opts = append(opts, server.WithMetrics(m.Handler()))
			}

			printSuccess("Serving on http://%s", addr)
			printDetail("Cache: %s", cfg.Cache.Backend)
			return server.New(runner, opts...).ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not expose /metrics")

	return cmd
}
