package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/nvandessel/selfsim/internal/mcp"
	"github.com/nvandessel/selfsim/internal/metrics"
	"github.com/spf13/cobra"
)

func newMCPServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Run the MCP server over stdio",
		Long: `Serve the selfsim tools (selfsim_interpretations, selfsim_simulate,
selfsim_compare, selfsim_presets) and the selfsim://reference resource to
an MCP client over stdin/stdout. Logs go to stderr.

With --metrics-addr, tool call metrics are served at http://ADDR/metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cmd, cfg)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			var rec *metrics.Recorder
			if metricsAddr != "" {
				rec = metrics.NewRecorder()
				addr, stop, err := serveMetrics(metricsAddr, rec)
				if err != nil {
					return err
				}
				defer stop()
				logger.Info("mcp metrics listening", "addr", addr)
			}

			srv, err := mcp.NewServer(ctx, &mcp.Config{
				Name:     "selfsim",
				Version:  version,
				Root:     root,
				Store:    cfg.Store,
				LogLevel: cfg.Logging.Level,
				Metrics:  rec,
			})
			if err != nil {
				return fmt.Errorf("failed to create MCP server: %w", err)
			}
			defer srv.Close()

			logger.Info("mcp server starting", "root", root, "store", cfg.Store.Driver)
			if err := srv.Run(ctx); err != nil {
				return fmt.Errorf("mcp server: %w", err)
			}
			logger.Info("mcp server stopped")
			return nil
		},
	}
	cmd.Flags().String("metrics-addr", "", "Serve prometheus metrics on this address (disabled when empty)")
	return cmd
}

// serveMetrics exposes rec on addr in the background. It returns the bound
// address and a function that shuts the listener down.
func serveMetrics(addr string, rec *metrics.Recorder) (string, func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("metrics listen: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", rec.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go srv.Serve(ln)
	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
	return ln.Addr().String(), stop, nil
}
