package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/nvandessel/selfsim/internal/config"
	"github.com/nvandessel/selfsim/internal/logging"
	"github.com/nvandessel/selfsim/internal/metrics"
	"github.com/nvandessel/selfsim/internal/store"
	"github.com/nvandessel/selfsim/internal/visualization"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the interactive browser view",
		Long: `Start an HTTP server with the interpretation cards, parameter sliders,
outcome chart and comparison report. The JSON API and prometheus metrics
are served alongside the page.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			addr, _ := cmd.Flags().GetString("addr")
			noOpen, _ := cmd.Flags().GetBool("no-open")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			presets, err := store.Open(ctx, cfg.Store, root)
			if err != nil {
				return fmt.Errorf("failed to open preset store: %w", err)
			}
			defer presets.Close()

			runs := logging.NewRunLogger(store.LocalPath(root), cfg.Logging.Level)
			defer runs.Close()

			srv := visualization.NewServer(visualization.Options{
				Addr:           cfg.Server.Addr,
				AllowedOrigins: cfg.Server.AllowedOrigins,
				RateLimit:      cfg.Server.RateLimit,
				RateBurst:      cfg.Server.RateBurst,
				Presets:        presets,
				Metrics:        metrics.NewRecorder(),
				Runs:           runs,
				Logger:         newLogger(cmd, cfg),
			})
			return runViewServer(cmd, ctx, srv, noOpen)
		},
	}
	cmd.Flags().String("addr", "", "Listen address (default from config, "+config.Default().Server.Addr+")")
	cmd.Flags().Bool("no-open", false, "Don't open the browser")
	return cmd
}

// runViewServer starts srv, prints its URL and blocks until it stops.
func runViewServer(cmd *cobra.Command, ctx context.Context, srv *visualization.Server, noOpen bool) error {
	srvCtx, srvCancel := context.WithCancel(ctx)
	defer srvCancel()

	// Handle SIGINT/SIGTERM for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	notifySignals(sigCh)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			srvCancel()
		case <-srvCtx.Done():
		}
	}()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(srvCtx) }()

	// Wait for server to start
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) && srv.Addr() == "" {
		select {
		case err := <-errCh:
			if err == nil {
				return fmt.Errorf("server stopped before it started")
			}
			return fmt.Errorf("server error: %w", err)
		case <-time.After(10 * time.Millisecond):
		}
	}

	addr := srv.Addr()
	if addr == "" {
		return fmt.Errorf("server failed to start")
	}

	url := "http://" + addr
	fmt.Fprintf(cmd.OutOrStdout(), "selfsim view running at %s\n", url)
	fmt.Fprintf(cmd.OutOrStdout(), "Press Ctrl-C to stop.\n")

	if !noOpen {
		if err := visualization.OpenBrowser(url); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Could not open browser: %v\nOpen %s manually.\n", err, url)
		}
	}

	// Block until server exits
	if err := <-errCh; err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
