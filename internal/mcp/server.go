package mcp

import (
	"context"
	"fmt"
	"os"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/selfsim/internal/config"
	"github.com/nvandessel/selfsim/internal/logging"
	"github.com/nvandessel/selfsim/internal/metrics"
	"github.com/nvandessel/selfsim/internal/ratelimit"
	"github.com/nvandessel/selfsim/internal/store"
)

// Server wraps the MCP SDK server and provides selfsim-specific functionality.
type Server struct {
	server       *sdk.Server
	presets      store.PresetStore
	root         string
	toolLimiters ratelimit.ToolLimiters
	auditLogger  *AuditLogger
	runLogger    *logging.RunLogger
	metrics      *metrics.Recorder
}

// Config holds server configuration.
type Config struct {
	Name     string             // Server name (e.g., "selfsim")
	Version  string             // Server version
	Root     string             // Project root directory
	Store    config.StoreConfig // Preset store selection
	LogLevel string             // "debug" or "trace" enables the run log
	Metrics  *metrics.Recorder  // Optional; nil disables metrics
}

// NewServer creates a new MCP server with selfsim tools.
func NewServer(ctx context.Context, cfg *Config) (*Server, error) {
	presets, err := store.Open(ctx, cfg.Store, cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to open preset store: %w", err)
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	stateDir := store.LocalPath(cfg.Root)
	s := &Server{
		server:       mcpServer,
		presets:      presets,
		root:         cfg.Root,
		toolLimiters: ratelimit.NewToolLimiters(),
		auditLogger:  NewAuditLogger(stateDir),
		runLogger:    logging.NewRunLogger(stateDir, cfg.LogLevel),
		metrics:      cfg.Metrics,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
// The caller still owns Close.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	notifySignals(sigChan)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	return s.server.Run(ctx, &sdk.StdioTransport{})
}

// Close closes the server and releases resources.
func (s *Server) Close() error {
	s.runLogger.Close()
	if err := s.auditLogger.Close(); err != nil {
		s.presets.Close()
		return err
	}
	return s.presets.Close()
}
