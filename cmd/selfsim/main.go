package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/nvandessel/selfsim/internal/config"
	"github.com/nvandessel/selfsim/internal/interpretation"
	"github.com/nvandessel/selfsim/internal/logging"
	"github.com/nvandessel/selfsim/internal/models"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "selfsim",
		Short: "Self-control simulation - compare theories against human choice data",
		Long: `selfsim simulates a snack-choice experiment under three interpretations
of self-control and compares the simulated preferences with the human data.

Pick an interpretation, adjust its parameters, run the simulation and read
the report explaining how the result differs from the reference dataset.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for agent consumption)")
	rootCmd.PersistentFlags().String("root", ".", "Project root directory")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.selfsim/config.yaml)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newInterpretationsCmd(),
		newSimulateCmd(),
		newCompareCmd(),
		newSessionCmd(),
		newPresetCmd(),
		newServeCmd(),
		newMCPServerCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

// loadConfig reads the config selected by --config and validates it.
func loadConfig(cmd *cobra.Command) (*config.SelfsimConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the operational logger for cfg on the command's stderr.
func newLogger(cmd *cobra.Command, cfg *config.SelfsimConfig) *slog.Logger {
	return logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
}

// parseAssignments parses repeated name=value flags into a ParameterSet.
func parseAssignments(assignments []string) (models.ParameterSet, error) {
	ps := models.ParameterSet{}
	for _, a := range assignments {
		name, raw, ok := strings.Cut(a, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid assignment %q (want name=value)", a)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %q", name, raw)
		}
		ps[name] = v
	}
	return ps, nil
}

// validIDs lists registry ids for error messages.
func validIDs() string {
	ids := interpretation.IDs()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	return strings.Join(names, ", ")
}
