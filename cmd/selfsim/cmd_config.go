package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nvandessel/selfsim/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect selfsim configuration",
		Long: `View the effective configuration: defaults, then the config file
(~/.selfsim/config.yaml or --config), then SELFSIM_* environment variables.

Examples:
  selfsim config show                 # Show all settings
  selfsim config get store.driver     # Get a specific setting`,
	}

	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigGetCmd(),
	)

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "show",
		Aliases: []string{"list"},
		Short:   "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			// Redact the DSN password before serialization to prevent leakage
			redacted := *cfg
			redacted.Store.DSN = cfg.Store.RedactedDSN()

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(redacted)
			}
			data, err := yaml.Marshal(redacted)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key := args[0]

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			value, found := getConfigValue(cfg, key)
			if !found {
				return fmt.Errorf("unknown configuration key: %s", key)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"key":   key,
					"value": value,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, value)
			return nil
		},
	}
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.SelfsimConfig, key string) (interface{}, bool) {
	switch key {
	case "logging.level":
		return cfg.Logging.Level, true
	case "server.addr":
		return cfg.Server.Addr, true
	case "server.allowed_origins":
		return strings.Join(cfg.Server.AllowedOrigins, ","), true
	case "server.rate_limit":
		return cfg.Server.RateLimit, true
	case "server.rate_burst":
		return cfg.Server.RateBurst, true
	case "store.driver":
		return cfg.Store.Driver, true
	case "store.dsn":
		return cfg.Store.RedactedDSN(), true
	default:
		return nil, false
	}
}
