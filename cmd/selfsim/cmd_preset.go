package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/nvandessel/selfsim/internal/interpretation"
	"github.com/nvandessel/selfsim/internal/store"
	"github.com/spf13/cobra"
)

func newPresetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "Save and restore named parameter sets",
		Long: `Presets capture the session's interpretation and parameters under a
name. They live in the configured store (sqlite in .selfsim/ by default).`,
	}
	cmd.AddCommand(
		newPresetSaveCmd(),
		newPresetListCmd(),
		newPresetLoadCmd(),
		newPresetDeleteCmd(),
		newPresetExportCmd(),
		newPresetImportCmd(),
	)
	return cmd
}

// withPresetStore opens the configured store for the duration of fn.
func withPresetStore(cmd *cobra.Command, fn func(ctx context.Context, ps store.PresetStore) error) error {
	root, _ := cmd.Flags().GetString("root")
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ps, err := store.Open(ctx, cfg.Store, root)
	if err != nil {
		return fmt.Errorf("failed to open preset store: %w", err)
	}
	defer ps.Close()
	return fn(ctx, ps)
}

func newPresetSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save NAME",
		Short: "Save the session's parameters as a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			s, _, err := loadSession(cmd)
			if err != nil {
				return err
			}
			if !s.Selected() {
				return fmt.Errorf("no interpretation selected; run 'selfsim session select ID' first")
			}
			return withPresetStore(cmd, func(ctx context.Context, ps store.PresetStore) error {
				saved, err := ps.SavePreset(ctx, store.Preset{
					Name:           args[0],
					Interpretation: s.Interpretation(),
					Params:         s.Params(),
				})
				if err != nil {
					return fmt.Errorf("failed to save preset: %w", err)
				}
				if jsonOut {
					return json.NewEncoder(cmd.OutOrStdout()).Encode(saved)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved preset %s (%s)\n", saved.Name, saved.Interpretation)
				return nil
			})
		},
	}
}

func newPresetListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			interp, _ := cmd.Flags().GetString("interp")
			return withPresetStore(cmd, func(ctx context.Context, ps store.PresetStore) error {
				presets, err := ps.ListPresets(ctx, interpretation.ID(interp))
				if err != nil {
					return fmt.Errorf("failed to list presets: %w", err)
				}
				if jsonOut {
					return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
						"presets": presets,
						"count":   len(presets),
					})
				}
				if len(presets) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No presets saved.")
					return nil
				}
				for _, p := range presets {
					fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-18s updated %s\n",
						p.Name, p.Interpretation, p.UpdatedAt.Format("2006-01-02 15:04"))
				}
				return nil
			})
		},
	}
	cmd.Flags().String("interp", "", "Only list presets for this interpretation")
	return cmd
}

func newPresetLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load NAME",
		Short: "Load a preset into the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, dir, err := loadSession(cmd)
			if err != nil {
				return err
			}
			err = withPresetStore(cmd, func(ctx context.Context, ps store.PresetStore) error {
				p, err := ps.GetPreset(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to load preset %q: %w", args[0], err)
				}
				s, err = s.Select(p.Interpretation)
				if err != nil {
					return err
				}
				in, err := interpretation.Lookup(p.Interpretation)
				if err != nil {
					return err
				}
				s, err = s.WithParams(in.Complete(p.Params))
				return err
			})
			if err != nil {
				return err
			}
			if err := saveSession(s, dir); err != nil {
				return err
			}
			return printSession(cmd, s)
		},
	}
}

func newPresetDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPresetStore(cmd, func(ctx context.Context, ps store.PresetStore) error {
				if err := ps.DeletePreset(ctx, args[0]); err != nil {
					return fmt.Errorf("failed to delete preset %q: %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted preset %s\n", args[0])
				return nil
			})
		},
	}
}

func newPresetExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export FILE",
		Short: "Export all presets as JSONL (\"-\" for stdout)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPresetStore(cmd, func(ctx context.Context, ps store.PresetStore) error {
				var w io.Writer = cmd.OutOrStdout()
				if args[0] != "-" {
					f, err := os.OpenFile(args[0], os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
					if err != nil {
						return fmt.Errorf("failed to create export file: %w", err)
					}
					defer f.Close()
					w = f
				}
				n, err := store.ExportPresets(ctx, ps, w)
				if err != nil {
					return fmt.Errorf("failed to export presets: %w", err)
				}
				if args[0] != "-" {
					fmt.Fprintf(cmd.OutOrStdout(), "Exported %d presets to %s\n", n, args[0])
				}
				return nil
			})
		},
	}
}

func newPresetImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import presets from a JSONL file (\"-\" for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPresetStore(cmd, func(ctx context.Context, ps store.PresetStore) error {
				var r io.Reader = cmd.InOrStdin()
				if args[0] != "-" {
					f, err := os.Open(args[0])
					if err != nil {
						return fmt.Errorf("failed to open import file: %w", err)
					}
					defer f.Close()
					r = f
				}
				n, err := store.ImportPresets(ctx, ps, r)
				if err != nil {
					return fmt.Errorf("failed to import presets (%d imported): %w", n, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d presets\n", n)
				return nil
			})
		},
	}
}
