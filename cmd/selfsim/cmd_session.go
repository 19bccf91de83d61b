package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/nvandessel/selfsim/internal/config"
	"github.com/nvandessel/selfsim/internal/interpretation"
	"github.com/nvandessel/selfsim/internal/logging"
	"github.com/nvandessel/selfsim/internal/session"
	"github.com/nvandessel/selfsim/internal/store"
	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Work with the persisted session in .selfsim/",
		Long: `The session keeps the selected interpretation and its parameters in
.selfsim/session-state.json between invocations. Outcomes are not stored;
run and analyze recompute them from the saved parameters.`,
	}
	cmd.AddCommand(
		newSessionSelectCmd(),
		newSessionSetCmd(),
		newSessionResetCmd(),
		newSessionRunCmd(),
		newSessionAnalyzeCmd(),
		newSessionShowCmd(),
	)
	return cmd
}

// loadSession reads the session for --root.
func loadSession(cmd *cobra.Command) (session.Session, string, error) {
	root, _ := cmd.Flags().GetString("root")
	dir := store.LocalPath(root)
	s, err := session.LoadState(dir)
	if err != nil {
		return session.Session{}, "", fmt.Errorf("failed to load session: %w", err)
	}
	return s, dir, nil
}

// saveSession persists s, creating the state directory on first use.
func saveSession(s session.Session, dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	if err := session.SaveState(s, dir); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func newSessionSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select ID",
		Short: "Select an interpretation and load its defaults",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, dir, err := loadSession(cmd)
			if err != nil {
				return err
			}
			s, err = s.Select(interpretation.ID(args[0]))
			if err != nil {
				return fmt.Errorf("%w (valid: %s)", err, validIDs())
			}
			if err := saveSession(s, dir); err != nil {
				return err
			}
			return printSession(cmd, s)
		},
	}
}

func newSessionSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set NAME VALUE",
		Short: "Set one parameter of the selected interpretation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %q", args[0], args[1])
			}
			s, dir, err := loadSession(cmd)
			if err != nil {
				return err
			}
			s, err = s.Set(args[0], v)
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

func newSessionResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the defaults of the selected interpretation",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, dir, err := loadSession(cmd)
			if err != nil {
				return err
			}
			s = s.Reset()
			if err := saveSession(s, dir); err != nil {
				return err
			}
			return printSession(cmd, s)
		},
	}
}

func newSessionRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Simulate the session's current parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, false)
		},
	}
}

func newSessionAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Simulate and compare the session with the human data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, true)
		},
	}
}

func runSession(cmd *cobra.Command, analyze bool) error {
	jsonOut, _ := cmd.Flags().GetBool("json")
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, dir, err := loadSession(cmd)
	if err != nil {
		return err
	}
	// Run and Analyze are no-ops without a selection.
	if !s.Selected() {
		if jsonOut {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
				"session":  s.ID(),
				"outcomes": []interface{}{},
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No interpretation selected; nothing to run. Use 'selfsim session select ID' first.")
		return nil
	}

	s = s.Run()
	source := "session-run"
	if analyze {
		s = s.Analyze()
		source = "session-analyze"
	}
	logSessionRun(cfg, dir, source, s)

	out, _ := s.Outcomes()
	report, hasReport := s.Report()
	if jsonOut {
		result := map[string]interface{}{
			"session":        s.ID(),
			"interpretation": s.Interpretation(),
			"outcomes":       out.Records(),
		}
		if hasReport {
			result["report"] = report
			result["text"] = report.Text()
		}
		return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
	}

	printOutcomes(cmd.OutOrStdout(), out)
	if hasReport {
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprint(cmd.OutOrStdout(), report.Text())
	}
	return nil
}

func logSessionRun(cfg *config.SelfsimConfig, dir, source string, s session.Session) {
	runs := logging.NewRunLogger(dir, cfg.Logging.Level)
	defer runs.Close()
	logRun(runs, source, s)
}

func newSessionShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the selected interpretation and parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := loadSession(cmd)
			if err != nil {
				return err
			}
			return printSession(cmd, s)
		},
	}
}

func printSession(cmd *cobra.Command, s session.Session) error {
	jsonOut, _ := cmd.Flags().GetBool("json")
	if jsonOut {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
			"session":        s.ID(),
			"interpretation": s.Interpretation(),
			"params":         s.Params(),
		})
	}

	w := cmd.OutOrStdout()
	if !s.Selected() {
		fmt.Fprintf(w, "Session %s: no interpretation selected.\n", s.ID())
		return nil
	}
	fmt.Fprintf(w, "Session %s: %s\n", s.ID(), s.Interpretation())
	in, err := interpretation.Lookup(s.Interpretation())
	if err != nil {
		return err
	}
	params := s.Params()
	for _, p := range in.Params {
		marker := ""
		if params[p.Name] != p.Default {
			marker = fmt.Sprintf("  (default %g)", p.Default)
		}
		fmt.Fprintf(w, "  %-22s %g%s\n", p.Name, params[p.Name], marker)
	}
	return nil
}
