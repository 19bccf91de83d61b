package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/nvandessel/selfsim/internal/config"
	"github.com/nvandessel/selfsim/internal/interpretation"
	"github.com/nvandessel/selfsim/internal/logging"
	"github.com/nvandessel/selfsim/internal/models"
	"github.com/nvandessel/selfsim/internal/session"
	"github.com/nvandessel/selfsim/internal/store"
	"github.com/spf13/cobra"
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate the experiment under one interpretation",
		Long: `Run the simulator for an interpretation and print the Before and After
preference scores. Parameters start at their defaults (or at a saved
preset) and can be overridden with --set name=value.

Examples:
  selfsim simulate --interp goal-goal
  selfsim simulate --interp utility --set discountRate=0.3
  selfsim simulate --preset strong-shield`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			sess, err := evaluateFromFlags(cmd, "simulate", false)
			if err != nil {
				return err
			}
			out, _ := sess.Outcomes()

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"interpretation": sess.Interpretation(),
					"params":         sess.Params(),
					"outcomes":       out.Records(),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Interpretation: %s\n\n", sess.Interpretation())
			printOutcomes(cmd.OutOrStdout(), out)
			return nil
		},
	}
	addEvaluateFlags(cmd)
	return cmd
}

// addEvaluateFlags registers the interpretation selection flags shared by
// simulate and compare.
func addEvaluateFlags(cmd *cobra.Command) {
	cmd.Flags().String("interp", "", "Interpretation id ("+validIDs()+")")
	cmd.Flags().StringArray("set", nil, "Override a parameter as name=value (repeatable)")
	cmd.Flags().String("preset", "", "Start from a saved preset instead of the defaults")
}

// evaluateFromFlags resolves --interp, --preset and --set and simulates,
// analyzing the outcomes when analyze is true. The run is written to the run
// log when enabled.
func evaluateFromFlags(cmd *cobra.Command, source string, analyze bool) (session.Session, error) {
	root, _ := cmd.Flags().GetString("root")
	interp, _ := cmd.Flags().GetString("interp")
	presetName, _ := cmd.Flags().GetString("preset")
	assignments, _ := cmd.Flags().GetStringArray("set")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return session.Session{}, err
	}
	overrides, err := parseAssignments(assignments)
	if err != nil {
		return session.Session{}, err
	}

	id := interpretation.ID(interp)
	params := models.ParameterSet{}
	if presetName != "" {
		p, err := loadPreset(cmd.Context(), cfg, root, presetName)
		if err != nil {
			return session.Session{}, err
		}
		if id != "" && id != p.Interpretation {
			return session.Session{}, fmt.Errorf("preset %q belongs to %s, not %s", p.Name, p.Interpretation, id)
		}
		id = p.Interpretation
		for name, v := range p.Params {
			params[name] = v
		}
	}
	if id == "" {
		return session.Session{}, fmt.Errorf("--interp is required (one of %s)", validIDs())
	}
	for name, v := range overrides {
		params[name] = v
	}

	evaluate := session.Simulate
	if analyze {
		evaluate = session.Evaluate
	}
	sess, err := evaluate(id, params)
	if err != nil {
		if errors.Is(err, interpretation.ErrUnknownInterpretation) {
			return session.Session{}, fmt.Errorf("%w (valid: %s)", err, validIDs())
		}
		return session.Session{}, err
	}

	newLogger(cmd, cfg).Debug("evaluated", "source", source, "interpretation", id, "session", sess.ID())
	runs := logging.NewRunLogger(store.LocalPath(root), cfg.Logging.Level)
	defer runs.Close()
	logRun(runs, source, sess)
	return sess, nil
}

// logRun writes the simulation and, when present, the comparison to the run log.
func logRun(runs *logging.RunLogger, source string, sess session.Session) {
	if out, ok := sess.Outcomes(); ok {
		runs.LogSimulation(source, sess.Interpretation(), sess.Params(), out)
	}
	if report, ok := sess.Report(); ok {
		runs.LogComparison(source, report)
	}
}

// loadPreset opens the configured store and reads one preset.
func loadPreset(ctx context.Context, cfg *config.SelfsimConfig, root, name string) (store.Preset, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ps, err := store.Open(ctx, cfg.Store, root)
	if err != nil {
		return store.Preset{}, fmt.Errorf("failed to open preset store: %w", err)
	}
	defer ps.Close()
	p, err := ps.GetPreset(ctx, name)
	if err != nil {
		return store.Preset{}, fmt.Errorf("failed to load preset %q: %w", name, err)
	}
	return p, nil
}

func printOutcomes(w io.Writer, out models.OutcomePair) {
	fmt.Fprintf(w, "%-14s %8s %10s %8s\n", "Condition", "Granola", "Chocolate", "Gap")
	for _, rec := range out.Records() {
		fmt.Fprintf(w, "%-14s %8g %10g %+8g\n", rec.Condition, rec.Granola, rec.Chocolate, rec.Gap())
	}
}
