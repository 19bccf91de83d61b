package main

import (
	"encoding/json"
	"fmt"

	"github.com/nvandessel/selfsim/internal/models"
	"github.com/spf13/cobra"
)

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Simulate and compare the result with the human data",
		Long: `Run the simulator for an interpretation, then compare its outcomes with
the reference dataset: significant parameter changes, per-condition
differences, preference gaps and the convergence verdict.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			sess, err := evaluateFromFlags(cmd, "compare", true)
			if err != nil {
				return err
			}
			out, _ := sess.Outcomes()
			report, _ := sess.Report()

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"interpretation": sess.Interpretation(),
					"params":         sess.Params(),
					"outcomes":       out.Records(),
					"reference":      models.ReferenceDataset().Records(),
					"report":         report,
					"text":           report.Text(),
				})
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "Simulated:")
			printOutcomes(w, out)
			fmt.Fprintln(w, "\nHuman:")
			printOutcomes(w, models.ReferenceDataset())
			fmt.Fprintln(w)
			fmt.Fprint(w, report.Text())
			return nil
		},
	}
	addEvaluateFlags(cmd)
	return cmd
}
