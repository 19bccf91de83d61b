package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/nvandessel/selfsim/internal/interpretation"
	"github.com/spf13/cobra"
)

func newInterpretationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "interpretations",
		Aliases: []string{"list"},
		Short:   "List the available interpretations and their parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			all := interpretation.All()
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"interpretations": all,
					"count":           len(all),
				})
			}
			for i, in := range all {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				printInterpretation(cmd.OutOrStdout(), in)
			}
			return nil
		},
	}
}

func printInterpretation(w io.Writer, in interpretation.Interpretation) {
	fmt.Fprintf(w, "%s  %s\n", in.ID, in.Name)
	fmt.Fprintf(w, "  %s\n", in.Summary)
	for _, group := range in.Groups() {
		fmt.Fprintf(w, "  %s:\n", group)
		for _, p := range in.ParamsInGroup(group) {
			fmt.Fprintf(w, "    %-22s %g [%g..%g]  %s\n", p.Name, p.Default, p.Min, p.Max, p.Label)
		}
	}
}
