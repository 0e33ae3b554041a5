package commands

import (
	"github.com/spf13/cobra"
)

func newAnalyzeCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <case>",
		Short: "Re-run large-amount and transfer detection over a case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(opts)
			if err != nil {
				return err
			}
			defer ws.Close()

			sum, err := ws.svc.Reanalyze(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), sum)
			return nil
		},
	}
}
