package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tsucho-dev/tsucho/internal/auditlog"
)

func newLogCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "log [case]",
		Short: "Show the audit trail, optionally for one case",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(opts)
			if err != nil {
				return err
			}
			defer ws.Close()

			entries, err := auditlog.Read(ws.root)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				entries = auditlog.ForCase(entries, args[0])
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No entries.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tCASE\tACTION\tACCOUNT\tDETAILS\tCOMMIT")
			for _, e := range entries {
				commit := e.CommitHash
				if len(commit) > 7 {
					commit = commit[:7]
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					e.Timestamp.Local().Format(time.DateTime), dash(e.Case), e.Action,
					dash(e.AccountID), e.Details, dash(commit))
			}
			return tw.Flush()
		},
	}
}
