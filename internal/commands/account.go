package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tsucho-dev/tsucho/internal/model"
)

func newAccountCommand(opts *globalOptions) *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Inspect and remove accounts within a case",
	}
	accountCmd.AddCommand(
		newAccountListCommand(opts),
		newAccountDeleteCommand(opts),
	)
	return accountCmd
}

func newAccountListCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <case>",
		Short: "List the accounts of a case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(opts)
			if err != nil {
				return err
			}
			defer ws.Close()

			svc, err := ws.svc.Accounts(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			all := svc.All()
			if len(all) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No accounts.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ACCOUNT\tHOLDER\tROWS\tFROM\tTO\tBALANCE")
			for _, a := range all {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
					a.ID, a.Holder, a.Transactions,
					a.FirstDate.Format(model.DateFormat), a.LastDate.Format(model.DateFormat),
					yen(a.FinalBalance))
			}
			return tw.Flush()
		},
	}
}

func newAccountDeleteCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <case> <account_id>",
		Short: "Delete every row of one account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(opts)
			if err != nil {
				return err
			}
			defer ws.Close()

			n, err := ws.svc.DeleteAccount(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d rows of %s\n", n, args[1])
			return nil
		},
	}
}
