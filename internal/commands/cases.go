package commands

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCaseCommand(opts *globalOptions) *cobra.Command {
	caseCmd := &cobra.Command{
		Use:   "case",
		Short: "Manage investigation cases",
	}
	caseCmd.AddCommand(
		newCaseListCommand(opts),
		newCaseCreateCommand(opts),
		newCaseDeleteCommand(opts),
	)
	return caseCmd
}

func newCaseListCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cases and their accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(opts)
			if err != nil {
				return err
			}
			defer ws.Close()

			infos, err := ws.svc.ListCases(cmd.Context())
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No cases.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CASE\tROWS\tACCOUNTS")
			for _, c := range infos {
				ids := make([]string, len(c.Accounts))
				for i, a := range c.Accounts {
					ids[i] = fmt.Sprintf("%s (%s)", a.ID, a.Holder)
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\n", c.Name, c.Rows, dash(strings.Join(ids, ", ")))
			}
			return tw.Flush()
		},
	}
}

func newCaseCreateCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(opts)
			if err != nil {
				return err
			}
			defer ws.Close()

			if err := ws.svc.CreateCase(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created case %s\n", args[0])
			return nil
		},
	}
}

func newCaseDeleteCommand(opts *globalOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a case and all of its transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("deleting a case cannot be undone; pass --yes to confirm")
			}
			ws, err := openWorkspace(opts)
			if err != nil {
				return err
			}
			defer ws.Close()

			if err := ws.svc.DeleteCase(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted case %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}
