package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tsucho-dev/tsucho/internal/analysis"
	"github.com/tsucho-dev/tsucho/internal/ledger"
	"github.com/tsucho-dev/tsucho/internal/model"
)

func newReportCommand(opts *globalOptions) *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Print investigation reports for a case",
	}
	reportCmd.AddCommand(
		newReportTransfersCommand(opts),
		newReportLargeCommand(opts),
		newReportTransactionsCommand(opts),
	)
	return reportCmd
}

func newReportTransfersCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "transfers <case>",
		Short: "Summarise matched transfers by source and target account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(opts)
			if err != nil {
				return err
			}
			defer ws.Close()

			rows, err := ws.svc.Transactions(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			flows := analysis.TransferFlows(rows)
			if len(flows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No transfers.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "FROM\tTO\tCOUNT\tTOTAL\t")
			for _, f := range flows {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t\n", f.From, f.To, f.Count, yen(f.Total.IntPart()))
			}
			return tw.Flush()
		},
	}
}

func newReportLargeCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "large <case>",
		Short: "List large transactions, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(opts)
			if err != nil {
				return err
			}
			defer ws.Close()

			rows, err := ws.svc.Transactions(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			large := analysis.LargeTransactions(rows)
			if len(large) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No large transactions.")
				return nil
			}
			return printTransactions(cmd.OutOrStdout(), large)
		},
	}
}

func newReportTransactionsCommand(opts *globalOptions) *cobra.Command {
	var (
		filter analysis.Filter
		asCSV  bool
	)

	cmd := &cobra.Command{
		Use:   "transactions <case>",
		Short: "List transactions, optionally filtered by account and description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(opts)
			if err != nil {
				return err
			}
			defer ws.Close()

			rows, err := ws.svc.Transactions(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rows = filter.Apply(rows)
			if asCSV {
				return ledger.WriteTransactions(cmd.OutOrStdout(), rows)
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No transactions.")
				return nil
			}
			return printTransactions(cmd.OutOrStdout(), rows)
		},
	}

	cmd.Flags().StringArrayVar(&filter.Accounts, "account", nil, "only this account ID (repeatable)")
	cmd.Flags().StringVar(&filter.Keyword, "keyword", "", "only descriptions containing this text")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "write CSV instead of a table")

	return cmd
}

func printTransactions(w io.Writer, rows []model.Transaction) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tACCOUNT\tDESCRIPTION\tOUT\tIN\tBALANCE\tCATEGORY\tFLAGS")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Date.Format(model.DateFormat), r.AccountID, r.Description,
			yen(r.AmountOut), yen(r.AmountIn), yen(r.Balance),
			dash(string(r.Category)), dash(flags(r)))
	}
	return tw.Flush()
}

func flags(r model.Transaction) string {
	var s string
	if r.IsLarge {
		s = "large"
	}
	if r.IsTransfer {
		if s != "" {
			s += ","
		}
		s += "transfer"
		if r.TransferTo != "" {
			s += " → " + r.TransferTo
		}
	}
	return s
}
