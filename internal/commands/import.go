package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tsucho-dev/tsucho/internal/casework"
	"github.com/tsucho-dev/tsucho/internal/importer"
	"github.com/tsucho-dev/tsucho/internal/model"
)

func newImportCommand(opts *globalOptions) *cobra.Command {
	var (
		bank    string
		number  string
		holder  string
		format  string
		dryRun  bool
		replace bool
	)

	cmd := &cobra.Command{
		Use:   "import <case> <file.csv>",
		Short: "Import a passbook statement into a case",
		Long: `Import a passbook CSV into a case. Each row's balance is checked
against the running total, then large-amount and transfer detection is
re-run over the whole case.

The bank name and account number default to the statement's own header
lines and can be overridden with --bank and --number.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(opts)
			if err != nil {
				return err
			}
			defer ws.Close()

			stmt, err := importer.DefaultRegistry().ParseFile(format, args[1])
			if err != nil {
				return err
			}
			params := casework.ImportParams{
				Case:      args[0],
				Statement: stmt,
				Bank:      bank,
				Number:    number,
				Holder:    holder,
				Replace:   replace,
			}

			w := cmd.OutOrStdout()
			if dryRun {
				res, err := ws.svc.Preview(cmd.Context(), params)
				if err != nil {
					return err
				}
				printChecked(w, res)
				fmt.Fprintln(w, "Dry run, nothing saved.")
				return nil
			}

			res, err := ws.svc.Import(cmd.Context(), params)
			if err != nil {
				return err
			}
			printImportResult(w, res)
			return nil
		},
	}

	cmd.Flags().StringVar(&bank, "bank", "", "bank name (overrides the statement header)")
	cmd.Flags().StringVar(&number, "number", "", "account number (overrides the statement header)")
	cmd.Flags().StringVar(&holder, "holder", "", "account holder name (required)")
	cmd.Flags().StringVar(&format, "format", importer.DefaultFormat, "statement format")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate and preview without saving")
	cmd.Flags().BoolVar(&replace, "replace", false, "replace the account's existing rows")
	_ = cmd.MarkFlagRequired("holder")

	return cmd
}

func printChecked(w io.Writer, res *casework.ImportResult) {
	fmt.Fprintf(w, "Account: %s\n", res.AccountID)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tDESCRIPTION\tOUT\tIN\tBALANCE\tCHECK")
	for _, c := range res.Checked {
		check := "ok"
		if c.IsBalanceError {
			check = "expected " + yen(c.CalcBalance)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			c.Date.Format(model.DateFormat), c.Description,
			yen(c.AmountOut), yen(c.AmountIn), yen(c.Balance), check)
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "%d rows, %d balance errors\n", len(res.Checked), len(res.Discrepancies))
}

func printImportResult(w io.Writer, res *casework.ImportResult) {
	fmt.Fprintf(w, "Imported %d rows into %s\n", len(res.Checked), res.AccountID)
	if res.Replaced > 0 {
		fmt.Fprintf(w, "Replaced %d existing rows\n", res.Replaced)
	}
	if len(res.Discrepancies) > 0 {
		fmt.Fprintf(w, "%d balance errors:\n", len(res.Discrepancies))
		for _, d := range res.Discrepancies {
			fmt.Fprintf(w, "  %s\n", d.Error())
		}
	}
	printSummary(w, res.Summary)
}

func printSummary(w io.Writer, s casework.Summary) {
	fmt.Fprintf(w, "Case: %d rows, %d large, %d transfer pairs\n", s.Rows, s.Large, s.TransferPairs)
}
