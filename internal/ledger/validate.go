package ledger

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tsucho-dev/tsucho/internal/model"
)

// ErrMixedAccounts is returned when Validate receives rows from more than one account.
var ErrMixedAccounts = errors.New("rows belong to more than one account")

// Checked is a transaction annotated with the running-balance check.
// CalcBalance and IsBalanceError are for review only and are never stored.
type Checked struct {
	model.Transaction
	CalcBalance    int64
	IsBalanceError bool
}

// Discrepancy describes a row whose printed balance disagrees with the chain.
type Discrepancy struct {
	Date        string
	Description string
	Expected    int64
	Printed     int64
}

func (d Discrepancy) Error() string {
	return fmt.Sprintf("balance mismatch [%s %s]: expected %d, printed %d (diff %d)",
		d.Date, d.Description, d.Expected, d.Printed, d.Printed-d.Expected)
}

// Validate checks balance[i] == balance[i-1] + amount_in[i] - amount_out[i]
// over one account's ledger in date order. The first row is the anchor.
// After a mismatch the chain re-anchors on the printed balance so a single
// OCR misread flags one row instead of every row after it.
func Validate(rows []model.Transaction) ([]Checked, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	account := rows[0].AccountID
	for i, r := range rows {
		if r.AccountID != account {
			return nil, fmt.Errorf("%w: row %d has %q, expected %q", ErrMixedAccounts, i+1, r.AccountID, account)
		}
	}

	checked := make([]Checked, len(rows))
	for i, r := range rows {
		checked[i] = Checked{Transaction: r}
	}
	// No intra-day ordering is available, so same-day rows keep input order.
	sort.SliceStable(checked, func(i, j int) bool {
		return checked[i].Date.Before(checked[j].Date)
	})

	prev := checked[0].Balance
	checked[0].CalcBalance = prev

	for i := 1; i < len(checked); i++ {
		row := &checked[i]
		expected := prev + row.AmountIn - row.AmountOut
		row.CalcBalance = expected
		if expected != row.Balance {
			row.IsBalanceError = true
			prev = row.Balance
		} else {
			prev = expected
		}
	}
	return checked, nil
}

// Discrepancies returns one entry per flagged row, in ledger order.
func Discrepancies(checked []Checked) []Discrepancy {
	var out []Discrepancy
	for _, c := range checked {
		if !c.IsBalanceError {
			continue
		}
		out = append(out, Discrepancy{
			Date:        c.Date.Format(model.DateFormat),
			Description: c.Description,
			Expected:    c.CalcBalance,
			Printed:     c.Balance,
		})
	}
	return out
}

// Transactions drops the review columns, leaving rows ready to persist.
func Transactions(checked []Checked) []model.Transaction {
	if len(checked) == 0 {
		return nil
	}
	out := make([]model.Transaction, len(checked))
	for i, c := range checked {
		out[i] = c.Transaction
	}
	return out
}
