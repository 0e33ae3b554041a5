package analysis

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tsucho-dev/tsucho/internal/id"
	"github.com/tsucho-dev/tsucho/internal/model"
)

// UnknownAccount labels a flow whose transfer_to cannot be parsed.
const UnknownAccount = "Unknown"

// Flow aggregates matched outgoing legs from one account to another.
type Flow struct {
	From  string
	To    string
	Count int
	Total decimal.Decimal
}

// TransferFlows groups outgoing transfer legs by (source, target) account.
// Flows are ordered by source then target.
func TransferFlows(rows []model.Transaction) []Flow {
	type key struct{ from, to string }
	byKey := make(map[key]*Flow)

	for _, r := range rows {
		if !r.IsTransfer || r.AmountOut <= 0 {
			continue
		}
		to := UnknownAccount
		if acct, _, err := id.ParseTransferRef(r.TransferTo); err == nil {
			to = acct
		}
		k := key{r.AccountID, to}
		f, ok := byKey[k]
		if !ok {
			f = &Flow{From: k.from, To: k.to, Total: decimal.Zero}
			byKey[k] = f
		}
		f.Count++
		f.Total = f.Total.Add(decimal.NewFromInt(r.AmountOut))
	}

	flows := make([]Flow, 0, len(byKey))
	for _, f := range byKey {
		flows = append(flows, *f)
	}
	sort.Slice(flows, func(i, j int) bool {
		if flows[i].From != flows[j].From {
			return flows[i].From < flows[j].From
		}
		return flows[i].To < flows[j].To
	})
	return flows
}

// LargeTransactions returns the rows flagged IsLarge, newest first.
func LargeTransactions(rows []model.Transaction) []model.Transaction {
	var out []model.Transaction
	for _, r := range rows {
		if r.IsLarge {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// Filter narrows a transaction listing. Zero fields match everything.
type Filter struct {
	Accounts []string
	Keyword  string
}

// Apply returns the rows whose account is in f.Accounts and whose
// description contains f.Keyword.
func (f Filter) Apply(rows []model.Transaction) []model.Transaction {
	accounts := make(map[string]bool, len(f.Accounts))
	for _, a := range f.Accounts {
		accounts[a] = true
	}

	var out []model.Transaction
	for _, r := range rows {
		if len(accounts) > 0 && !accounts[r.AccountID] {
			continue
		}
		if f.Keyword != "" && !strings.Contains(r.Description, f.Keyword) {
			continue
		}
		out = append(out, r)
	}
	return out
}
