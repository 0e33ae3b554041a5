// Package accounts derives account summaries from a case's transactions.
package accounts

import (
	"sort"

	"github.com/tsucho-dev/tsucho/internal/id"
	"github.com/tsucho-dev/tsucho/internal/model"
)

// Service provides lookup over the accounts present in a case.
type Service struct {
	accounts []model.Account
	byID     map[string]model.Account
}

// NewService groups rows by account ID and holder.
func NewService(rows []model.Transaction) *Service {
	accts := Summarize(rows)
	byID := make(map[string]model.Account, len(accts))
	for _, a := range accts {
		byID[a.ID] = a
	}
	return &Service{accounts: accts, byID: byID}
}

// All returns all accounts ordered by ID.
func (s *Service) All() []model.Account {
	return s.accounts
}

// Get returns an account by ID.
func (s *Service) Get(accountID string) (model.Account, bool) {
	a, ok := s.byID[accountID]
	return a, ok
}

// Exists reports whether an account ID exists.
func (s *Service) Exists(accountID string) bool {
	_, ok := s.byID[accountID]
	return ok
}

// IDs returns every account ID in order.
func (s *Service) IDs() []string {
	ids := make([]string, len(s.accounts))
	for i, a := range s.accounts {
		ids[i] = a.ID
	}
	return ids
}

// Summarize returns one Account per (account ID, holder) pair, ordered by
// ID then holder. FinalBalance is the printed balance of the latest row.
func Summarize(rows []model.Transaction) []model.Account {
	type key struct{ id, holder string }
	byKey := make(map[key]*model.Account)

	for _, r := range rows {
		k := key{r.AccountID, r.Holder}
		a, ok := byKey[k]
		if !ok {
			a = &model.Account{ID: r.AccountID, Holder: r.Holder, FirstDate: r.Date, LastDate: r.Date}
			if bank, number, ok := id.SplitAccountID(r.AccountID); ok {
				a.Bank, a.Number = bank, number
			} else {
				a.Bank = r.AccountID
			}
			byKey[k] = a
		}
		a.Transactions++
		if r.Date.Before(a.FirstDate) {
			a.FirstDate = r.Date
		}
		if !r.Date.Before(a.LastDate) {
			a.LastDate = r.Date
			a.FinalBalance = r.Balance
		}
	}

	out := make([]model.Account, 0, len(byKey))
	for _, a := range byKey {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ID != out[j].ID {
			return out[i].ID < out[j].ID
		}
		return out[i].Holder < out[j].Holder
	})
	return out
}
