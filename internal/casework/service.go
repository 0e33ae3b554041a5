// Package casework implements the case workflows: import, re-analysis,
// classification and account deletion.
package casework

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tsucho-dev/tsucho/internal/accounts"
	"github.com/tsucho-dev/tsucho/internal/analysis"
	"github.com/tsucho-dev/tsucho/internal/auditlog"
	"github.com/tsucho-dev/tsucho/internal/classify"
	"github.com/tsucho-dev/tsucho/internal/gitops"
	"github.com/tsucho-dev/tsucho/internal/id"
	"github.com/tsucho-dev/tsucho/internal/importer"
	"github.com/tsucho-dev/tsucho/internal/ledger"
	"github.com/tsucho-dev/tsucho/internal/logger"
	"github.com/tsucho-dev/tsucho/internal/model"
	"github.com/tsucho-dev/tsucho/internal/store"
)

// ErrAccountNotFound is returned when deleting an account the case lacks.
var ErrAccountNotFound = errors.New("account not found")

// Options configures a Service.
type Options struct {
	Root                 string // data root for the audit log and git
	LargeAmountThreshold int64
	Transfer             analysis.TransferOptions
	AutoCommit           bool
	Author               gitops.Author
}

// Service runs case workflows against a Store.
type Service struct {
	store store.Store
	opts  Options
	runID string
	now   func() time.Time
}

// NewService creates a case Service.
func NewService(st store.Store, opts Options) *Service {
	return &Service{
		store: st,
		opts:  opts,
		runID: auditlog.NewRunID(),
		now:   time.Now,
	}
}

// CaseInfo summarises one case.
type CaseInfo struct {
	Name     string
	Rows     int
	Accounts []model.Account
}

// ListCases returns every case with its accounts.
func (s *Service) ListCases(ctx context.Context) ([]CaseInfo, error) {
	names, err := s.store.ListCases(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing cases: %w", err)
	}
	infos := make([]CaseInfo, 0, len(names))
	for _, name := range names {
		rows, err := s.store.Load(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("loading case %s: %w", name, err)
		}
		infos = append(infos, CaseInfo{Name: name, Rows: len(rows), Accounts: accounts.Summarize(rows)})
	}
	return infos, nil
}

// CreateCase creates an empty case.
func (s *Service) CreateCase(ctx context.Context, name string) error {
	if err := s.store.CreateCase(ctx, name); err != nil {
		return fmt.Errorf("creating case: %w", err)
	}
	return s.record(ctx, name, auditlog.ActionCreateCase, "created", "")
}

// DeleteCase removes a case and all its data.
func (s *Service) DeleteCase(ctx context.Context, name string) error {
	if err := s.store.DeleteCase(ctx, name); err != nil {
		return fmt.Errorf("deleting case: %w", err)
	}
	return s.record(ctx, name, auditlog.ActionDeleteCase, "deleted", "")
}

// Transactions returns every row of a case.
func (s *Service) Transactions(ctx context.Context, name string) ([]model.Transaction, error) {
	rows, err := s.store.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("loading case: %w", err)
	}
	return rows, nil
}

// Accounts returns the accounts present in a case.
func (s *Service) Accounts(ctx context.Context, name string) (*accounts.Service, error) {
	rows, err := s.Transactions(ctx, name)
	if err != nil {
		return nil, err
	}
	return accounts.NewService(rows), nil
}

// ImportParams describes one passbook import.
type ImportParams struct {
	Case      string
	Statement *importer.Statement
	Bank      string // overrides Statement.Meta.Bank
	Number    string // overrides Statement.Meta.Number
	Holder    string
	Replace   bool // drop the account's existing rows first
}

// ImportResult reports the outcome of Preview or Import.
type ImportResult struct {
	AccountID     string
	Checked       []ledger.Checked
	Discrepancies []ledger.Discrepancy
	Replaced      int // existing rows removed by Replace
	Summary       Summary
}

// Summary counts the analysis flags over a whole case.
type Summary struct {
	Rows          int
	Large         int
	TransferPairs int
}

// Preview validates a statement without saving anything.
func (s *Service) Preview(ctx context.Context, p ImportParams) (*ImportResult, error) {
	if _, err := s.store.Load(ctx, p.Case); err != nil {
		return nil, fmt.Errorf("loading case: %w", err)
	}
	return s.check(p)
}

func (s *Service) check(p ImportParams) (*ImportResult, error) {
	if p.Statement == nil {
		return nil, errors.New("no statement to import")
	}
	bank := firstNonEmpty(p.Bank, p.Statement.Meta.Bank)
	number := firstNonEmpty(p.Number, p.Statement.Meta.Number)
	accountID, err := id.FormatAccountID(bank, number)
	if err != nil {
		return nil, fmt.Errorf("resolving account: %w", err)
	}
	holder := strings.TrimSpace(p.Holder)
	if holder == "" {
		return nil, errors.New("account holder is required")
	}

	rows := model.Clone(p.Statement.Rows)
	for i := range rows {
		rows[i].AccountID = accountID
		rows[i].Holder = holder
	}
	checked, err := ledger.Validate(rows)
	if err != nil {
		return nil, fmt.Errorf("validating balances: %w", err)
	}
	return &ImportResult{
		AccountID:     accountID,
		Checked:       checked,
		Discrepancies: ledger.Discrepancies(checked),
	}, nil
}

// Import validates a statement, merges it into the case and re-runs the
// large-amount and transfer analysis over the whole case.
func (s *Service) Import(ctx context.Context, p ImportParams) (*ImportResult, error) {
	existing, err := s.store.Load(ctx, p.Case)
	if err != nil {
		return nil, fmt.Errorf("loading case: %w", err)
	}
	res, err := s.check(p)
	if err != nil {
		return nil, err
	}

	if p.Replace {
		kept := existing[:0:0]
		for _, r := range existing {
			if r.AccountID != res.AccountID {
				kept = append(kept, r)
			}
		}
		res.Replaced = len(existing) - len(kept)
		existing = kept
	}

	merged := append(model.Clone(existing), ledger.Transactions(res.Checked)...)
	merged = s.analyze(merged)
	if err := s.store.Save(ctx, p.Case, merged); err != nil {
		return nil, fmt.Errorf("saving case: %w", err)
	}
	res.Summary = summarize(merged)

	log := logger.FromContext(ctx)
	log.Info().
		Str("case", p.Case).
		Str("account", res.AccountID).
		Int("rows", len(res.Checked)).
		Int("balance_errors", len(res.Discrepancies)).
		Int("replaced", res.Replaced).
		Msg("imported statement")

	details := fmt.Sprintf("%d rows, %d balance errors", len(res.Checked), len(res.Discrepancies))
	if res.Replaced > 0 {
		details += fmt.Sprintf(", replaced %d rows", res.Replaced)
	}
	if err := s.record(ctx, p.Case, auditlog.ActionImport, details, res.AccountID); err != nil {
		return nil, err
	}
	return res, nil
}

// Reanalyze recomputes the large-amount and transfer flags of a case.
func (s *Service) Reanalyze(ctx context.Context, name string) (Summary, error) {
	rows, err := s.store.Load(ctx, name)
	if err != nil {
		return Summary{}, fmt.Errorf("loading case: %w", err)
	}
	rows = s.analyze(rows)
	if err := s.store.Save(ctx, name, rows); err != nil {
		return Summary{}, fmt.Errorf("saving case: %w", err)
	}
	sum := summarize(rows)
	details := fmt.Sprintf("%d large, %d transfer pairs", sum.Large, sum.TransferPairs)
	if err := s.record(ctx, name, auditlog.ActionReanalyze, details, ""); err != nil {
		return Summary{}, err
	}
	return sum, nil
}

// Classify fills in missing categories of a case.
func (s *Service) Classify(ctx context.Context, name string, p *classify.Pipeline) (classify.Stats, error) {
	rows, err := s.store.Load(ctx, name)
	if err != nil {
		return classify.Stats{}, fmt.Errorf("loading case: %w", err)
	}
	out, stats, err := p.Run(ctx, rows)
	if err != nil {
		return classify.Stats{}, fmt.Errorf("classifying: %w", err)
	}
	if stats.Targeted == 0 {
		return stats, nil
	}
	if err := s.store.Save(ctx, name, out); err != nil {
		return classify.Stats{}, fmt.Errorf("saving case: %w", err)
	}
	details := fmt.Sprintf("%d rows, %d unique descriptions", stats.Targeted, stats.Unique)
	if err := s.record(ctx, name, auditlog.ActionClassify, details, ""); err != nil {
		return classify.Stats{}, err
	}
	return stats, nil
}

// DeleteAccount removes every row of an account. Transfer flags on other
// accounts are left as they are until the next import or Reanalyze.
func (s *Service) DeleteAccount(ctx context.Context, name, accountID string) (int, error) {
	n, err := s.store.DeleteAccount(ctx, name, accountID)
	if err != nil {
		return 0, fmt.Errorf("deleting account: %w", err)
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
	}
	if err := s.record(ctx, name, auditlog.ActionDeleteAccount, fmt.Sprintf("%d rows", n), accountID); err != nil {
		return 0, err
	}
	return n, nil
}

// RecordSetting writes a configuration change to the audit trail.
func (s *Service) RecordSetting(ctx context.Context, key, value string) error {
	return s.record(ctx, "", auditlog.ActionConfigSet, key+"="+value, "")
}

func (s *Service) analyze(rows []model.Transaction) []model.Transaction {
	rows = analysis.FlagLarge(rows, s.opts.LargeAmountThreshold)
	return analysis.MatchTransfers(rows, s.opts.Transfer)
}

// record commits the data root when enabled and appends an audit entry.
func (s *Service) record(ctx context.Context, caseName, action, details, accountID string) error {
	if s.opts.Root == "" {
		return nil
	}
	var hash string
	if s.opts.AutoCommit && gitops.IsRepo(s.opts.Root) {
		msg := action
		if caseName != "" {
			msg += ": " + caseName
		}
		if accountID != "" {
			msg += " " + accountID
		}
		var err error
		hash, err = gitops.CommitAll(s.opts.Root, msg, s.opts.Author)
		if err != nil {
			log := logger.FromContext(ctx)
			log.Warn().Err(err).Msg("auto-commit failed")
		}
	}
	err := auditlog.Append(s.opts.Root, []auditlog.Entry{{
		Timestamp:  s.now().UTC(),
		RunID:      s.runID,
		Case:       caseName,
		Action:     action,
		Details:    details,
		AccountID:  accountID,
		CommitHash: hash,
	}})
	if err != nil {
		return fmt.Errorf("writing audit log: %w", err)
	}
	return nil
}

func summarize(rows []model.Transaction) Summary {
	sum := Summary{Rows: len(rows)}
	for _, r := range rows {
		if r.IsLarge {
			sum.Large++
		}
		if r.IsTransfer && r.TransferTo != "" {
			sum.TransferPairs++
		}
	}
	return sum
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
