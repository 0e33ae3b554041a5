package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/tsucho-dev/tsucho/internal/ledger"
	"github.com/tsucho-dev/tsucho/internal/model"
)

// CasesDir is the directory under the data root holding one directory per case.
const CasesDir = "cases"

// TransactionsFile is the per-case CSV file.
const TransactionsFile = "transactions.csv"

// CSVStore keeps each case as <root>/cases/<name>/transactions.csv.
type CSVStore struct {
	root string
}

// NewCSVStore creates a CSV store rooted at root.
func NewCSVStore(root string) *CSVStore {
	return &CSVStore{root: root}
}

// ListCases returns case names in lexical order.
func (s *CSVStore) ListCases(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, CasesDir))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cases dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// CreateCase creates an empty case.
func (s *CSVStore) CreateCase(_ context.Context, name string) error {
	if err := ValidateCaseName(name); err != nil {
		return err
	}
	dir := s.caseDir(name)
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("%w: %s", ErrCaseExists, name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating case dir: %w", err)
	}
	return s.write(name, nil)
}

// DeleteCase removes a case and all its data.
func (s *CSVStore) DeleteCase(_ context.Context, name string) error {
	if err := s.exists(name); err != nil {
		return err
	}
	if err := os.RemoveAll(s.caseDir(name)); err != nil {
		return fmt.Errorf("removing case %s: %w", name, err)
	}
	return nil
}

// Load reads every row of a case.
func (s *CSVStore) Load(_ context.Context, name string) ([]model.Transaction, error) {
	if err := s.exists(name); err != nil {
		return nil, err
	}
	path := filepath.Join(s.caseDir(name), TransactionsFile)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rows, err := ledger.ReadTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return rows, nil
}

// Save replaces every row of a case.
func (s *CSVStore) Save(_ context.Context, name string, rows []model.Transaction) error {
	if err := s.exists(name); err != nil {
		return err
	}
	return s.write(name, rows)
}

// DeleteAccount removes every row of accountID from a case.
func (s *CSVStore) DeleteAccount(ctx context.Context, name, accountID string) (int, error) {
	rows, err := s.Load(ctx, name)
	if err != nil {
		return 0, err
	}
	kept, removed := withoutAccount(rows, accountID)
	if removed == 0 {
		return 0, nil
	}
	if err := s.write(name, kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// Close implements Store.
func (s *CSVStore) Close() error { return nil }

// write replaces transactions.csv through a temp file and rename.
func (s *CSVStore) write(name string, rows []model.Transaction) error {
	dir := s.caseDir(name)
	tmp, err := os.CreateTemp(dir, ".transactions-*.csv")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := ledger.WriteTransactions(tmp, rows); err != nil {
		tmp.Close()
		return fmt.Errorf("writing case %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, TransactionsFile)); err != nil {
		return fmt.Errorf("replacing %s: %w", TransactionsFile, err)
	}
	return nil
}

func (s *CSVStore) exists(name string) error {
	if err := ValidateCaseName(name); err != nil {
		return err
	}
	info, err := os.Stat(s.caseDir(name))
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.IsDir()) {
		return fmt.Errorf("%w: %s", ErrCaseNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("checking case %s: %w", name, err)
	}
	return nil
}

func (s *CSVStore) caseDir(name string) string {
	return filepath.Join(s.root, CasesDir, name)
}

func withoutAccount(rows []model.Transaction, accountID string) ([]model.Transaction, int) {
	kept := make([]model.Transaction, 0, len(rows))
	for _, r := range rows {
		if r.AccountID != accountID {
			kept = append(kept, r)
		}
	}
	return kept, len(rows) - len(kept)
}
