// Package store persists cases of transactions.
package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tsucho-dev/tsucho/internal/model"
)

// Backend names accepted by Open.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

var (
	// ErrCaseExists is returned when creating a case that already exists.
	ErrCaseExists = errors.New("case already exists")
	// ErrCaseNotFound is returned for operations on an unknown case.
	ErrCaseNotFound = errors.New("case not found")
	// ErrInvalidCaseName is returned for names that cannot be stored.
	ErrInvalidCaseName = errors.New("invalid case name")
)

// Store persists whole cases. Save replaces every row of a case.
type Store interface {
	ListCases(ctx context.Context) ([]string, error)
	CreateCase(ctx context.Context, name string) error
	DeleteCase(ctx context.Context, name string) error
	Load(ctx context.Context, name string) ([]model.Transaction, error)
	Save(ctx context.Context, name string, rows []model.Transaction) error
	// DeleteAccount removes every row of accountID and returns how many.
	DeleteAccount(ctx context.Context, name, accountID string) (int, error)
	Close() error
}

// Open returns the store for backend rooted at root.
func Open(backend, root string) (Store, error) {
	switch strings.ToLower(backend) {
	case BackendCSV, "":
		return NewCSVStore(root), nil
	case BackendSQLite:
		return OpenSQLite(filepath.Join(root, SQLiteFile))
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// ValidateCaseName rejects names that are empty, reserved or contain path
// separators.
func ValidateCaseName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: name is empty", ErrInvalidCaseName)
	case name != strings.TrimSpace(name):
		return fmt.Errorf("%w: %q has surrounding spaces", ErrInvalidCaseName, name)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidCaseName, name)
	case strings.ContainsAny(name, `/\`+"\x00"):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidCaseName, name)
	}
	return nil
}
