package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tsucho-dev/tsucho/internal/model"
)

// SQLiteFile is the database file name under the data root.
const SQLiteFile = "tsucho.db"

const schema = `
CREATE TABLE IF NOT EXISTS cases (
	name       TEXT PRIMARY KEY,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS transactions (
	case_name   TEXT    NOT NULL REFERENCES cases(name) ON DELETE CASCADE,
	seq         INTEGER NOT NULL,
	date        TEXT    NOT NULL,
	description TEXT    NOT NULL,
	amount_out  INTEGER NOT NULL,
	amount_in   INTEGER NOT NULL,
	balance     INTEGER NOT NULL,
	account_id  TEXT    NOT NULL,
	holder      TEXT    NOT NULL,
	category    TEXT,
	is_large    INTEGER NOT NULL,
	is_transfer INTEGER NOT NULL,
	transfer_to TEXT,
	PRIMARY KEY (case_name, seq)
);
CREATE INDEX IF NOT EXISTS transactions_account ON transactions(case_name, account_id);
`

// SQLiteStore keeps every case in one SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and ensures the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{"PRAGMA foreign_keys = ON", schema} {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("initialising sqlite schema: %w", err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// ListCases returns case names in lexical order.
func (s *SQLiteStore) ListCases(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM cases ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying cases: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning case: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// CreateCase creates an empty case.
func (s *SQLiteStore) CreateCase(ctx context.Context, name string) error {
	if err := ValidateCaseName(name); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO cases (name, created_at) VALUES (?, ?) ON CONFLICT(name) DO NOTHING`,
		name, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting case: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrCaseExists, name)
	}
	return nil
}

// DeleteCase removes a case and all its rows.
func (s *SQLiteStore) DeleteCase(ctx context.Context, name string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := caseExists(ctx, tx, name); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE case_name = ?`, name); err != nil {
			return fmt.Errorf("deleting transactions: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM cases WHERE name = ?`, name); err != nil {
			return fmt.Errorf("deleting case: %w", err)
		}
		return nil
	})
}

// Load reads every row of a case in stored order.
func (s *SQLiteStore) Load(ctx context.Context, name string) ([]model.Transaction, error) {
	if err := caseExists(ctx, s.db, name); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, description, amount_out, amount_in, balance, account_id, holder,
		       category, is_large, is_transfer, transfer_to
		FROM transactions
		WHERE case_name = ?
		ORDER BY seq`, name)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		var (
			t          model.Transaction
			date       string
			category   sql.NullString
			transferTo sql.NullString
		)
		if err := rows.Scan(&date, &t.Description, &t.AmountOut, &t.AmountIn, &t.Balance,
			&t.AccountID, &t.Holder, &category, &t.IsLarge, &t.IsTransfer, &transferTo); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		if t.Date, err = time.Parse(model.DateFormat, date); err != nil {
			return nil, fmt.Errorf("parsing stored date %q: %w", date, err)
		}
		if t.Category, err = model.ParseCategory(category.String); err != nil {
			return nil, err
		}
		t.TransferTo = transferTo.String
		out = append(out, t)
	}
	return out, rows.Err()
}

// Save replaces every row of a case in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, name string, txns []model.Transaction) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := caseExists(ctx, tx, name); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE case_name = ?`, name); err != nil {
			return fmt.Errorf("clearing transactions: %w", err)
		}
		return insertAll(ctx, tx, name, txns)
	})
}

// DeleteAccount removes every row of accountID from a case.
func (s *SQLiteStore) DeleteAccount(ctx context.Context, name, accountID string) (int, error) {
	var removed int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := caseExists(ctx, tx, name); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`DELETE FROM transactions WHERE case_name = ? AND account_id = ?`, name, accountID)
		if err != nil {
			return fmt.Errorf("deleting account rows: %w", err)
		}
		removed, err = res.RowsAffected()
		return err
	})
	return int(removed), err
}

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func caseExists(ctx context.Context, q queryer, name string) error {
	if err := ValidateCaseName(name); err != nil {
		return err
	}
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM cases WHERE name = ?`, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrCaseNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("looking up case %s: %w", name, err)
	}
	return nil
}

func insertAll(ctx context.Context, tx *sql.Tx, name string, txns []model.Transaction) error {
	if len(txns) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (case_name, seq, date, description, amount_out, amount_in,
			balance, account_id, holder, category, is_large, is_transfer, transfer_to)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range txns {
		if _, err := stmt.ExecContext(ctx, name, i, t.Date.Format(model.DateFormat), t.Description,
			t.AmountOut, t.AmountIn, t.Balance, t.AccountID, t.Holder,
			nullable(string(t.Category)), t.IsLarge, t.IsTransfer, nullable(t.TransferTo)); err != nil {
			return fmt.Errorf("inserting row %d: %w", i+1, err)
		}
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
