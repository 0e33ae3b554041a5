package model

import "time"

// DateFormat is the serialized form of a transaction date.
const DateFormat = "2006-01-02"

// Transaction is one passbook line.
type Transaction struct {
	Date        time.Time // civil date, UTC midnight
	Description string
	AmountOut   int64 // 払戻
	AmountIn    int64 // お預り
	Balance     int64 // 差引残高 as printed
	AccountID   string
	Holder      string
	Category    Category // empty until classified
	IsLarge     bool
	IsTransfer  bool
	TransferTo  string // "{account_id} {date}", outgoing leg only
}

// Date returns the civil date year-month-day at UTC midnight.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Day truncates t to its calendar date at UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return Date(y, m, d)
}

// DaysBetween returns the absolute number of calendar days between a and b.
func DaysBetween(a, b time.Time) int {
	d := Day(a).Sub(Day(b)) / (24 * time.Hour)
	if d < 0 {
		d = -d
	}
	return int(d)
}

// Clone returns a shallow copy of rows so callers can derive a new table.
func Clone(rows []Transaction) []Transaction {
	if rows == nil {
		return nil
	}
	out := make([]Transaction, len(rows))
	copy(out, rows)
	return out
}
