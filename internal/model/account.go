package model

import "time"

// Account summarises the rows of one passbook account within a case.
// Accounts are never stored; they are recomputed by grouping transactions.
type Account struct {
	ID           string
	Bank         string
	Number       string
	Holder       string
	Transactions int
	FirstDate    time.Time
	LastDate     time.Time
	FinalBalance int64
}
