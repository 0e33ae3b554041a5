package id

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tsucho-dev/tsucho/internal/model"
)

// FormatAccountID returns an account ID like "三菱UFJ銀行_1234567".
func FormatAccountID(bank, number string) (string, error) {
	bank = strings.TrimSpace(bank)
	number = strings.TrimSpace(number)
	if bank == "" {
		return "", errors.New("bank name is required")
	}
	if number == "" {
		return "", errors.New("account number is required")
	}
	if strings.Contains(number, "_") {
		return "", fmt.Errorf("account number %q must not contain '_'", number)
	}
	return bank + "_" + number, nil
}

// SplitAccountID splits an account ID on its last underscore.
// "ゆうちょ_銀行_0001" -> "ゆうちょ_銀行", "0001"
func SplitAccountID(accountID string) (bank, number string, ok bool) {
	i := strings.LastIndex(accountID, "_")
	if i < 0 {
		return "", "", false
	}
	return accountID[:i], accountID[i+1:], true
}

// FormatTransferRef returns the counterpart reference stored on an outgoing
// leg, e.g. "みずほ銀行_7654321 2024-01-11".
func FormatTransferRef(accountID string, date time.Time) string {
	return accountID + " " + date.Format(model.DateFormat)
}

// ParseTransferRef parses a reference produced by FormatTransferRef.
// Account IDs may contain spaces; the date is always the last field.
func ParseTransferRef(ref string) (accountID string, date time.Time, err error) {
	i := strings.LastIndex(ref, " ")
	if i <= 0 {
		return "", time.Time{}, fmt.Errorf("invalid transfer reference %q", ref)
	}
	date, err = time.Parse(model.DateFormat, ref[i+1:])
	if err != nil {
		return "", time.Time{}, fmt.Errorf("invalid date in transfer reference %q: %w", ref, err)
	}
	return ref[:i], date, nil
}
