package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tsucho-dev/tsucho/internal/model"
)

// Header is the CSV header for transactions.csv.
const Header = "date,description,amount_out,amount_in,balance,account_id,holder,category,is_large,is_transfer,transfer_to"

const (
	numFields     = 11
	colDate       = 0
	colDesc       = 1
	colAmountOut  = 2
	colAmountIn   = 3
	colBalance    = 4
	colAccountID  = 5
	colHolder     = 6
	colCategory   = 7
	colIsLarge    = 8
	colIsTransfer = 9
	colTransferTo = 10
)

// ReadTransactions reads all rows from a transactions.csv reader.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transactions CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	txns := make([]model.Transaction, 0, len(records)-1)
	for i, rec := range records[1:] {
		txn, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// WriteTransactions writes rows to a transactions.csv writer (including header).
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, txn := range txns {
		if err := cw.Write(MarshalTransaction(txn)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(txn model.Transaction) []string {
	row := make([]string, numFields)
	row[colDate] = txn.Date.Format(model.DateFormat)
	row[colDesc] = txn.Description
	row[colAmountOut] = strconv.FormatInt(txn.AmountOut, 10)
	row[colAmountIn] = strconv.FormatInt(txn.AmountIn, 10)
	row[colBalance] = strconv.FormatInt(txn.Balance, 10)
	row[colAccountID] = txn.AccountID
	row[colHolder] = txn.Holder
	row[colCategory] = string(txn.Category)
	row[colIsLarge] = strconv.FormatBool(txn.IsLarge)
	row[colIsTransfer] = strconv.FormatBool(txn.IsTransfer)
	row[colTransferTo] = txn.TransferTo
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(model.DateFormat, record[colDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	var amounts [3]int64
	for i, col := range []int{colAmountOut, colAmountIn, colBalance} {
		amounts[i], err = strconv.ParseInt(record[col], 10, 64)
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing %s %q: %w", columnName(col), record[col], err)
		}
	}

	category, err := model.ParseCategory(record[colCategory])
	if err != nil {
		return model.Transaction{}, err
	}

	isLarge, err := parseFlag(record[colIsLarge])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing is_large: %w", err)
	}
	isTransfer, err := parseFlag(record[colIsTransfer])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing is_transfer: %w", err)
	}

	return model.Transaction{
		Date:        date,
		Description: record[colDesc],
		AmountOut:   amounts[0],
		AmountIn:    amounts[1],
		Balance:     amounts[2],
		AccountID:   record[colAccountID],
		Holder:      record[colHolder],
		Category:    category,
		IsLarge:     isLarge,
		IsTransfer:  isTransfer,
		TransferTo:  record[colTransferTo],
	}, nil
}

func parseFlag(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

func columnName(col int) string {
	return strings.Split(Header, ",")[col]
}
