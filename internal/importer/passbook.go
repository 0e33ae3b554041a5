package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/width"

	"github.com/tsucho-dev/tsucho/internal/model"
)

// PassbookParser parses OCR'd passbook CSVs. Columns are found by header,
// Japanese (銀行名,支店名,口座番号,年月日,摘要,払戻,お預り,差引残高) or
// normalised English (date,description,amount_out,amount_in,balance).
type PassbookParser struct{}

// Format returns the parser name.
func (p *PassbookParser) Format() string { return "passbook" }

type field int

const (
	fieldDate field = iota
	fieldDesc
	fieldOut
	fieldIn
	fieldBalance
	fieldBank
	fieldBranch
	fieldNumber
	numFields
)

var fieldNames = [numFields]string{
	"date", "description", "amount_out", "amount_in", "balance",
	"bank_name", "branch_name", "account_number",
}

var requiredFields = []field{fieldDate, fieldDesc, fieldOut, fieldIn, fieldBalance}

// headerAliases maps a folded header cell to its field.
var headerAliases = map[string]field{
	"年月日":            fieldDate,
	"日付":             fieldDate,
	"取引日":            fieldDate,
	"date":           fieldDate,
	"摘要":             fieldDesc,
	"description":    fieldDesc,
	"払戻":             fieldOut,
	"払戻金額":           fieldOut,
	"お支払金額":          fieldOut,
	"出金":             fieldOut,
	"amount_out":     fieldOut,
	"お預り":            fieldIn,
	"お預入":            fieldIn,
	"お預り金額":          fieldIn,
	"入金":             fieldIn,
	"amount_in":      fieldIn,
	"差引残高":           fieldBalance,
	"残高":             fieldBalance,
	"balance":        fieldBalance,
	"銀行名":            fieldBank,
	"bank_name":      fieldBank,
	"支店名":            fieldBranch,
	"branch_name":    fieldBranch,
	"口座番号":           fieldNumber,
	"account_number": fieldNumber,
}

var dateFormats = []string{
	model.DateFormat,
	"2006/01/02",
	"2006/1/2",
	"2006.01.02",
	"2006.1.2",
	"20060102",
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrMissingColumns is returned when a required column has no header.
var ErrMissingColumns = errors.New("missing required columns")

// Parse reads a passbook CSV and returns its rows in file order.
func (p *PassbookParser) Parse(r io.Reader) (*Statement, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(b, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading passbook CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("empty file")
	}

	cols, err := mapHeader(records[0])
	if err != nil {
		return nil, err
	}

	st := &Statement{}
	for i, rec := range records[1:] {
		if i == 0 {
			st.Meta = Metadata{
				Bank:   cell(rec, cols, fieldBank),
				Branch: cell(rec, cols, fieldBranch),
				Number: cell(rec, cols, fieldNumber),
			}
		}
		txn, err := parsePassbookRow(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		st.Rows = append(st.Rows, txn)
	}
	return st, nil
}

// mapHeader returns the column index of each field, -1 when absent.
func mapHeader(header []string) ([numFields]int, error) {
	var cols [numFields]int
	for i := range cols {
		cols[i] = -1
	}
	for i, h := range header {
		f, ok := headerAliases[strings.ToLower(fold(h))]
		if ok && cols[f] < 0 {
			cols[f] = i
		}
	}

	var missing []string
	for _, f := range requiredFields {
		if cols[f] < 0 {
			missing = append(missing, fieldNames[f])
		}
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return cols, nil
}

func parsePassbookRow(rec []string, cols [numFields]int) (model.Transaction, error) {
	date, err := parseDate(cell(rec, cols, fieldDate))
	if err != nil {
		return model.Transaction{}, err
	}

	var amounts [3]int64
	for i, f := range []field{fieldOut, fieldIn, fieldBalance} {
		amounts[i], err = parseAmount(cell(rec, cols, f))
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing %s: %w", fieldNames[f], err)
		}
	}
	if amounts[0] < 0 || amounts[1] < 0 {
		return model.Transaction{}, errors.New("amounts must not be negative")
	}

	return model.Transaction{
		Date:        date,
		Description: strings.TrimSpace(rec[cols[fieldDesc]]),
		AmountOut:   amounts[0],
		AmountIn:    amounts[1],
		Balance:     amounts[2],
	}, nil
}

// cell returns the folded, trimmed value of field f, or "" when absent.
func cell(rec []string, cols [numFields]int, f field) string {
	i := cols[f]
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(fold(rec[i]))
}

// fold maps full-width digits and punctuation to ASCII.
func fold(s string) string {
	return width.Fold.String(strings.TrimSpace(s))
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("date is blank")
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return model.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing date %q: unrecognised format", s)
}

// parseAmount accepts "1,234", "1234.0", "" (zero) and "¥1,234".
func parseAmount(s string) (int64, error) {
	s = strings.NewReplacer(",", "", "¥", "", "円", "", " ", "").Replace(s)
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%q is not a whole amount", s)
	}
	return d.IntPart(), nil
}
