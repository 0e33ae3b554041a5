package ledger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsucho-dev/tsucho/internal/model"
)

func TestRoundTrip(t *testing.T) {
	txns := []model.Transaction{
		{
			Date:        model.Date(2024, 1, 10),
			Description: "振込 ヤマダ ハナコ, 仕送り",
			AmountOut:   500_000,
			Balance:     1_500_000,
			AccountID:   "みずほ銀行_1234567",
			Holder:      "山田太郎",
			Category:    model.CategorySuspectedGift,
			IsTransfer:  true,
			TransferTo:  "りそな銀行_7654321 2024-01-11",
		},
		{
			Date:        model.Date(2024, 1, 11),
			Description: "",
			AmountIn:    500_000,
			Balance:     600_000,
			AccountID:   "りそな銀行_7654321",
			Holder:      "山田花子",
			IsLarge:     true,
			IsTransfer:  true,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, txns))

	got, err := ReadTransactions(&buf)
	require.NoError(t, err)
	assert.Equal(t, txns, got)
}

func TestRoundTrip_NullColumns(t *testing.T) {
	txns := []model.Transaction{{Date: model.Date(2024, 2, 1), AccountID: "a_1"}}

	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, txns))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, Header, lines[0])
	assert.Equal(t, "2024-02-01,,0,0,0,a_1,,,false,false,", lines[1])

	got, err := ReadTransactions(&buf)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Category.IsZero())
	assert.Empty(t, got[0].TransferTo)
}

func TestReadTransactions_HeaderOnly(t *testing.T) {
	got, err := ReadTransactions(strings.NewReader(Header + "\n"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReadTransactions_Errors(t *testing.T) {
	tests := []struct {
		name string
		row  string
		want string
	}{
		{"bad date", "2024/01/01,x,0,0,0,a_1,h,,false,false,", "parsing date"},
		{"bad amount", "2024-01-01,x,abc,0,0,a_1,h,,false,false,", "parsing amount_out"},
		{"bad balance", "2024-01-01,x,0,0,1.5,a_1,h,,false,false,", "parsing balance"},
		{"bad category", "2024-01-01,x,0,0,0,a_1,h,食費,false,false,", "unknown category"},
		{"bad flag", "2024-01-01,x,0,0,0,a_1,h,,maybe,false,", "parsing is_large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTransactions(strings.NewReader(Header + "\n" + tt.row + "\n"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, err.Error(), "row 2")
		})
	}
}

func TestUnmarshalTransaction_WrongFieldCount(t *testing.T) {
	_, err := UnmarshalTransaction([]string{"2024-01-01"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 11 fields")
}
