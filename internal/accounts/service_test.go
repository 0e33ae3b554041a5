package accounts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsucho-dev/tsucho/internal/model"
)

func rows() []model.Transaction {
	return []model.Transaction{
		{Date: model.Date(2024, 1, 5), AccountID: "みずほ銀行_1234567", Holder: "山田太郎", Balance: 100},
		{Date: model.Date(2024, 2, 1), AccountID: "りそな銀行_7654321", Holder: "山田花子", Balance: 900},
		{Date: model.Date(2024, 1, 20), AccountID: "みずほ銀行_1234567", Holder: "山田太郎", Balance: 300},
		{Date: model.Date(2024, 1, 10), AccountID: "みずほ銀行_1234567", Holder: "山田太郎", Balance: 200},
		{Date: model.Date(2024, 1, 20), AccountID: "みずほ銀行_1234567", Holder: "山田太郎", Balance: 250},
	}
}

func TestSummarize(t *testing.T) {
	accts := Summarize(rows())
	require.Len(t, accts, 2)

	m := accts[0]
	assert.Equal(t, "みずほ銀行_1234567", m.ID)
	assert.Equal(t, "みずほ銀行", m.Bank)
	assert.Equal(t, "1234567", m.Number)
	assert.Equal(t, "山田太郎", m.Holder)
	assert.Equal(t, 4, m.Transactions)
	assert.Equal(t, model.Date(2024, 1, 5), m.FirstDate)
	assert.Equal(t, model.Date(2024, 1, 20), m.LastDate)
	assert.Equal(t, int64(250), m.FinalBalance, "same-day rows keep table order")

	assert.Equal(t, "りそな銀行_7654321", accts[1].ID)
	assert.Equal(t, 1, accts[1].Transactions)
}

func TestSummarize_IDWithoutNumber(t *testing.T) {
	accts := Summarize([]model.Transaction{{AccountID: "cash", Date: model.Date(2024, 1, 1)}})
	require.Len(t, accts, 1)
	assert.Equal(t, "cash", accts[0].Bank)
	assert.Empty(t, accts[0].Number)
}

func TestService(t *testing.T) {
	svc := NewService(rows())

	assert.Len(t, svc.All(), 2)
	assert.True(t, svc.Exists("りそな銀行_7654321"))
	assert.False(t, svc.Exists("ゆうちょ銀行_1"))
	assert.Equal(t, []string{"みずほ銀行_1234567", "りそな銀行_7654321"}, svc.IDs())

	a, ok := svc.Get("みずほ銀行_1234567")
	require.True(t, ok)
	assert.Equal(t, 4, a.Transactions)

	assert.Empty(t, NewService(nil).All())
}
