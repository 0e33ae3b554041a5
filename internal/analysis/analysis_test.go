package analysis

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsucho-dev/tsucho/internal/model"
)

const (
	acctA = "みずほ銀行_1111111"
	acctB = "りそな銀行_2222222"
	acctC = "ゆうちょ銀行_3333333"
)

func debit(acct string, day int, amount int64) model.Transaction {
	return model.Transaction{Date: model.Date(2024, 1, day), AccountID: acct, AmountOut: amount, Description: "振込"}
}

func credit(acct string, day int, amount int64) model.Transaction {
	return model.Transaction{Date: model.Date(2024, 1, day), AccountID: acct, AmountIn: amount, Description: "振込入金"}
}

func TestFlagLarge(t *testing.T) {
	rows := []model.Transaction{
		debit(acctA, 1, 999_999),
		debit(acctA, 2, 1_000_000),
		credit(acctA, 3, 1_000_001),
		{Date: model.Date(2024, 1, 4), AccountID: acctA, IsLarge: true},
	}
	got := FlagLarge(rows, DefaultLargeAmountThreshold)
	assert.Equal(t, []bool{false, true, true, false}, largeFlags(got))
	assert.True(t, rows[3].IsLarge, "input must not be mutated")
}

func TestFlagLarge_Monotonic(t *testing.T) {
	rows := []model.Transaction{
		debit(acctA, 1, 10_000),
		debit(acctA, 2, 300_000),
		credit(acctA, 3, 900_000),
		credit(acctA, 4, 5_000_000),
		debit(acctA, 5, 1_200_000),
	}
	thresholds := []int64{1, 10_000, 300_001, 1_000_000, 5_000_000, 9_000_000}
	prev := FlagLarge(rows, thresholds[0])
	for _, th := range thresholds[1:] {
		cur := FlagLarge(rows, th)
		for i := range cur {
			if cur[i].IsLarge {
				assert.True(t, prev[i].IsLarge, "row %d flagged at %d but not at a lower threshold", i, th)
			}
		}
		prev = cur
	}
}

func largeFlags(rows []model.Transaction) []bool {
	flags := make([]bool, len(rows))
	for i, r := range rows {
		flags[i] = r.IsLarge
	}
	return flags
}

func TestMatchTransfers_NextDayPair(t *testing.T) {
	rows := []model.Transaction{
		debit(acctA, 10, 500_000),
		credit(acctB, 11, 500_000),
	}
	got := MatchTransfers(rows, DefaultTransferOptions())

	assert.True(t, got[0].IsTransfer)
	assert.True(t, got[1].IsTransfer)
	assert.Equal(t, acctB+" 2024-01-11", got[0].TransferTo)
	assert.Empty(t, got[1].TransferTo, "only the outgoing leg records transfer_to")
}

func TestMatchTransfers_OutsideWindow(t *testing.T) {
	rows := []model.Transaction{
		debit(acctA, 10, 500_000),
		credit(acctB, 15, 500_000),
	}
	got := MatchTransfers(rows, DefaultTransferOptions())
	assert.False(t, got[0].IsTransfer)
	assert.False(t, got[1].IsTransfer)
	assert.Empty(t, got[0].TransferTo)
}

func TestMatchTransfers_WindowIsInclusive(t *testing.T) {
	rows := []model.Transaction{
		credit(acctB, 7, 500_000),
		debit(acctA, 10, 500_000),
	}
	got := MatchTransfers(rows, DefaultTransferOptions())
	assert.True(t, got[1].IsTransfer, "an incoming leg 3 days earlier is in the window")
	assert.Equal(t, acctB+" 2024-01-07", got[1].TransferTo)
}

func TestMatchTransfers_Tolerance(t *testing.T) {
	rows := []model.Transaction{
		debit(acctA, 10, 500_000),
		credit(acctB, 10, 500_500),
		debit(acctA, 20, 500_000),
		credit(acctB, 20, 500_501),
	}
	got := MatchTransfers(rows, DefaultTransferOptions())
	assert.True(t, got[0].IsTransfer)
	assert.False(t, got[2].IsTransfer)
	assert.False(t, got[3].IsTransfer)
}

func TestMatchTransfers_PrefersCloserDate(t *testing.T) {
	rows := []model.Transaction{
		debit(acctA, 10, 500_000),
		credit(acctB, 12, 500_000),
		credit(acctC, 11, 500_000),
	}
	got := MatchTransfers(rows, DefaultTransferOptions())

	assert.Equal(t, acctC+" 2024-01-11", got[0].TransferTo)
	assert.True(t, got[2].IsTransfer)
	assert.False(t, got[1].IsTransfer)
}

func TestMatchTransfers_AmountBeforeDate(t *testing.T) {
	rows := []model.Transaction{
		debit(acctA, 10, 500_000),
		credit(acctB, 10, 500_400),
		credit(acctC, 13, 500_000),
	}
	got := MatchTransfers(rows, DefaultTransferOptions())
	assert.Equal(t, acctC+" 2024-01-13", got[0].TransferTo)
}

func TestMatchTransfers_FullTieUsesTableOrder(t *testing.T) {
	rows := []model.Transaction{
		debit(acctA, 10, 500_000),
		credit(acctC, 11, 500_000),
		credit(acctB, 11, 500_000),
	}
	got := MatchTransfers(rows, DefaultTransferOptions())
	assert.Equal(t, acctC+" 2024-01-11", got[0].TransferTo)
	assert.False(t, got[2].IsTransfer)
}

func TestMatchTransfers_NeverSameAccount(t *testing.T) {
	rows := []model.Transaction{
		debit(acctA, 10, 500_000),
		credit(acctA, 10, 500_000),
	}
	got := MatchTransfers(rows, DefaultTransferOptions())
	assert.False(t, got[0].IsTransfer)
	assert.False(t, got[1].IsTransfer)
}

func TestMatchTransfers_GreedyConsumesOnce(t *testing.T) {
	rows := []model.Transaction{
		debit(acctA, 10, 500_000),
		debit(acctC, 10, 500_300),
		credit(acctB, 10, 500_000),
	}
	got := MatchTransfers(rows, DefaultTransferOptions())

	// Same day: the larger outgoing leg is visited first and takes the only candidate.
	assert.True(t, got[1].IsTransfer)
	assert.Equal(t, acctB+" 2024-01-10", got[1].TransferTo)
	assert.False(t, got[0].IsTransfer)
	assert.True(t, got[2].IsTransfer)
}

func TestMatchTransfers_EarlierOutgoingFirst(t *testing.T) {
	rows := []model.Transaction{
		debit(acctC, 11, 500_000),
		debit(acctA, 10, 500_000),
		credit(acctB, 11, 500_000),
	}
	got := MatchTransfers(rows, DefaultTransferOptions())
	assert.True(t, got[1].IsTransfer)
	assert.False(t, got[0].IsTransfer)
}

func TestMatchTransfers_ResetsStaleFlags(t *testing.T) {
	rows := []model.Transaction{
		debit(acctA, 1, 42),
		credit(acctB, 20, 99_999),
	}
	rows[0].IsTransfer = true
	rows[0].TransferTo = acctB + " 2024-01-20"
	rows[1].IsTransfer = true

	got := MatchTransfers(rows, DefaultTransferOptions())
	assert.False(t, got[0].IsTransfer)
	assert.Empty(t, got[0].TransferTo)
	assert.False(t, got[1].IsTransfer)

	assert.True(t, rows[0].IsTransfer, "input must not be mutated")
}

func TestMatchTransfers_Empty(t *testing.T) {
	assert.Empty(t, MatchTransfers(nil, DefaultTransferOptions()))
	got := MatchTransfers([]model.Transaction{debit(acctA, 1, 10)}, DefaultTransferOptions())
	require.Len(t, got, 1)
	assert.False(t, got[0].IsTransfer)
}

func TestTransferFlows(t *testing.T) {
	rows := MatchTransfers([]model.Transaction{
		debit(acctA, 10, 500_000),
		credit(acctB, 11, 500_000),
		debit(acctA, 20, 300_000),
		credit(acctB, 20, 300_000),
		debit(acctB, 25, 100_000),
		credit(acctC, 26, 100_000),
	}, DefaultTransferOptions())

	flows := TransferFlows(rows)
	require.Len(t, flows, 2)

	assert.Equal(t, acctA, flows[0].From)
	assert.Equal(t, acctB, flows[0].To)
	assert.Equal(t, 2, flows[0].Count)
	assert.True(t, decimal.NewFromInt(800_000).Equal(flows[0].Total))

	assert.Equal(t, acctB, flows[1].From)
	assert.Equal(t, acctC, flows[1].To)
	assert.Equal(t, 1, flows[1].Count)
}

func TestTransferFlows_UnparsableTarget(t *testing.T) {
	r := debit(acctA, 1, 10)
	r.IsTransfer = true
	flows := TransferFlows([]model.Transaction{r})
	require.Len(t, flows, 1)
	assert.Equal(t, UnknownAccount, flows[0].To)
}

func TestLargeTransactions_NewestFirst(t *testing.T) {
	rows := FlagLarge([]model.Transaction{
		debit(acctA, 1, 2_000_000),
		debit(acctA, 2, 10),
		credit(acctB, 9, 3_000_000),
	}, DefaultLargeAmountThreshold)

	got := LargeTransactions(rows)
	require.Len(t, got, 2)
	assert.Equal(t, model.Date(2024, 1, 9), got[0].Date)
	assert.Equal(t, model.Date(2024, 1, 1), got[1].Date)
}

func TestFilter(t *testing.T) {
	rows := []model.Transaction{
		{AccountID: acctA, Description: "イオン 川口"},
		{AccountID: acctB, Description: "イオン 浦和"},
		{AccountID: acctB, Description: "東京電力"},
	}

	assert.Len(t, Filter{}.Apply(rows), 3)
	assert.Len(t, Filter{Accounts: []string{acctB}}.Apply(rows), 2)
	assert.Len(t, Filter{Keyword: "イオン"}.Apply(rows), 2)

	got := Filter{Accounts: []string{acctB}, Keyword: "イオン"}.Apply(rows)
	require.Len(t, got, 1)
	assert.Equal(t, "イオン 浦和", got[0].Description)
}
