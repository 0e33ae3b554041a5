package analysis

import "github.com/tsucho-dev/tsucho/internal/model"

// DefaultLargeAmountThreshold is the is_large cutoff in currency units.
const DefaultLargeAmountThreshold int64 = 1_000_000

// FlagLarge returns a copy of rows with IsLarge recomputed on every row.
// A row is large when either amount reaches the threshold.
func FlagLarge(rows []model.Transaction, threshold int64) []model.Transaction {
	out := model.Clone(rows)
	for i := range out {
		out[i].IsLarge = out[i].AmountOut >= threshold || out[i].AmountIn >= threshold
	}
	return out
}
