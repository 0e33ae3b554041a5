package analysis

import (
	"sort"
	"time"

	"github.com/tsucho-dev/tsucho/internal/id"
	"github.com/tsucho-dev/tsucho/internal/model"
)

// TransferOptions bound which incoming legs may pair with an outgoing leg.
type TransferOptions struct {
	WindowDays int   // max |Δdays| between the legs
	Tolerance  int64 // max |amount_out - amount_in|
}

// DefaultTransferOptions returns W=3 days, T=500 units.
func DefaultTransferOptions() TransferOptions {
	return TransferOptions{WindowDays: 3, Tolerance: 500}
}

// incoming is an incoming leg indexed by its position in the table.
type incoming struct {
	idx  int
	date time.Time
}

// MatchTransfers pairs outgoing legs with incoming legs in other accounts.
//
// Flags are recomputed from scratch. Outgoing legs are visited by date
// ascending, then amount descending, then table order. Each takes the
// unconsumed incoming leg that minimises (|Δamount|, |Δdays|, table order).
// Both legs are marked IsTransfer; only the outgoing leg records TransferTo.
// A row is consumed at most once, whichever side it was matched on.
func MatchTransfers(rows []model.Transaction, opts TransferOptions) []model.Transaction {
	out := model.Clone(rows)
	for i := range out {
		out[i].IsTransfer = false
		out[i].TransferTo = ""
	}

	var outgoing []int
	var ins []incoming
	for i, r := range out {
		if r.AmountOut > 0 {
			outgoing = append(outgoing, i)
		}
		if r.AmountIn > 0 {
			ins = append(ins, incoming{idx: i, date: model.Day(r.Date)})
		}
	}
	if len(outgoing) == 0 || len(ins) == 0 {
		return out
	}

	sort.SliceStable(outgoing, func(a, b int) bool {
		ra, rb := out[outgoing[a]], out[outgoing[b]]
		da, db := model.Day(ra.Date), model.Day(rb.Date)
		if !da.Equal(db) {
			return da.Before(db)
		}
		return ra.AmountOut > rb.AmountOut
	})
	sort.SliceStable(ins, func(a, b int) bool {
		return ins[a].date.Before(ins[b].date)
	})

	window := time.Duration(opts.WindowDays) * 24 * time.Hour
	consumed := make(map[int]bool)

	for _, oi := range outgoing {
		if consumed[oi] {
			continue
		}
		o := out[oi]
		day := model.Day(o.Date)

		lo := sort.Search(len(ins), func(k int) bool {
			return !ins[k].date.Before(day.Add(-window))
		})

		best := -1
		var bestAmt int64
		var bestDays int
		for k := lo; k < len(ins) && !ins[k].date.After(day.Add(window)); k++ {
			ii := ins[k].idx
			if ii == oi || consumed[ii] {
				continue
			}
			in := out[ii]
			if in.AccountID == o.AccountID {
				continue
			}
			amt := absDiff(o.AmountOut, in.AmountIn)
			if amt > opts.Tolerance {
				continue
			}
			days := model.DaysBetween(o.Date, in.Date)
			if best < 0 || better(amt, days, ii, bestAmt, bestDays, best) {
				best, bestAmt, bestDays = ii, amt, days
			}
		}
		if best < 0 {
			continue
		}

		consumed[oi] = true
		consumed[best] = true
		out[oi].IsTransfer = true
		out[oi].TransferTo = id.FormatTransferRef(out[best].AccountID, model.Day(out[best].Date))
		out[best].IsTransfer = true
	}
	return out
}

func better(amt int64, days, idx int, bestAmt int64, bestDays, bestIdx int) bool {
	if amt != bestAmt {
		return amt < bestAmt
	}
	if days != bestDays {
		return days < bestDays
	}
	return idx < bestIdx
}

func absDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}
