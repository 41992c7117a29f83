package core

import (
	"sort"
)

// DefaultRecentLimit caps the "recent transactions" view.
const DefaultRecentLimit = 10

// AggregateOptions tunes the aggregation output.
type AggregateOptions struct {
	// RecentLimit caps the recent-transactions view; zero or negative
	// falls back to DefaultRecentLimit.
	RecentLimit int
	// IncludeIncome additionally produces a per-category breakdown of
	// income transactions. The expense breakdown is always produced.
	IncludeIncome bool
}

// CategoryAmount is an amount summed per category label.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// AggregationResult is the derived view of a set of transactions: totals,
// balance, category breakdowns and the capped recent list. It is a pure
// value and is never persisted.
type AggregationResult struct {
	TotalIncome  Money
	TotalExpense Money
	Balance      Money

	// ByCategory sums expense transactions per category. Categories with
	// no expense transactions are absent. The entries sum exactly to
	// TotalExpense and are ordered by amount descending, name ascending
	// on ties, so chart rendering is deterministic.
	ByCategory []CategoryAmount

	// IncomeByCategory is only populated when AggregateOptions.IncludeIncome
	// is set, ordered like ByCategory.
	IncomeByCategory []CategoryAmount

	// Recent holds transactions sorted by timestamp descending, truncated
	// to the configured limit. The sort is stable: equal timestamps keep
	// their input order, and zero timestamps sort after all valid ones.
	Recent []Transaction
}

// Aggregate derives totals, per-category breakdowns and the recent view from
// a set of transactions. It has no side effects, takes no ambient state, and
// is safe to call concurrently; empty input yields zero totals and empty
// slices.
func Aggregate(txs []Transaction, opts AggregateOptions) AggregationResult {
	limit := opts.RecentLimit
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	var res AggregationResult
	expenseByCat := make(map[string]int64)
	var incomeByCat map[string]int64
	if opts.IncludeIncome {
		incomeByCat = make(map[string]int64)
	}

	for _, t := range txs {
		switch t.FlowType {
		case Income:
			res.TotalIncome.Cents += t.Amount.Cents
			if incomeByCat != nil {
				incomeByCat[t.Category] += t.Amount.Cents
			}
		case Expense:
			res.TotalExpense.Cents += t.Amount.Cents
			expenseByCat[t.Category] += t.Amount.Cents
		}
		// Unknown flow types contribute nothing to either total.
	}
	res.Balance.Cents = res.TotalIncome.Cents - res.TotalExpense.Cents

	res.ByCategory = sortedCategories(expenseByCat)
	if incomeByCat != nil {
		res.IncomeByCategory = sortedCategories(incomeByCat)
	}

	res.Recent = recentView(txs, limit)
	return res
}

// SortByTimestampDesc stable-sorts transactions newest first. Zero
// timestamps sort after every valid timestamp; ties keep input order.
func SortByTimestampDesc(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		a, b := txs[i].Timestamp, txs[j].Timestamp
		if a.IsZero() {
			return false
		}
		if b.IsZero() {
			return true
		}
		return a.After(b)
	})
}

func recentView(txs []Transaction, limit int) []Transaction {
	out := make([]Transaction, len(txs))
	copy(out, txs)
	SortByTimestampDesc(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func sortedCategories(sums map[string]int64) []CategoryAmount {
	if len(sums) == 0 {
		return nil
	}
	out := make([]CategoryAmount, 0, len(sums))
	for name, cents := range sums {
		out = append(out, CategoryAmount{Name: name, Amount: Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}
