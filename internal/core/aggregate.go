package core

import "sort"

type (
	// Totals is the running balance view over one snapshot of transactions.
	// Balance is always derived, never stored.
	Totals struct {
		Income  Money
		Expense Money
		Balance Money
	}

	// CategoryAmount is an amount accumulated under one category name.
	CategoryAmount struct {
		Name   string
		Amount Money
	}

	// Breakdown is a per-category summary for a single transaction type,
	// ordered by category name so identical input always yields identical
	// output.
	Breakdown []CategoryAmount
)

// Aggregate recomputes totals from scratch over one snapshot. Empty input
// yields all zeros. Records are assumed validated; the engine is total over
// any well-formed input.
func Aggregate(records []Transaction) Totals {
	var t Totals
	for _, tx := range records {
		switch tx.Type {
		case Income:
			t.Income = t.Income.Add(tx.Amount)
		case Expense:
			t.Expense = t.Expense.Add(tx.Amount)
		}
	}
	t.Balance = t.Income.Sub(t.Expense)
	return t
}

// SummarizeByCategory accumulates amounts per category over all records of
// the given type. Records with a blank category land in the Uncategorized
// bucket. Accumulation is commutative, so input order never changes sums.
func SummarizeByCategory(records []Transaction, typ TransactionType) Breakdown {
	buckets := make(map[string]int64)
	for _, tx := range records {
		if tx.Type != typ {
			continue
		}
		name := tx.Category
		if name == "" {
			name = UncategorizedLabel
		}
		buckets[name] += tx.Amount.Cents
	}

	out := make(Breakdown, 0, len(buckets))
	for name, cents := range buckets {
		out = append(out, CategoryAmount{Name: name, Amount: Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Total sums every bucket in the breakdown.
func (b Breakdown) Total() Money {
	var total Money
	for _, ca := range b {
		total = total.Add(ca.Amount)
	}
	return total
}

// Share returns amount's percentage share of total, rounded down. A zero or
// negative total yields 0 rather than a division error.
func Share(amount, total Money) int {
	if total.Cents <= 0 || amount.Cents <= 0 {
		return 0
	}
	return int(amount.Cents * 100 / total.Cents)
}
