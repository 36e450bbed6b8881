package services

import (
	"time"

	"dompet/internal/core"
	"dompet/internal/records"
)

type (
	// CategoryShare is one breakdown row with its percentage share of the
	// type total. A zero total yields share 0.
	CategoryShare struct {
		Name        string `json:"name"`
		AmountCents int64  `json:"amount_cents"`
		SharePct    int    `json:"share_pct"`
	}

	// ReminderView is a stored reminder annotated with its urgency for the
	// reference date.
	ReminderView struct {
		ID          string    `json:"id"`
		Title       string    `json:"title"`
		AmountCents int64     `json:"amount_cents"`
		DayOfMonth  int       `json:"day_of_month"`
		CreatedAt   time.Time `json:"created_at"`
		Urgency     Urgency   `json:"urgency"`
	}

	// Overview is the dashboard state recomputed in full from one snapshot.
	Overview struct {
		IncomeCents       int64           `json:"income_cents"`
		ExpenseCents      int64           `json:"expense_cents"`
		BalanceCents      int64           `json:"balance_cents"`
		IncomeByCategory  []CategoryShare `json:"income_by_category"`
		ExpenseByCategory []CategoryShare `json:"expense_by_category"`
		Reminders         []ReminderView  `json:"reminders"`
		GeneratedAt       time.Time       `json:"generated_at"`
	}
)

// BuildOverview recomputes the dashboard from scratch for one snapshot.
// There is no incremental path: each snapshot fully replaces the previous
// state, so the result only ever reflects the latest snapshot seen.
func BuildOverview(snap records.Snapshot, now time.Time) Overview {
	totals := core.Aggregate(snap.Transactions)
	return Overview{
		IncomeCents:       totals.Income.Cents,
		ExpenseCents:      totals.Expense.Cents,
		BalanceCents:      totals.Balance.Cents,
		IncomeByCategory:  shares(core.SummarizeByCategory(snap.Transactions, core.Income), totals.Income),
		ExpenseByCategory: shares(core.SummarizeByCategory(snap.Transactions, core.Expense), totals.Expense),
		Reminders:         AnnotateReminders(snap.Reminders, now),
		GeneratedAt:       now,
	}
}

// AnnotateReminders attaches the urgency classification for now's day of
// month to each reminder.
func AnnotateReminders(items []core.Reminder, now time.Time) []ReminderView {
	today := now.Day()
	out := make([]ReminderView, 0, len(items))
	for _, r := range items {
		out = append(out, ReminderView{
			ID:          r.ID,
			Title:       r.Title,
			AmountCents: r.Amount.Cents,
			DayOfMonth:  r.DayOfMonth,
			CreatedAt:   r.CreatedAt,
			Urgency:     ClassifyUrgency(r.DayOfMonth, today),
		})
	}
	return out
}

func shares(b core.Breakdown, total core.Money) []CategoryShare {
	out := make([]CategoryShare, 0, len(b))
	for _, ca := range b {
		out = append(out, CategoryShare{
			Name:        ca.Name,
			AmountCents: ca.Amount.Cents,
			SharePct:    core.Share(ca.Amount, total),
		})
	}
	return out
}
