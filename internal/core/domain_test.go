package core

import "testing"

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Type:     Expense,
		Amount:   Money{Cents: 1500},
		Category: "Transport",
		Note:     "bus",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Type: "transfer", Amount: Money{Cents: 1}, Category: "c"},
		{Type: Income, Amount: Money{Cents: -1}, Category: "c"},
		{Type: Income, Amount: Money{Cents: 1}, Category: "  "},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionNormalize(t *testing.T) {
	tx := Transaction{Type: Income, Amount: Money{Cents: 100}, Category: " Salary ", Note: "  "}
	got := tx.Normalize()
	if got.Category != "Salary" {
		t.Fatalf("category = %q", got.Category)
	}
	if got.Note != "Salary" {
		t.Fatalf("blank note should default to category, got %q", got.Note)
	}

	tx.Note = "march payout"
	if got := tx.Normalize(); got.Note != "march payout" {
		t.Fatalf("note should be kept, got %q", got.Note)
	}
}

func TestReminderValidate(t *testing.T) {
	good := Reminder{Title: "Rent", Amount: Money{Cents: 500000}, DayOfMonth: 1}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	// Day 31 is accepted even though not every month has it.
	if err := (Reminder{Title: "x", DayOfMonth: 31}).Validate(); err != nil {
		t.Fatalf("day 31 should validate, got %v", err)
	}

	bads := []Reminder{
		{Title: "", Amount: Money{Cents: 1}, DayOfMonth: 5},
		{Title: "x", Amount: Money{Cents: 1}, DayOfMonth: 0},
		{Title: "x", Amount: Money{Cents: 1}, DayOfMonth: 32},
		{Title: "x", Amount: Money{Cents: -1}, DayOfMonth: 5},
	}
	for i, r := range bads {
		if err := r.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"2500", 2500, true},
		{" 10 ", 10, true},
		{"0", 0, true},
		{"", 0, false},
		{"-5", 0, false},
		{"+5", 0, false},
		{"12.50", 0, false},
		{"1,000", 0, false},
		{"abc", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("ParseAmount(%q) = %d, %v; want %d", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("ParseAmount(%q) expected error", tc.in)
		}
	}
}
