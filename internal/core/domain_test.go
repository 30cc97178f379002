package core

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseTransactionType(t *testing.T) {
	cases := []struct {
		in   string
		want TransactionType
		ok   bool
	}{
		{"INCOME", Income, true},
		{"income", Income, true},
		{"Expense", Expense, true},
		{"EXPENSE", Expense, true},
		{"transfer", "", false},
		{"", "", false},
	}
	for i, tc := range cases {
		got, err := ParseTransactionType(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("case %d: got (%q, %v), want %q", i, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d: expected error for %q", i, tc.in)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-15")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.Year() != 2024 || int(d.Time.Month()) != 1 || d.Day() != 15 {
		t.Fatalf("unexpected date %v", d)
	}

	for _, bad := range []string{"15-01-2024", "2024/01/15", "2024-13-01", "not-a-date", ""} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2024, 3, 9)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2024-03-09"` {
		t.Fatalf("got %s", b)
	}

	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d) {
		t.Fatalf("round trip mismatch: %v != %v", back, d)
	}

	var empty Date
	if err := json.Unmarshal([]byte(`""`), &empty); err != nil {
		t.Fatalf("empty date: %v", err)
	}
	if !empty.IsZero() {
		t.Fatalf("empty string should produce zero date")
	}

	if err := json.Unmarshal([]byte(`"03/09/2024"`), &back); err == nil {
		t.Fatalf("expected error for wrong layout")
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Date:   NewDate(2024, 1, 1),
		Amount: decimal.NewFromInt(100),
		Type:   Income,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	// Lowercase types pass validation; canonicalization is Normalized's job.
	lower := good
	lower.Type = "expense"
	if err := lower.Validate(); err != nil {
		t.Fatalf("case-insensitive type should validate, got %v", err)
	}

	bads := []Transaction{
		{Amount: decimal.NewFromInt(1), Type: Income},                                 // zero date
		{Date: NewDate(2024, 1, 1), Amount: decimal.Zero, Type: Income},               // zero amount
		{Date: NewDate(2024, 1, 1), Amount: decimal.NewFromInt(-5), Type: Expense},    // negative amount
		{Date: NewDate(2024, 1, 1), Amount: decimal.NewFromInt(1), Type: "TRANSFER"},  // bad type
		{Date: NewDate(2024, 1, 1), Amount: decimal.NewFromInt(1)},                    // missing type
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionNormalized(t *testing.T) {
	tx := Transaction{Type: "income"}
	if got := tx.Normalized().Type; got != Income {
		t.Fatalf("got %q, want %q", got, Income)
	}
	tx = Transaction{Type: "bogus"}
	if got := tx.Normalized().Type; got != "bogus" {
		t.Fatalf("unrecognized type should be left as-is, got %q", got)
	}
}
