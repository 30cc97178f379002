// Package core defines the transaction domain model shared by the
// store, the CSV ingestor and the analytics engine.
package core

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"

	// DateLayout is the calendar-date pattern used across the API and CSV input.
	DateLayout = "2006-01-02"
)

type (
	TransactionType string

	Date struct {
		time.Time
	}

	Transaction struct {
		ID          string          `json:"id,omitempty"`
		Date        Date            `json:"date"`
		Description string          `json:"description"`
		Category    string          `json:"category"`
		Amount      decimal.Decimal `json:"amount"`
		Type        TransactionType `json:"type"`
	}
)

var (
	ErrInvalidAmount = errors.New("amount must be greater than zero")
	ErrInvalidType   = errors.New("type must be INCOME or EXPENSE")
	ErrInvalidDate   = errors.New("invalid date")
	ErrNotFound      = errors.New("transaction not found")
)

// ParseTransactionType matches s case-insensitively against the two
// canonical variants and returns the canonical value.
func ParseTransactionType(s string) (TransactionType, error) {
	switch {
	case strings.EqualFold(s, string(Income)):
		return Income, nil
	case strings.EqualFold(s, string(Expense)):
		return Expense, nil
	}
	return "", ErrInvalidType
}

// Matches reports whether two type values are equal ignoring case.
func (t TransactionType) Matches(other TransactionType) bool {
	return strings.EqualFold(string(t), string(other))
}

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar date with the time component stripped.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// Equal compares calendar dates only.
func (d Date) Equal(other Date) bool {
	return d.Time.Equal(other.Time)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ErrInvalidDate
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Validate enforces the store-write invariants: a valid calendar date,
// a strictly positive amount and a recognized type.
func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if _, err := ParseTransactionType(string(t.Type)); err != nil {
		return err
	}
	return nil
}

// Normalized returns a copy with the canonical type value. Unrecognized
// types are left untouched for Validate to reject.
func (t Transaction) Normalized() Transaction {
	if canonical, err := ParseTransactionType(string(t.Type)); err == nil {
		t.Type = canonical
	}
	return t
}
