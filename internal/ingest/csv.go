// Package ingest converts raw CSV input into transaction records with
// per-row fault tolerance: a malformed row is skipped and counted, never
// fatal for the batch.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

var requiredColumns = []string{"date", "description", "category", "amount", "type"}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse reads header-first CSV input and returns the valid transactions
// in row order plus the number of skipped rows. Amount sign and type
// value are deliberately not validated here; the store enforces both at
// write time. Only an unreadable stream or a missing required column
// fails the whole call.
func (p *Parser) Parse(ctx context.Context, r io.Reader) ([]core.Transaction, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read csv header: %w", err)
	}

	columns, err := headerMap(header)
	if err != nil {
		return nil, 0, err
	}
	maxIndex := 0
	for _, idx := range columns {
		if idx > maxIndex {
			maxIndex = idx
		}
	}

	var (
		txs     []core.Transaction
		skipped int
	)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			skipped++
			slog.WarnContext(ctx, "Skipping unparsable csv row", "line", line, "error", err)
			continue
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read csv row: %w", err)
		}

		if len(row) <= maxIndex {
			skipped++
			slog.WarnContext(ctx, "Skipping short csv row", "line", line, "fields", len(row))
			continue
		}

		date, err := core.ParseDate(strings.TrimSpace(row[columns["date"]]))
		if err != nil {
			skipped++
			slog.WarnContext(ctx, "Skipping row with invalid date", "line", line, "value", row[columns["date"]])
			continue
		}

		amount, err := decimal.NewFromString(strings.TrimSpace(row[columns["amount"]]))
		if err != nil {
			skipped++
			slog.WarnContext(ctx, "Skipping row with invalid amount", "line", line, "value", row[columns["amount"]])
			continue
		}

		txs = append(txs, core.Transaction{
			Date:        date,
			Description: strings.TrimSpace(row[columns["description"]]),
			Category:    strings.TrimSpace(row[columns["category"]]),
			Amount:      amount,
			Type:        core.TransactionType(strings.TrimSpace(row[columns["type"]])),
		})
	}

	slog.InfoContext(ctx, "Parsed csv batch", "valid", len(txs), "skipped", skipped)
	return txs, skipped, nil
}

// headerMap maps the required column names to their indices, matching
// header fields case-insensitively.
func headerMap(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(requiredColumns))
	for _, column := range requiredColumns {
		found := false
		for i, field := range header {
			if strings.EqualFold(column, strings.TrimSpace(field)) {
				columns[column] = i
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("required column %q not found in csv header", column)
		}
	}
	return columns, nil
}
