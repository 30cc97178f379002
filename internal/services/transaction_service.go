// Package services orchestrates transaction writes across the store,
// the CSV ingestor and the optional event publisher.
package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/ingest"
	"fintrack/internal/store"
)

type TransactionService struct {
	repo   store.Repository
	parser *ingest.Parser
	events *amqp.Client
}

func NewTransactionService(repo store.Repository, parser *ingest.Parser, events *amqp.Client) *TransactionService {
	return &TransactionService{
		repo:   repo,
		parser: parser,
		events: events,
	}
}

// UpdateRequest carries a partial update; only non-nil fields overwrite
// the stored record.
type UpdateRequest struct {
	Date        *core.Date
	Description *string
	Category    *string
	Amount      *decimal.Decimal
	Type        *core.TransactionType
}

// Create saves a new transaction. An omitted date defaults to today;
// everything else is validated by the store at the write boundary.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if tx.Date.IsZero() {
		tx.Date = core.Today()
	}

	saved, err := s.repo.Save(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.publish(ctx, saved.ID, amqp.ActionCreated)
	return saved, nil
}

func (s *TransactionService) List(ctx context.Context) ([]core.Transaction, error) {
	return s.repo.FindAll(ctx)
}

func (s *TransactionService) Get(ctx context.Context, id string) (core.Transaction, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *TransactionService) Update(ctx context.Context, id string, req UpdateRequest) (core.Transaction, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}

	if req.Date != nil {
		existing.Date = *req.Date
	}
	if req.Description != nil {
		existing.Description = *req.Description
	}
	if req.Category != nil {
		existing.Category = *req.Category
	}
	if req.Amount != nil {
		existing.Amount = *req.Amount
	}
	if req.Type != nil {
		existing.Type = *req.Type
	}

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	return updated, nil
}

func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, id, amqp.ActionDeleted)
	return nil
}

// ImportCSV parses the stream and saves every valid row. Rows the store
// rejects (e.g. non-positive amounts that parsed fine) are folded into
// the skip tally; a failed row never aborts the batch.
func (s *TransactionService) ImportCSV(ctx context.Context, r io.Reader) (imported, skipped int, err error) {
	txs, skipped, err := s.parser.Parse(ctx, r)
	if err != nil {
		return 0, 0, fmt.Errorf("parse csv: %w", err)
	}

	for _, tx := range txs {
		saved, err := s.repo.Save(ctx, tx)
		if err != nil {
			skipped++
			slog.WarnContext(ctx, "Rejected imported transaction",
				"error", err,
				"date", tx.Date.String(),
				"amount", tx.Amount.String(),
				"type", tx.Type)
			continue
		}
		imported++
		s.publish(ctx, saved.ID, amqp.ActionImported)
	}

	slog.InfoContext(ctx, "CSV import finished", "imported", imported, "skipped", skipped)
	return imported, skipped, nil
}

func (s *TransactionService) publish(ctx context.Context, id, action string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishTransactionEvent(ctx, id, action); err != nil {
		// Events are best-effort; the local write already succeeded.
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"id", id, "action", action, "error", err)
	}
}

// Close releases the store and the event publisher.
func (s *TransactionService) Close() error {
	var errs []error

	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if s.events != nil {
		if err := s.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}
	return nil
}
