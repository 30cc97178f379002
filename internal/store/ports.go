// Package store declares the ports the core components consume to read
// and write transactions. Concrete backends live in the subpackages.
package store

import (
	"context"

	"fintrack/internal/core"
)

type (
	// Reader is the query contract consumed by the analytics engine.
	Reader interface {
		FindAll(ctx context.Context) ([]core.Transaction, error)
		FindByType(ctx context.Context, t core.TransactionType) ([]core.Transaction, error)
		FindByCategory(ctx context.Context, category string) ([]core.Transaction, error)
		// FindByDateBetween returns transactions with start <= date <= end.
		FindByDateBetween(ctx context.Context, start, end core.Date) ([]core.Transaction, error)
		Count(ctx context.Context) (int64, error)
	}

	// Writer accepts validated transactions into the store. Save assigns
	// an identifier when the transaction has none and normalizes the type
	// to its canonical value.
	Writer interface {
		Save(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	}

	// Repository is the full store contract used by the CRUD service.
	Repository interface {
		Reader
		Writer
		FindByID(ctx context.Context, id string) (core.Transaction, error)
		Update(ctx context.Context, tx core.Transaction) (core.Transaction, error)
		Delete(ctx context.Context, id string) error
		Close() error
	}
)
