// Package memory provides an in-memory transaction store. It is the
// default backend and backs most of the test suite.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

type Store struct {
	mu    sync.RWMutex
	items []core.Transaction
}

func New() *Store {
	return &Store{}
}

// Save validates, normalizes the type and assigns an id when missing.
func (s *Store) Save(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	tx = tx.Normalized()
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, tx)
	return tx, nil
}

func (s *Store) FindAll(_ context.Context) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction(nil), s.items...), nil
}

func (s *Store) FindByType(_ context.Context, t core.TransactionType) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Transaction
	for _, tx := range s.items {
		if tx.Type.Matches(t) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (s *Store) FindByCategory(_ context.Context, category string) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Transaction
	for _, tx := range s.items {
		if tx.Category == category {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (s *Store) FindByDateBetween(_ context.Context, start, end core.Date) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Transaction
	for _, tx := range s.items {
		if tx.Date.Before(start.Time) || tx.Date.After(end.Time) {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (s *Store) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.items)), nil
}

func (s *Store) FindByID(_ context.Context, id string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tx := range s.items {
		if tx.ID == id {
			return tx, nil
		}
	}
	return core.Transaction{}, core.ErrNotFound
}

// Update replaces the stored record with the same id.
func (s *Store) Update(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	tx = tx.Normalized()

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == tx.ID {
			s.items[i] = tx
			return tx, nil
		}
	}
	return core.Transaction{}, core.ErrNotFound
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) Close() error {
	return nil
}
