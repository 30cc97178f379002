// Package sqlite implements the transaction store on a local SQLite
// database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

const selectColumns = "id, date, description, category, amount, type"

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Save implements store.Writer. Validation and type normalization happen
// here, at the write boundary.
func (r *Repository) Save(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	tx = tx.Normalized()
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, date, description, category, amount, type) VALUES (?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.Date.String(), tx.Description, tx.Category, tx.Amount.String(), string(tx.Type))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"date", tx.Date.String(),
		"amount", tx.Amount.String(),
		"type", tx.Type)

	return tx, nil
}

func (r *Repository) FindAll(ctx context.Context) ([]core.Transaction, error) {
	return r.query(ctx, `SELECT `+selectColumns+` FROM transactions ORDER BY date, id`)
}

func (r *Repository) FindByType(ctx context.Context, t core.TransactionType) ([]core.Transaction, error) {
	if canonical, err := core.ParseTransactionType(string(t)); err == nil {
		t = canonical
	}
	return r.query(ctx, `SELECT `+selectColumns+` FROM transactions WHERE type = ? ORDER BY date, id`, string(t))
}

func (r *Repository) FindByCategory(ctx context.Context, category string) ([]core.Transaction, error) {
	return r.query(ctx, `SELECT `+selectColumns+` FROM transactions WHERE category = ? ORDER BY date, id`, category)
}

// FindByDateBetween relies on the lexicographic order of YYYY-MM-DD text.
func (r *Repository) FindByDateBetween(ctx context.Context, start, end core.Date) ([]core.Transaction, error) {
	return r.query(ctx,
		`SELECT `+selectColumns+` FROM transactions WHERE date BETWEEN ? AND ? ORDER BY date, id`,
		start.String(), end.String())
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM transactions WHERE id = ?`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("find transaction by id: %w", err)
	}
	return tx, nil
}

func (r *Repository) Update(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	tx = tx.Normalized()

	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET date = ?, description = ?, category = ?, amount = ?, type = ? WHERE id = ?`,
		tx.Date.String(), tx.Description, tx.Category, tx.Amount.String(), string(tx.Type), tx.ID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if affected == 0 {
		return core.Transaction{}, core.ErrNotFound
	}
	return tx, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *Repository) query(ctx context.Context, q string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (core.Transaction, error) {
	var (
		tx        core.Transaction
		dateStr   string
		amountStr string
		typeStr   string
	)
	if err := s.Scan(&tx.ID, &dateStr, &tx.Description, &tx.Category, &amountStr, &typeStr); err != nil {
		return core.Transaction{}, err
	}

	date, err := core.ParseDate(dateStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", dateStr, err)
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored amount %q: %w", amountStr, err)
	}

	tx.Date = date
	tx.Amount = amount
	tx.Type = core.TransactionType(typeStr)
	return tx, nil
}
