package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type transactionRequest struct {
	Date        *core.Date       `json:"date"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Amount      *decimal.Decimal `json:"amount"`
	Type        *string          `json:"type"`
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTransactions(w, r)
	case http.MethodPost:
		s.createTransaction(w, r)
	default:
		methodNotAllowed(w, r, "GET, POST")
	}
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.transactions.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list transactions", "error", err)
		writeError(w, r, http.StatusInternalServerError, "Failed to fetch transactions")
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}

	writeSuccess(w, r, http.StatusOK, map[string]any{
		"count":        len(txs),
		"transactions": txs,
	})
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Amount == nil {
		writeError(w, r, http.StatusBadRequest, "Amount is required")
		return
	}
	if !req.Amount.IsPositive() {
		writeError(w, r, http.StatusBadRequest, "Amount must be greater than 0")
		return
	}
	if req.Type == nil || *req.Type == "" {
		writeError(w, r, http.StatusBadRequest, "Type is required")
		return
	}
	typ, err := core.ParseTransactionType(*req.Type)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "Type must be INCOME or EXPENSE")
		return
	}

	tx := core.Transaction{
		Amount: *req.Amount,
		Type:   typ,
	}
	if req.Date != nil {
		tx.Date = *req.Date
	}
	if req.Description != nil {
		tx.Description = *req.Description
	}
	if req.Category != nil {
		tx.Category = *req.Category
	}

	saved, err := s.transactions.Create(r.Context(), tx)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to create transaction", "error", err)
		writeError(w, r, http.StatusInternalServerError, "Error creating transaction")
		return
	}

	writeSuccess(w, r, http.StatusCreated, map[string]any{
		"message":     "Transaction created successfully",
		"transaction": saved,
	})
}

func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, r, http.StatusBadRequest, "Transaction id is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getTransaction(w, r, id)
	case http.MethodPut:
		s.updateTransaction(w, r, id)
	case http.MethodDelete:
		s.deleteTransaction(w, r, id)
	default:
		methodNotAllowed(w, r, "GET, PUT, DELETE")
	}
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request, id string) {
	tx, err := s.transactions.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "Transaction not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to fetch transaction", "error", err, "id", id)
		writeError(w, r, http.StatusInternalServerError, "Error fetching transaction")
		return
	}

	writeSuccess(w, r, http.StatusOK, map[string]any{"transaction": tx})
}

func (s *Server) updateTransaction(w http.ResponseWriter, r *http.Request, id string) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Amount != nil && !req.Amount.IsPositive() {
		writeError(w, r, http.StatusBadRequest, "Amount must be greater than 0")
		return
	}

	update := services.UpdateRequest{
		Date:        req.Date,
		Description: req.Description,
		Category:    req.Category,
		Amount:      req.Amount,
	}
	if req.Type != nil && *req.Type != "" {
		typ, err := core.ParseTransactionType(*req.Type)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "Type must be INCOME or EXPENSE")
			return
		}
		update.Type = &typ
	}

	updated, err := s.transactions.Update(r.Context(), id, update)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "Transaction not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to update transaction", "error", err, "id", id)
		writeError(w, r, http.StatusInternalServerError, "Error updating transaction")
		return
	}

	writeSuccess(w, r, http.StatusOK, map[string]any{
		"message":     "Transaction updated successfully",
		"transaction": updated,
	})
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.transactions.Delete(r.Context(), id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "Transaction not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete transaction", "error", err, "id", id)
		writeError(w, r, http.StatusInternalServerError, "Error deleting transaction")
		return
	}

	writeSuccess(w, r, http.StatusOK, map[string]any{
		"message": "Transaction deleted successfully",
	})
}
