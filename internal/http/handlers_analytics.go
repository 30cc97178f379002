package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"fintrack/internal/core"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, "GET")
		return
	}

	summary, err := s.engine.Summary(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to compute summary", "error", err)
		writeError(w, r, http.StatusInternalServerError, "Failed to fetch summary")
		return
	}

	writeSuccess(w, r, http.StatusOK, map[string]any{"summary": summary})
}

func (s *Server) handleByCategory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, "GET")
		return
	}

	breakdown, err := s.engine.ExpenseByCategory(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to compute category breakdown", "error", err)
		writeError(w, r, http.StatusInternalServerError, "Failed to fetch category breakdown")
		return
	}

	writeSuccess(w, r, http.StatusOK, map[string]any{"categoryBreakdown": breakdown})
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, "GET")
		return
	}

	var date core.Date
	if v := strings.TrimSpace(r.URL.Query().Get("date")); v != "" {
		parsed, err := core.ParseDate(v)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	daily, err := s.engine.Daily(r.Context(), date)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to compute daily analytics", "error", err)
		writeError(w, r, http.StatusInternalServerError, "Failed to fetch daily analytics")
		return
	}

	writeSuccess(w, r, http.StatusOK, map[string]any{"daily": daily})
}

func (s *Server) handleRange(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, "GET")
		return
	}

	startParam := strings.TrimSpace(r.URL.Query().Get("startDate"))
	endParam := strings.TrimSpace(r.URL.Query().Get("endDate"))
	if startParam == "" || endParam == "" {
		writeError(w, r, http.StatusBadRequest, "startDate and endDate are required")
		return
	}

	start, err := core.ParseDate(startParam)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid startDate format, expected YYYY-MM-DD")
		return
	}
	end, err := core.ParseDate(endParam)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid endDate format, expected YYYY-MM-DD")
		return
	}

	report, err := s.engine.Range(r.Context(), start, end)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to compute range analytics", "error", err)
		writeError(w, r, http.StatusInternalServerError, "Failed to fetch date range analytics")
		return
	}

	writeSuccess(w, r, http.StatusOK, map[string]any{"dateRange": report})
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, "GET")
		return
	}

	year, ok := intQueryParam(w, r, "year")
	if !ok {
		return
	}
	month, ok := intQueryParam(w, r, "month")
	if !ok {
		return
	}
	if month < 0 || month > 12 {
		writeError(w, r, http.StatusBadRequest, "month must be between 1 and 12")
		return
	}

	report, err := s.engine.Monthly(r.Context(), year, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to compute monthly analytics", "error", err)
		writeError(w, r, http.StatusInternalServerError, "Failed to fetch monthly analytics")
		return
	}

	writeSuccess(w, r, http.StatusOK, map[string]any{"monthly": report})
}

func (s *Server) handleComparison(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, "GET")
		return
	}

	comparison, err := s.engine.Comparison(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to compute comparison", "error", err)
		writeError(w, r, http.StatusInternalServerError, "Failed to fetch comparison")
		return
	}

	writeSuccess(w, r, http.StatusOK, map[string]any{"comparison": comparison})
}

func (s *Server) handleTopExpenses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, "GET")
		return
	}

	limit := 5
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	top, err := s.engine.TopExpenses(r.Context(), limit)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to compute top expenses", "error", err)
		writeError(w, r, http.StatusInternalServerError, "Failed to fetch top expenses")
		return
	}
	if top == nil {
		top = []core.Transaction{}
	}

	writeSuccess(w, r, http.StatusOK, map[string]any{
		"count":       len(top),
		"topExpenses": top,
	})
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, "GET")
		return
	}

	category := strings.TrimSpace(r.URL.Query().Get("category"))

	trends, err := s.engine.Trends(r.Context(), category)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to compute trends", "error", err, "category", category)
		writeError(w, r, http.StatusInternalServerError, "Failed to fetch trends")
		return
	}

	writeSuccess(w, r, http.StatusOK, map[string]any{"trends": trends})
}

func (s *Server) handleBudgetCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, "POST")
		return
	}

	var budgets map[string]float64
	if err := json.NewDecoder(r.Body).Decode(&budgets); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid budget payload, expected an object of category to amount")
		return
	}

	report, err := s.engine.BudgetCheck(r.Context(), budgets)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to check budget", "error", err)
		writeError(w, r, http.StatusInternalServerError, "Failed to check budget")
		return
	}

	writeSuccess(w, r, http.StatusOK, map[string]any{"budgetAnalysis": report})
}

func (s *Server) handleSavingsRate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, "GET")
		return
	}

	report, err := s.engine.SavingsRate(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to compute savings rate", "error", err)
		writeError(w, r, http.StatusInternalServerError, "Failed to calculate savings rate")
		return
	}

	writeSuccess(w, r, http.StatusOK, map[string]any{"savingsRate": report})
}

// intQueryParam parses an optional integer query parameter, writing a
// 400 and returning ok=false on malformed input. A missing parameter
// yields zero, which downstream code treats as "use the current period".
func intQueryParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, name+" must be an integer")
		return 0, false
	}
	return n, true
}
