package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
	"fintrack/internal/ingest"
	"fintrack/internal/services"
	"fintrack/internal/store/memory"
)

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	st := memory.New()
	svc := services.NewTransactionService(st, ingest.NewParser(), nil)
	engine := analytics.NewEngine(st)
	return NewServer(":0", svc, engine, 10<<20), st
}

func doRequest(t *testing.T, s *Server, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return payload
}

func seedTransaction(t *testing.T, st *memory.Store, date string, amount float64, typ core.TransactionType, category string) core.Transaction {
	t.Helper()
	d, err := core.ParseDate(date)
	if err != nil {
		t.Fatalf("parse date %s: %v", date, err)
	}
	saved, err := st.Save(context.Background(), core.Transaction{
		Date:     d,
		Amount:   decimal.NewFromFloat(amount),
		Type:     typ,
		Category: category,
	})
	if err != nil {
		t.Fatalf("seed transaction: %v", err)
	}
	return saved
}

func TestCreateTransaction(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/transactions",
		`{"date":"2025-04-01","description":"salary","category":"Income","amount":1000,"type":"income"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	payload := decodeBody(t, rec)
	if payload["status"] != "success" {
		t.Fatalf("expected success envelope, got %v", payload)
	}
	tx, ok := payload["transaction"].(map[string]any)
	if !ok {
		t.Fatalf("missing transaction in response: %v", payload)
	}
	if tx["id"] == "" || tx["id"] == nil {
		t.Error("expected assigned transaction id")
	}
	if tx["type"] != "INCOME" {
		t.Errorf("expected canonical type INCOME, got %v", tx["type"])
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name    string
		body    string
		wantSub string
	}{
		{"missing amount", `{"date":"2025-04-01","type":"EXPENSE"}`, "Amount is required"},
		{"zero amount", `{"amount":0,"type":"EXPENSE"}`, "greater than 0"},
		{"negative amount", `{"amount":-5,"type":"EXPENSE"}`, "greater than 0"},
		{"missing type", `{"amount":10}`, "Type is required"},
		{"bad type", `{"amount":10,"type":"TRANSFER"}`, "INCOME or EXPENSE"},
		{"garbage body", `not json`, "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, s, http.MethodPost, "/api/transactions", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			payload := decodeBody(t, rec)
			if payload["status"] != "error" {
				t.Fatalf("expected error envelope, got %v", payload)
			}
			if msg, _ := payload["message"].(string); !strings.Contains(msg, tt.wantSub) {
				t.Fatalf("message %q does not mention %q", msg, tt.wantSub)
			}
		})
	}
}

func TestListTransactions(t *testing.T) {
	s, st := newTestServer(t)
	seedTransaction(t, st, "2025-04-01", 100, core.Income, "Salary")
	seedTransaction(t, st, "2025-04-02", 40, core.Expense, "Food")

	rec := doRequest(t, s, http.MethodGet, "/api/transactions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	payload := decodeBody(t, rec)
	if payload["count"] != float64(2) {
		t.Fatalf("expected count 2, got %v", payload["count"])
	}
}

func TestGetTransactionNotFound(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/transactions/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUpdateTransactionPartial(t *testing.T) {
	s, st := newTestServer(t)
	saved := seedTransaction(t, st, "2025-04-01", 40, core.Expense, "Food")

	rec := doRequest(t, s, http.MethodPut, "/api/transactions/"+saved.ID, `{"amount":55}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	payload := decodeBody(t, rec)
	tx := payload["transaction"].(map[string]any)
	if tx["category"] != "Food" {
		t.Errorf("category should be untouched, got %v", tx["category"])
	}
	if tx["amount"] != "55" {
		t.Errorf("expected amount 55, got %v", tx["amount"])
	}
}

func TestUpdateTransactionRejectsBadAmount(t *testing.T) {
	s, st := newTestServer(t)
	saved := seedTransaction(t, st, "2025-04-01", 40, core.Expense, "Food")

	rec := doRequest(t, s, http.MethodPut, "/api/transactions/"+saved.ID, `{"amount":-1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDeleteTransaction(t *testing.T) {
	s, st := newTestServer(t)
	saved := seedTransaction(t, st, "2025-04-01", 40, core.Expense, "Food")

	rec := doRequest(t, s, http.MethodDelete, "/api/transactions/"+saved.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/transactions/"+saved.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestFileUpload(t *testing.T) {
	s, st := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "transactions.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write([]byte(strings.Join([]string{
		"date,description,category,amount,type",
		"2025-01-02,salary,Income,1000,INCOME",
		"2025-01-03,coffee,Food,3.50,EXPENSE",
		"bad-date,rent,Housing,800,EXPENSE",
	}, "\n")))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	payload := decodeBody(t, rec)
	if payload["transactionsImported"] != float64(2) {
		t.Errorf("expected 2 imported, got %v", payload["transactionsImported"])
	}
	if payload["rowsSkipped"] != float64(1) {
		t.Errorf("expected 1 skipped, got %v", payload["rowsSkipped"])
	}

	count, _ := st.Count(context.Background())
	if count != 2 {
		t.Errorf("expected 2 stored transactions, got %d", count)
	}
}

func TestFileUploadMissingFile(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/files/upload", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAnalyticsSummaryEndpoint(t *testing.T) {
	s, st := newTestServer(t)
	seedTransaction(t, st, "2025-04-01", 100, core.Income, "Salary")
	seedTransaction(t, st, "2025-04-02", 40, core.Expense, "Food")

	rec := doRequest(t, s, http.MethodGet, "/api/analytics/summary", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	payload := decodeBody(t, rec)
	summary, ok := payload["summary"].(map[string]any)
	if !ok {
		t.Fatalf("missing summary: %v", payload)
	}
	if summary["netBalance"] != float64(60) {
		t.Errorf("expected netBalance 60, got %v", summary["netBalance"])
	}
	if summary["savingsPercentage"] != float64(60) {
		t.Errorf("expected savingsPercentage 60, got %v", summary["savingsPercentage"])
	}
}

func TestAnalyticsRangeValidation(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/analytics/range", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing params, got %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/analytics/range?startDate=bogus&endDate=2025-04-30", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed startDate, got %d", rec.Code)
	}
}

func TestAnalyticsDailyBadDate(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/analytics/daily?date=04-01-2025", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAnalyticsTopExpensesEndpoint(t *testing.T) {
	s, st := newTestServer(t)
	seedTransaction(t, st, "2025-04-01", 10, core.Expense, "a")
	seedTransaction(t, st, "2025-04-02", 30, core.Expense, "b")
	seedTransaction(t, st, "2025-04-03", 20, core.Expense, "c")

	rec := doRequest(t, s, http.MethodGet, "/api/analytics/top-expenses?limit=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	payload := decodeBody(t, rec)
	if payload["count"] != float64(2) {
		t.Fatalf("expected count 2, got %v", payload["count"])
	}

	rec = doRequest(t, s, http.MethodGet, "/api/analytics/top-expenses?limit=abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", rec.Code)
	}
}

func TestAnalyticsBudgetCheckEndpoint(t *testing.T) {
	s, st := newTestServer(t)
	seedTransaction(t, st, "2025-04-01", 120, core.Expense, "Food")
	seedTransaction(t, st, "2025-04-02", 30, core.Expense, "Transport")

	rec := doRequest(t, s, http.MethodPost, "/api/analytics/budget-check",
		`{"Food":100,"Transport":50}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	payload := decodeBody(t, rec)
	analysis, ok := payload["budgetAnalysis"].(map[string]any)
	if !ok {
		t.Fatalf("missing budgetAnalysis: %v", payload)
	}
	if analysis["categoriesExceeded"] != float64(1) {
		t.Errorf("expected 1 category exceeded, got %v", analysis["categoriesExceeded"])
	}

	rec = doRequest(t, s, http.MethodGet, "/api/analytics/budget-check", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for GET, got %d", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doRequest(t, s, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}
