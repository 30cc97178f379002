// Package http exposes the JSON API for transactions, CSV uploads and
// analytics reports.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/analytics"
	"fintrack/internal/services"
)

type contextKey string

const requestIDKey contextKey = "request_id"

type Server struct {
	http.Server
	transactions   *services.TransactionService
	engine         *analytics.Engine
	maxUploadBytes int64
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, transactions *services.TransactionService, engine *analytics.Engine, maxUploadBytes int64) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		transactions:   transactions,
		engine:         engine,
		maxUploadBytes: maxUploadBytes,
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/api/transactions", s.withMiddleware(s.handleTransactions))
	mux.HandleFunc("/api/transactions/{id}", s.withMiddleware(s.handleTransactionByID))

	mux.HandleFunc("/api/files/upload", s.withMiddleware(s.handleFileUpload))

	mux.HandleFunc("/api/analytics/summary", s.withMiddleware(s.handleSummary))
	mux.HandleFunc("/api/analytics/by-category", s.withMiddleware(s.handleByCategory))
	mux.HandleFunc("/api/analytics/daily", s.withMiddleware(s.handleDaily))
	mux.HandleFunc("/api/analytics/range", s.withMiddleware(s.handleRange))
	mux.HandleFunc("/api/analytics/monthly", s.withMiddleware(s.handleMonthly))
	mux.HandleFunc("/api/analytics/comparison", s.withMiddleware(s.handleComparison))
	mux.HandleFunc("/api/analytics/top-expenses", s.withMiddleware(s.handleTopExpenses))
	mux.HandleFunc("/api/analytics/trends", s.withMiddleware(s.handleTrends))
	mux.HandleFunc("/api/analytics/budget-check", s.withMiddleware(s.handleBudgetCheck))
	mux.HandleFunc("/api/analytics/savings-rate", s.withMiddleware(s.handleSavingsRate))

	return s
}

// withMiddleware adds security headers and request logging to responses
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
