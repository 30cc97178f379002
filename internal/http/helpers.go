package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// writeJSON writes v with the given status. Encoding failures are logged
// only, the header has already gone out.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "Failed to encode response", "error", err, "url", r.URL.Path)
	}
}

func writeSuccess(w http.ResponseWriter, r *http.Request, status int, fields map[string]any) {
	payload := map[string]any{"status": "success"}
	for k, v := range fields {
		payload[k] = v
	}
	writeJSON(w, r, status, payload)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, map[string]any{
		"status":  "error",
		"message": message,
	})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allow string) {
	w.Header().Set("Allow", allow)
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}
