package http

import (
	"log/slog"
	"net/http"
)

// handleFileUpload ingests a CSV file posted as the multipart field
// "file". Bad rows are skipped and tallied, never fatal for the batch.
func (s *Server) handleFileUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, "POST")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "Multipart field 'file' is required")
		return
	}
	defer file.Close()

	slog.InfoContext(r.Context(), "Received file upload",
		"filename", header.Filename,
		"size_bytes", header.Size)

	imported, skipped, err := s.transactions.ImportCSV(r.Context(), file)
	if err != nil {
		slog.ErrorContext(r.Context(), "File upload failed", "error", err, "filename", header.Filename)
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	writeSuccess(w, r, http.StatusOK, map[string]any{
		"transactionsImported": imported,
		"rowsSkipped":          skipped,
	})
}
