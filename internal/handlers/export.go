package handlers

import (
	"fmt"
	"net/http"
	"time"

	"loopr-backend/internal/export"
	"loopr-backend/internal/logging"
	"loopr-backend/internal/models"

	"github.com/google/uuid"
)

type ExportHandler struct {
	store TransactionStore
	now   func() time.Time
}

func NewExportHandler(store TransactionStore) *ExportHandler {
	return &ExportHandler{store: store, now: time.Now}
}

type exportRequest struct {
	Columns  []string     `json:"columns"`
	Filters  filterParams `json:"filters"`
	Filename string       `json:"filename"`
}

// --- POST /api/export/csv ---

// CSV streams matching transactions, newest first. Nothing is written
// until the first row is known to exist, so an empty result is still a
// clean 404.
func (h *ExportHandler) CSV(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cols := export.ResolveColumns(req.Columns)
	if len(cols) == 0 {
		respondError(w, http.StatusBadRequest, "No valid columns selected for export")
		return
	}

	filter, err := req.Filters.toFilter()
	if err != nil {
		respondValidation(w, err)
		return
	}

	exportID := uuid.NewString()
	logger := logging.FromContext(r.Context()).With("export_id", exportID)
	filename := export.Filename(req.Filename, h.now())

	var csvw *export.Writer
	err = h.store.Stream(r.Context(), filter, func(tx *models.Transaction) error {
		if csvw == nil {
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
			w.Header().Set("X-Export-Id", exportID)
			w.WriteHeader(http.StatusOK)

			csvw = export.NewWriter(w, cols)
			if err := csvw.WriteHeader(); err != nil {
				return err
			}
		}
		return csvw.Write(tx)
	})

	if csvw == nil {
		if err != nil {
			respondInternal(w, r, "export transactions", err)
			return
		}
		respondError(w, http.StatusNotFound, "No transactions found for the specified criteria")
		return
	}

	if flushErr := csvw.Flush(); err == nil {
		err = flushErr
	}
	if err != nil {
		// Headers are gone; the client sees a truncated file.
		logger.Error("export transactions: stream aborted", "error", err, "rows", csvw.Rows())
		return
	}
	logger.Info("export completed", "rows", csvw.Rows(), "columns", len(cols), "filename", filename)
}

// --- GET /api/export/columns ---

func (h *ExportHandler) Columns(w http.ResponseWriter, r *http.Request) {
	respondOK(w, http.StatusOK, "", export.Columns())
}
