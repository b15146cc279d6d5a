package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"loopr-backend/internal/logging"
	"loopr-backend/internal/models"
)

// envelope is the response shape every JSON endpoint shares.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondOK(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message})
}

// respondInternal logs err with the request logger and hides it from
// the client.
func respondInternal(w http.ResponseWriter, r *http.Request, msg string, err error) {
	logging.FromContext(r.Context()).Error(msg, "error", err)
	respondError(w, http.StatusInternalServerError, "Internal server error")
}

// respondValidation writes a 400 for a *models.ValidationError and
// reports whether err was one.
func respondValidation(w http.ResponseWriter, err error) bool {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		respondError(w, http.StatusBadRequest, verr.Message)
		return true
	}
	return false
}

const maxJSONBody = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
