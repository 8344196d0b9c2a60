package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/juleeperween/charity-backend/internal/models"
)

type errorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorEnvelope{Success: status < 400, Message: message})
}

// writeError maps the error taxonomy onto HTTP statuses. Validation problems
// carry the offending field to the caller; storage, render and upstream
// failures are reported generically so internal detail never leaks.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		writeMessage(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, models.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Donation not found.")
	case errors.Is(err, models.ErrPaymentNotCompleted):
		writeMessage(w, http.StatusBadRequest, "Payment was not successful or was canceled.")
	default:
		var re *models.RenderError
		var ue *models.UpstreamError
		switch {
		case errors.As(err, &re):
			logger.Error("render failure", "error", err)
			writeMessage(w, http.StatusInternalServerError, "Error generating payment artifact.")
		case errors.As(err, &ue):
			logger.Error("upstream failure", "error", err)
			writeMessage(w, http.StatusInternalServerError, "There was an error verifying your payment. Please try again later.")
		default:
			logger.Error("request failed", "error", err)
			writeMessage(w, http.StatusInternalServerError, "Internal server error.")
		}
	}
}
