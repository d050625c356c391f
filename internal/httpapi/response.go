package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/septivank/solar-telemetry-ingest/internal/logging"
	"github.com/septivank/solar-telemetry-ingest/internal/preview"
	"github.com/septivank/solar-telemetry-ingest/internal/repository"
	"github.com/septivank/solar-telemetry-ingest/internal/service"
	"github.com/septivank/solar-telemetry-ingest/internal/sheet"
)

// ErrorResponse is the error envelope of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// respondError maps a service error to a status code. Anything unexpected
// is logged and answered with a generic 500.
func (h *Handlers) respondError(w http.ResponseWriter, r *http.Request, title string, err error) {
	var pe *sheet.ParseError
	switch {
	case errors.As(err, &pe):
		writeError(w, http.StatusBadRequest, pe.Msg)
	case errors.Is(err, service.ErrMissingDate),
		errors.Is(err, service.ErrMissingTime):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrZeroNotAllowed):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, repository.ErrConflict):
		writeError(w, http.StatusConflict, title+" record already exists for this date and time")
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, title+" record not found")
	case errors.Is(err, preview.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		logging.FromContext(r.Context(), h.logger).Error("request failed",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
