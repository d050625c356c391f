// Package httpapi exposes the ingestion pipeline and the reading services
// over HTTP.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/septivank/solar-telemetry-ingest/internal/logging"
	"github.com/septivank/solar-telemetry-ingest/internal/record"
	"github.com/septivank/solar-telemetry-ingest/internal/service"
	"github.com/septivank/solar-telemetry-ingest/internal/sheet"
)

// DefaultMaxUploadBytes caps upload bodies when no limit is configured
const DefaultMaxUploadBytes = 10 << 20

const msgRowsRequired = "Request body must contain rows array"

// PreviewStore caches upload results. *preview.Store implements it.
type PreviewStore interface {
	Save(ctx context.Context, domain string, result record.UploadResult) (string, error)
	Load(ctx context.Context, domain, uploadID string) (record.UploadResult, error)
}

// HealthCheck reports whether one dependency is reachable
type HealthCheck func(ctx context.Context) error

// Handlers serves every domain registered in the registry
type Handlers struct {
	registry       *service.Registry
	previews       PreviewStore
	checks         map[string]HealthCheck
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewHandlers creates the HTTP handlers. previews may be nil, which
// disables upload ids.
func NewHandlers(registry *service.Registry, previews PreviewStore, checks map[string]HealthCheck, maxUploadBytes int64, logger *zap.Logger) *Handlers {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handlers{
		registry:       registry,
		previews:       previews,
		checks:         checks,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Upload parses a multipart "file" workbook and returns the validated rows
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	d := domainFrom(r)
	reqLogger := logging.WithDomain(logging.FromContext(r.Context(), h.logger), string(d.Rules.Name))

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Excel file exceeds %d bytes", h.maxUploadBytes))
			return
		}
		writeError(w, http.StatusBadRequest, "Excel file is required")
		return
	}
	defer file.Close()

	reqLogger.Info("received upload",
		zap.String("filename", header.Filename),
		zap.Int64("size", header.Size),
	)

	result, err := d.Pipeline.Upload(file)
	if err != nil {
		h.respondError(w, r, d.Rules.Title, err)
		return
	}

	if h.previews != nil {
		id, err := h.previews.Save(r.Context(), string(d.Rules.Name), result)
		if err != nil {
			reqLogger.Warn("failed to cache upload preview", zap.Error(err))
		} else {
			result.UploadID = id
		}
	}

	writeJSON(w, http.StatusOK, result.Encode(record.ParseShape(r.URL.Query().Get("shape"))))
}

// Validate re-runs validation over rows the client has edited
func (h *Handlers) Validate(w http.ResponseWriter, r *http.Request) {
	d := domainFrom(r)

	rows, ok := decodeRows(r)
	if !ok {
		writeError(w, http.StatusBadRequest, msgRowsRequired)
		return
	}

	result := d.Pipeline.Validate(rows)
	writeJSON(w, http.StatusOK, result.Encode(record.ParseShape(r.URL.Query().Get("shape"))))
}

// Submit writes approved rows to storage
func (h *Handlers) Submit(w http.ResponseWriter, r *http.Request) {
	d := domainFrom(r)

	rows, ok := decodeRows(r)
	if !ok {
		writeError(w, http.StatusBadRequest, msgRowsRequired)
		return
	}

	summary, err := d.Submitter.Submit(r.Context(), rows)
	if err != nil {
		h.respondError(w, r, d.Rules.Title, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// Template downloads an example workbook for the domain
func (h *Handlers) Template(w http.ResponseWriter, r *http.Request) {
	d := domainFrom(r)

	data, err := sheet.Template(d.Rules)
	if err != nil {
		h.respondError(w, r, d.Rules.Title, err)
		return
	}

	w.Header().Set("Content-Type", sheet.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", sheet.TemplateFilename(d.Rules)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Preview returns a cached upload result
func (h *Handlers) Preview(w http.ResponseWriter, r *http.Request) {
	d := domainFrom(r)

	if h.previews == nil {
		writeError(w, http.StatusNotFound, "upload previews are disabled")
		return
	}

	result, err := h.previews.Load(r.Context(), string(d.Rules.Name), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, d.Rules.Title, err)
		return
	}

	writeJSON(w, http.StatusOK, result.Encode(record.ParseShape(r.URL.Query().Get("shape"))))
}

// Health checks every configured dependency
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	checks := make(map[string]string, len(h.checks))

	for name, check := range h.checks {
		if err := check(r.Context()); err != nil {
			status = http.StatusServiceUnavailable
			checks[name] = err.Error()
			continue
		}
		checks[name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	writeJSON(w, status, map[string]any{
		"status":  overall,
		"checks":  checks,
		"domains": h.registry.Names(),
	})
}

// decodeRows reads {"rows": [...]}. It fails when rows is missing, is not
// an array, or holds something other than objects.
func decodeRows(r *http.Request) ([]record.Row, bool) {
	var body struct {
		Rows json.RawMessage `json:"rows"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, false
	}

	raw := bytes.TrimSpace(body.Rows)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false
	}

	var rows []record.Row
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, false
	}
	if rows == nil {
		rows = []record.Row{}
	}
	return rows, true
}
