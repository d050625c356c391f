package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/septivank/solar-telemetry-ingest/internal/record"
)

// CreateReading stores one reading from a JSON object
func (h *Handlers) CreateReading(w http.ResponseWriter, r *http.Request) {
	d := domainFrom(r)

	var row record.Row
	if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
		writeError(w, http.StatusBadRequest, "Request body must be a JSON object")
		return
	}

	reading, err := d.Readings.Create(r.Context(), row)
	if err != nil {
		h.respondError(w, r, d.Rules.Title, err)
		return
	}
	writeJSON(w, http.StatusCreated, reading)
}

// ListReadings returns a page of readings, newest first
func (h *Handlers) ListReadings(w http.ResponseWriter, r *http.Request) {
	d := domainFrom(r)

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))

	result, err := d.Readings.List(r.Context(), limit, skip)
	if err != nil {
		h.respondError(w, r, d.Rules.Title, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetReading loads one reading by id
func (h *Handlers) GetReading(w http.ResponseWriter, r *http.Request) {
	d := domainFrom(r)

	id, ok := h.readingID(w, r)
	if !ok {
		return
	}

	reading, err := d.Readings.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, d.Rules.Title, err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

// ListReadingsByDate returns the readings of one day ordered by time
func (h *Handlers) ListReadingsByDate(w http.ResponseWriter, r *http.Request) {
	d := domainFrom(r)

	readings, err := d.Readings.ListByDate(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		h.respondError(w, r, d.Rules.Title, err)
		return
	}
	writeJSON(w, http.StatusOK, readings)
}

// UpdateReading changes the fields present in the JSON body
func (h *Handlers) UpdateReading(w http.ResponseWriter, r *http.Request) {
	d := domainFrom(r)

	id, ok := h.readingID(w, r)
	if !ok {
		return
	}

	var row record.Row
	if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
		writeError(w, http.StatusBadRequest, "Request body must be a JSON object")
		return
	}

	reading, err := d.Readings.Update(r.Context(), id, row)
	if err != nil {
		h.respondError(w, r, d.Rules.Title, err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

// DeleteReading removes one reading
func (h *Handlers) DeleteReading(w http.ResponseWriter, r *http.Request) {
	d := domainFrom(r)

	id, ok := h.readingID(w, r)
	if !ok {
		return
	}

	if err := d.Readings.Delete(r.Context(), id); err != nil {
		h.respondError(w, r, d.Rules.Title, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": d.Rules.Title + " record deleted successfully",
		"id":      id.String(),
	})
}

// DeleteManyReadings removes every reading listed in {"ids": [...]}.
// Ids that are not UUIDs cannot match a reading and are ignored.
func (h *Handlers) DeleteManyReadings(w http.ResponseWriter, r *http.Request) {
	d := domainFrom(r)

	var body struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids array is required")
		return
	}

	ids := make([]uuid.UUID, 0, len(body.IDs))
	for _, raw := range body.IDs {
		if id, err := uuid.Parse(raw); err == nil {
			ids = append(ids, id)
		}
	}

	result, err := d.Readings.DeleteMany(r.Context(), ids)
	if err != nil {
		h.respondError(w, r, d.Rules.Title, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// readingID parses the {id} parameter. A malformed id cannot name a
// stored reading, so it is answered as not found.
func (h *Handlers) readingID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, domainFrom(r).Rules.Title+" record not found")
		return uuid.Nil, false
	}
	return id, true
}
