package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Reading is one stored row of a domain readings table. Fields holds the
// domain's numeric columns keyed by storage key.
type Reading struct {
	ID        uuid.UUID
	Date      string
	Time      string
	Fields    map[string]float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MarshalJSON flattens Fields next to the key columns
func (r Reading) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+5)
	for k, v := range r.Fields {
		out[k] = v
	}
	out["id"] = r.ID
	out["date"] = r.Date
	out["time"] = r.Time
	out["createdAt"] = r.CreatedAt
	out["updatedAt"] = r.UpdatedAt
	return json.Marshal(out)
}
