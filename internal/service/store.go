package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/septivank/solar-telemetry-ingest/internal/cell"
	"github.com/septivank/solar-telemetry-ingest/internal/db"
	"github.com/septivank/solar-telemetry-ingest/internal/domain"
	"github.com/septivank/solar-telemetry-ingest/internal/mq"
	"github.com/septivank/solar-telemetry-ingest/internal/record"
	"github.com/septivank/solar-telemetry-ingest/internal/repository"
)

var (
	// ErrMissingDate is returned when a row to be written has no date
	ErrMissingDate = errors.New("each row must contain Date")
	// ErrMissingTime is returned when a row to be written has no time
	ErrMissingTime = errors.New("each row must contain Time")
	// ErrZeroNotAllowed is returned when a single-record write sets a
	// non-zero field to 0
	ErrZeroNotAllowed = errors.New("cannot be 0")
)

// ReadingStore is the persistence a domain's services need.
// *repository.Repository implements it.
type ReadingStore interface {
	UpsertReading(ctx context.Context, date, tm string, fields map[string]float64) (repository.UpsertOutcome, error)
	ReadingExists(ctx context.Context, date, tm string) (bool, error)
	InsertReadings(ctx context.Context, readings []db.Reading) (int, error)

	Create(ctx context.Context, reading *db.Reading) error
	Get(ctx context.Context, id uuid.UUID) (*db.Reading, error)
	List(ctx context.Context, limit, skip int) ([]db.Reading, int64, error)
	ListByDate(ctx context.Context, date string) ([]db.Reading, error)
	Update(ctx context.Context, id uuid.UUID, patch repository.Patch) (*db.Reading, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error)
}

// EventPublisher publishes submission events. *mq.Publisher implements it.
type EventPublisher interface {
	PublishSubmission(ctx context.Context, event mq.SubmissionEvent) error
}

// keyOf reads the normalized (date, time) key of a row. Meter rows without
// a time get the domain default.
func keyOf(rules domain.Rules, row record.Row) (string, string) {
	date := cell.NormalizeDate(row.Get("Date"), rules.DateFormat).Token()
	tm := cell.NormalizeTime(row.Get("Time")).Token()
	if tm == "" {
		tm = rules.DefaultTime
	}
	return date, tm
}

// fieldsOf maps every domain field to its storage key. Missing or
// unparseable values become 0.
func fieldsOf(rules domain.Rules, row record.Row) map[string]float64 {
	fields := make(map[string]float64, len(rules.Fields))
	for _, f := range rules.Fields {
		fields[f.StorageKey] = cell.CoerceNumber(row.Get(f.Header))
	}
	return fields
}
