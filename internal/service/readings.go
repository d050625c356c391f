package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/septivank/solar-telemetry-ingest/internal/cell"
	"github.com/septivank/solar-telemetry-ingest/internal/db"
	"github.com/septivank/solar-telemetry-ingest/internal/domain"
	"github.com/septivank/solar-telemetry-ingest/internal/logging"
	"github.com/septivank/solar-telemetry-ingest/internal/record"
	"github.com/septivank/solar-telemetry-ingest/internal/repository"
)

// DefaultListLimit is the page size when the caller gives none
const DefaultListLimit = 100

// ListResult is a page of readings plus the total count
type ListResult struct {
	Data  []db.Reading `json:"data"`
	Total int64        `json:"total"`
}

// DeleteResult reports how many readings a bulk delete removed
type DeleteResult struct {
	DeletedCount int64 `json:"deletedCount"`
}

// ReadingService is the single-record CRUD surface of a domain
type ReadingService struct {
	rules  domain.Rules
	store  ReadingStore
	logger *zap.Logger
}

// NewReadingService creates the CRUD service of a domain
func NewReadingService(rules domain.Rules, store ReadingStore, logger *zap.Logger) *ReadingService {
	return &ReadingService{
		rules:  rules,
		store:  store,
		logger: logging.WithDomain(logger, string(rules.Name)),
	}
}

// Create stores one reading. Missing numeric fields default to 0; fields
// that must not be 0 are checked after defaulting.
func (s *ReadingService) Create(ctx context.Context, row record.Row) (*db.Reading, error) {
	date, tm := keyOf(s.rules, row)
	if date == "" {
		return nil, ErrMissingDate
	}
	if tm == "" {
		return nil, ErrMissingTime
	}

	fields := fieldsOf(s.rules, row)
	if err := s.checkNonZero(fields); err != nil {
		return nil, err
	}

	reading := &db.Reading{Date: date, Time: tm, Fields: fields}
	if err := s.store.Create(ctx, reading); err != nil {
		return nil, err
	}

	logging.FromContext(ctx, s.logger).Info("reading created",
		zap.String("id", reading.ID.String()),
		zap.String("date", date),
		zap.String("time", tm),
	)
	return reading, nil
}

// Get loads one reading
func (s *ReadingService) Get(ctx context.Context, id uuid.UUID) (*db.Reading, error) {
	return s.store.Get(ctx, id)
}

// List returns a page of readings, newest first
func (s *ReadingService) List(ctx context.Context, limit, skip int) (ListResult, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if skip < 0 {
		skip = 0
	}

	readings, total, err := s.store.List(ctx, limit, skip)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Data: readings, Total: total}, nil
}

// ListByDate returns the readings of one day ordered by time. The date may
// be given in any form the date normalizer accepts.
func (s *ReadingService) ListByDate(ctx context.Context, date string) ([]db.Reading, error) {
	token := cell.NormalizeDate(cell.NewText(date), s.rules.DateFormat).Token()
	if token == "" {
		return nil, ErrMissingDate
	}
	return s.store.ListByDate(ctx, token)
}

// Update changes only the columns present in row
func (s *ReadingService) Update(ctx context.Context, id uuid.UUID, row record.Row) (*db.Reading, error) {
	var patch repository.Patch

	if c, _, ok := row.Lookup("Date"); ok && !c.IsBlank() {
		date := cell.NormalizeDate(c, s.rules.DateFormat).Token()
		patch.Date = &date
	}
	if c, _, ok := row.Lookup("Time"); ok && !c.IsBlank() {
		tm := cell.NormalizeTime(c).Token()
		patch.Time = &tm
	}

	patch.Fields = map[string]float64{}
	for _, f := range s.rules.Fields {
		c, _, ok := row.Lookup(f.Header)
		if !ok || c.IsBlank() {
			continue
		}
		patch.Fields[f.StorageKey] = cell.CoerceNumber(c)
	}

	if err := s.checkNonZero(patch.Fields); err != nil {
		return nil, err
	}

	reading, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx, s.logger).Info("reading updated", zap.String("id", id.String()))
	return reading, nil
}

// Delete removes one reading
func (s *ReadingService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	logging.FromContext(ctx, s.logger).Info("reading deleted", zap.String("id", id.String()))
	return nil
}

// DeleteMany removes every reading in ids
func (s *ReadingService) DeleteMany(ctx context.Context, ids []uuid.UUID) (DeleteResult, error) {
	n, err := s.store.DeleteMany(ctx, ids)
	if err != nil {
		return DeleteResult{}, err
	}
	logging.FromContext(ctx, s.logger).Info("readings deleted", zap.Int64("deleted", n))
	return DeleteResult{DeletedCount: n}, nil
}

// checkNonZero enforces NonZeroOnWrite for the fields present in fields
func (s *ReadingService) checkNonZero(fields map[string]float64) error {
	for _, f := range s.rules.Fields {
		if !f.NonZeroOnWrite {
			continue
		}
		if v, ok := fields[f.StorageKey]; ok && v == 0 {
			return fmt.Errorf("%s %w", f.Name(), ErrZeroNotAllowed)
		}
	}
	return nil
}
