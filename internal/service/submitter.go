package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/septivank/solar-telemetry-ingest/internal/db"
	"github.com/septivank/solar-telemetry-ingest/internal/domain"
	"github.com/septivank/solar-telemetry-ingest/internal/logging"
	"github.com/septivank/solar-telemetry-ingest/internal/mq"
	"github.com/septivank/solar-telemetry-ingest/internal/pipeline"
	"github.com/septivank/solar-telemetry-ingest/internal/record"
	"github.com/septivank/solar-telemetry-ingest/internal/repository"
)

// Summary is the domain-specific result of a bulk submit
type Summary interface {
	// Totals returns written, skipped and failed row counts
	Totals() (written, skipped, failed int)
}

// UpsertSummary is the result of an overwrite-on-conflict submit
type UpsertSummary struct {
	Acknowledged  bool `json:"acknowledged"`
	InsertedCount int  `json:"insertedCount"`
	MatchedCount  int  `json:"matchedCount"`
	ModifiedCount int  `json:"modifiedCount"`
	UpsertedCount int  `json:"upsertedCount"`
	FailedCount   int  `json:"failedCount"`
}

// Totals implements Summary
func (s UpsertSummary) Totals() (int, int, int) {
	return s.UpsertedCount + s.ModifiedCount, s.MatchedCount - s.ModifiedCount, s.FailedCount
}

// InsertSummary is the result of a skip-existing submit
type InsertSummary struct {
	Inserted int    `json:"inserted"`
	Skipped  int    `json:"skipped"`
	Message  string `json:"message"`
}

// Totals implements Summary
func (s InsertSummary) Totals() (int, int, int) {
	return s.Inserted, s.Skipped, 0
}

// Submitter writes client-approved rows to storage. It does not re-run
// validation: callers submit rows they have already validated.
type Submitter struct {
	rules     domain.Rules
	store     ReadingStore
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewSubmitter creates a submitter. publisher may be nil.
func NewSubmitter(rules domain.Rules, store ReadingStore, publisher EventPublisher, logger *zap.Logger) *Submitter {
	return &Submitter{
		rules:     rules,
		store:     store,
		publisher: publisher,
		logger:    logging.WithDomain(logger, string(rules.Name)),
		now:       time.Now,
	}
}

// Submit writes rows with the domain's write policy and publishes a
// submission event once the write is done.
func (s *Submitter) Submit(ctx context.Context, rows []record.Row) (Summary, error) {
	reqLogger := logging.FromContext(ctx, s.logger)

	var (
		summary Summary
		err     error
	)
	switch s.rules.Write {
	case domain.WriteOverwrite:
		summary, err = s.upsertAll(ctx, rows, reqLogger)
	default:
		summary, err = s.insertMissing(ctx, rows)
	}
	if err != nil {
		reqLogger.Error("submit failed", zap.Error(err), zap.Int("rows", len(rows)))
		return nil, err
	}

	written, skipped, failed := summary.Totals()
	reqLogger.Info("submit completed",
		zap.Int("rows", len(rows)),
		zap.Int("written", written),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
	)

	if len(rows) > 0 {
		s.publish(ctx, len(rows), summary, reqLogger)
	}

	return summary, nil
}

func (s *Submitter) upsertAll(ctx context.Context, rows []record.Row, logger *zap.Logger) (UpsertSummary, error) {
	type doc struct {
		date, tm string
		fields   map[string]float64
	}

	docs := make([]doc, 0, len(rows))
	for i, row := range rows {
		date, tm := keyOf(s.rules, row)
		if date == "" {
			return UpsertSummary{}, fmt.Errorf("row %d: %w", i+pipeline.FirstDataRow, ErrMissingDate)
		}
		docs = append(docs, doc{date: date, tm: tm, fields: fieldsOf(s.rules, row)})
	}

	summary := UpsertSummary{Acknowledged: true}
	for i, d := range docs {
		outcome, err := s.store.UpsertReading(ctx, d.date, d.tm, d.fields)
		if err != nil {
			summary.FailedCount++
			logger.Warn("row write failed",
				zap.Error(err),
				zap.Int("row_number", i+pipeline.FirstDataRow),
				zap.String("date", d.date),
				zap.String("time", d.tm),
			)
			continue
		}

		switch outcome {
		case repository.Upserted:
			summary.UpsertedCount++
		case repository.Modified:
			summary.MatchedCount++
			summary.ModifiedCount++
		case repository.Unchanged:
			summary.MatchedCount++
		}
	}

	return summary, nil
}

func (s *Submitter) insertMissing(ctx context.Context, rows []record.Row) (InsertSummary, error) {
	if len(rows) == 0 {
		return InsertSummary{Message: "No data provided"}, nil
	}

	var (
		readings []db.Reading
		skipped  int
	)
	for _, row := range rows {
		date, tm := keyOf(s.rules, row)
		if date == "" || tm == "" {
			skipped++
			continue
		}

		exists, err := s.store.ReadingExists(ctx, date, tm)
		if err != nil {
			return InsertSummary{}, fmt.Errorf("failed to check existing reading: %w", err)
		}
		if exists {
			skipped++
			continue
		}

		readings = append(readings, db.Reading{Date: date, Time: tm, Fields: fieldsOf(s.rules, row)})
	}

	inserted := 0
	if len(readings) > 0 {
		n, err := s.store.InsertReadings(ctx, readings)
		if err != nil {
			return InsertSummary{}, fmt.Errorf("failed to insert readings: %w", err)
		}
		inserted = n
		skipped += len(readings) - n
	}

	return InsertSummary{
		Inserted: inserted,
		Skipped:  skipped,
		Message:  s.rules.Title + " data submission completed",
	}, nil
}

func (s *Submitter) publish(ctx context.Context, rowCount int, summary Summary, logger *zap.Logger) {
	if s.publisher == nil {
		return
	}

	written, skipped, failed := summary.Totals()
	event := mq.SubmissionEvent{
		EventID:     uuid.NewString(),
		Domain:      string(s.rules.Name),
		RowCount:    rowCount,
		Written:     written,
		Skipped:     skipped,
		Failed:      failed,
		SubmittedAt: s.now().UTC(),
	}

	if err := s.publisher.PublishSubmission(ctx, event); err != nil {
		// Log error but don't fail the submit: rows are already stored
		logger.Error("failed to publish submission event",
			zap.Error(err),
			zap.String("event_id", event.EventID),
		)
	}
}

