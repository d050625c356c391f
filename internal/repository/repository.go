package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/septivank/solar-telemetry-ingest/internal/db"
	"github.com/septivank/solar-telemetry-ingest/internal/domain"
)

// Tx is an alias for pgx.Tx
type Tx = pgx.Tx

// DB is the query surface shared by *pgxpool.Pool and its test doubles
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

var (
	// ErrConflict is returned when a (date, time) pair already exists
	ErrConflict = errors.New("reading already exists")
	// ErrNotFound is returned when no reading has the requested id
	ErrNotFound = errors.New("reading not found")
)

const uniqueViolation = "23505"

// UpsertOutcome tells what an upsert did to the stored row
type UpsertOutcome int

const (
	// Upserted means a new row was inserted
	Upserted UpsertOutcome = iota
	// Modified means an existing row was overwritten with different fields
	Modified
	// Unchanged means an existing row already held the same fields
	Unchanged
)

const readingColumns = "id, date, time, fields, created_at, updated_at"

// Repository handles database operations for one domain's readings table
type Repository struct {
	db    DB
	table string
	now   func() time.Time
}

// NewRepository creates a repository bound to the table of a domain
func NewRepository(conn DB, name domain.Name) *Repository {
	return &Repository{db: conn, table: db.TableName(name), now: time.Now}
}

// UpsertReading inserts the (date, time) row or overwrites its fields
func (r *Repository) UpsertReading(ctx context.Context, date, tm string, fields map[string]float64) (UpsertOutcome, error) {
	payload, err := json.Marshal(fields)
	if err != nil {
		return 0, fmt.Errorf("failed to encode fields: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %[1]s (id, date, time, fields, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (date, time) DO UPDATE
		SET fields = EXCLUDED.fields, updated_at = EXCLUDED.updated_at
		WHERE %[1]s.fields IS DISTINCT FROM EXCLUDED.fields
		RETURNING (xmax = 0) AS inserted
	`, r.table)

	var inserted bool
	err = r.db.QueryRow(ctx, query, uuid.New(), date, tm, payload, r.now()).Scan(&inserted)
	if errors.Is(err, pgx.ErrNoRows) {
		return Unchanged, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to upsert reading: %w", err)
	}

	if inserted {
		return Upserted, nil
	}
	return Modified, nil
}

// ReadingExists reports whether a row with the (date, time) key is stored
func (r *Repository) ReadingExists(ctx context.Context, date, tm string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE date = $1 AND time = $2)`, r.table)

	var exists bool
	if err := r.db.QueryRow(ctx, query, date, tm).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check reading existence: %w", err)
	}
	return exists, nil
}

// BeginTx starts a new transaction
func (r *Repository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.db.Begin(ctx)
}

// InsertReadingTx inserts a reading unless its key is taken. It reports
// whether a row was written.
func (r *Repository) InsertReadingTx(ctx context.Context, tx pgx.Tx, reading *db.Reading) (bool, error) {
	payload, err := json.Marshal(reading.Fields)
	if err != nil {
		return false, fmt.Errorf("failed to encode fields: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, date, time, fields, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (date, time) DO NOTHING
	`, r.table)

	if reading.ID == uuid.Nil {
		reading.ID = uuid.New()
	}
	now := r.now()

	tag, err := tx.Exec(ctx, query, reading.ID, reading.Date, reading.Time, payload, now)
	if err != nil {
		return false, fmt.Errorf("failed to insert reading: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return false, nil
	}
	reading.CreatedAt, reading.UpdatedAt = now, now
	return true, nil
}

// InsertReadings writes readings in one transaction, skipping taken keys.
// It returns how many rows were written.
func (r *Repository) InsertReadings(ctx context.Context, readings []db.Reading) (int, error) {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	inserted := 0
	for i := range readings {
		ok, err := r.InsertReadingTx(ctx, tx, &readings[i])
		if err != nil {
			return 0, err
		}
		if ok {
			inserted++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return inserted, nil
}

// Create inserts a single reading. A taken key is ErrConflict.
func (r *Repository) Create(ctx context.Context, reading *db.Reading) error {
	payload, err := json.Marshal(reading.Fields)
	if err != nil {
		return fmt.Errorf("failed to encode fields: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, date, time, fields, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING created_at, updated_at
	`, r.table)

	reading.ID = uuid.New()
	err = r.db.QueryRow(ctx, query, reading.ID, reading.Date, reading.Time, payload, r.now()).
		Scan(&reading.CreatedAt, &reading.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to create reading: %w", err)
	}

	return nil
}

// Get loads a reading by id
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*db.Reading, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, readingColumns, r.table)

	reading, err := scanReading(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reading: %w", err)
	}
	return reading, nil
}

// List returns a page of readings, newest first, and the total row count
func (r *Repository) List(ctx context.Context, limit, skip int) ([]db.Reading, int64, error) {
	var total int64
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s`, r.table)
	if err := r.db.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count readings: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`, readingColumns, r.table)

	readings, err := r.queryReadings(ctx, query, limit, skip)
	if err != nil {
		return nil, 0, err
	}
	return readings, total, nil
}

// ListByDate returns every reading of a date ordered by time
func (r *Repository) ListByDate(ctx context.Context, date string) ([]db.Reading, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE date = $1 ORDER BY time`, readingColumns, r.table)
	return r.queryReadings(ctx, query, date)
}

// Patch carries the changes of a partial update; nil means unchanged
type Patch struct {
	Date   *string
	Time   *string
	Fields map[string]float64
}

// Update applies a patch. Provided fields are merged over the stored ones.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, patch Patch) (*db.Reading, error) {
	fields := patch.Fields
	if fields == nil {
		fields = map[string]float64{}
	}
	payload, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode fields: %w", err)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET date = COALESCE($2, date),
		    time = COALESCE($3, time),
		    fields = fields || $4::jsonb,
		    updated_at = $5
		WHERE id = $1
		RETURNING %s
	`, r.table, readingColumns)

	reading, err := scanReading(r.db.QueryRow(ctx, query, id, patch.Date, patch.Time, payload, r.now()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to update reading: %w", err)
	}
	return reading, nil
}

// Delete removes one reading
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete reading: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMany removes every reading in ids and returns how many went away
func (r *Repository) DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ANY($1::uuid[])`, r.table)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}

	tag, err := r.db.Exec(ctx, query, keys)
	if err != nil {
		return 0, fmt.Errorf("failed to delete readings: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *Repository) queryReadings(ctx context.Context, query string, args ...any) ([]db.Reading, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	defer rows.Close()

	readings := []db.Reading{}
	for rows.Next() {
		reading, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		readings = append(readings, *reading)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return readings, nil
}

func scanReading(row pgx.Row) (*db.Reading, error) {
	var (
		reading db.Reading
		payload []byte
	)
	err := row.Scan(
		&reading.ID,
		&reading.Date,
		&reading.Time,
		&payload,
		&reading.CreatedAt,
		&reading.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	reading.Fields = map[string]float64{}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &reading.Fields); err != nil {
			return nil, fmt.Errorf("failed to decode fields: %w", err)
		}
	}
	return &reading, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
