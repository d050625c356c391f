package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/septivank/solar-telemetry-ingest/internal/domain"
)

// Execer is the subset of a pool or transaction needed to run DDL
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const readingsTableDDL = `
	CREATE TABLE IF NOT EXISTS %[1]s (
		id         uuid PRIMARY KEY,
		date       text NOT NULL,
		time       text NOT NULL,
		fields     jsonb NOT NULL DEFAULT '{}'::jsonb,
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now(),
		CONSTRAINT %[1]s_date_time_key UNIQUE (date, time)
	)
`

// TableName returns the readings table of a domain
func TableName(name domain.Name) string {
	return string(name) + "_readings"
}

// Migrate creates the readings table of every domain when missing
func Migrate(ctx context.Context, db Execer) error {
	for _, rules := range domain.All() {
		table := TableName(rules.Name)
		if _, err := db.Exec(ctx, fmt.Sprintf(readingsTableDDL, table)); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}
