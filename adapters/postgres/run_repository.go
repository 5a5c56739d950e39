package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"ecothread/domain/run"
	"ecothread/ports"
)

// Schema holds the DDL for the run-persistence tables
const Schema = `
CREATE TABLE IF NOT EXISTS analysis_runs (
	id                 TEXT PRIMARY KEY,
	seed               BIGINT NOT NULL,
	input_rows         INTEGER NOT NULL,
	duplicates_removed INTEGER NOT NULL,
	output_rows        INTEGER NOT NULL,
	imputed_values     INTEGER NOT NULL,
	outlier_count      INTEGER NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS test_results (
	run_id      TEXT NOT NULL REFERENCES analysis_runs(id) ON DELETE CASCADE,
	name        TEXT NOT NULL,
	statistic   DOUBLE PRECISION NOT NULL,
	p_value     DOUBLE PRECISION NOT NULL,
	effect_size DOUBLE PRECISION NOT NULL,
	detail      TEXT NOT NULL DEFAULT ''
);
`

// runRepository implements the RunRepository interface
type runRepository struct {
	db *sqlx.DB
}

// Connect opens a Postgres-backed run repository and ensures its schema
func Connect(ctx context.Context, url string) (ports.RunRepository, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}
	return &runRepository{db: db}, nil
}

// NewRunRepository creates a run repository over an existing connection
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &runRepository{db: db}
}

// SaveRun inserts the run manifest and its test results in one transaction
func (r *runRepository) SaveRun(ctx context.Context, res *run.Result) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	m := res.Manifest
	_, err = tx.ExecContext(ctx, `INSERT INTO analysis_runs (
		id, seed, input_rows, duplicates_removed, output_rows,
		imputed_values, outlier_count, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID.String(), m.Seed, m.InputRows, m.DuplicatesRemoved, m.OutputRows,
		m.ImputedValues, m.OutlierCount, m.CreatedAt.Time(),
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", m.ID, err)
	}

	for _, t := range res.Tests {
		_, err = tx.ExecContext(ctx, `INSERT INTO test_results (
			run_id, name, statistic, p_value, effect_size, detail
		) VALUES ($1, $2, $3, $4, $5, $6)`,
			m.ID.String(), t.Name, t.Statistic, t.PValue, t.EffectSize, t.Detail,
		)
		if err != nil {
			return fmt.Errorf("inserting test result %q: %w", t.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run %s: %w", m.ID, err)
	}
	return nil
}
