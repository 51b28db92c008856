// Package postgres persists newly discovered jobs in a relational table.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/honeycarbs/listing-watch/internal/domain"
)

var schema = []string{`
CREATE TABLE IF NOT EXISTS jobs (
	id            UUID PRIMARY KEY,
	title         TEXT NOT NULL,
	href          TEXT NOT NULL,
	domain        TEXT NOT NULL DEFAULT '',
	grade         TEXT NOT NULL DEFAULT '',
	institution   TEXT NOT NULL DEFAULT '',
	location      TEXT NOT NULL DEFAULT '',
	deadline      TEXT NOT NULL DEFAULT '',
	position_type TEXT NOT NULL DEFAULT '',
	listing_code  TEXT NOT NULL,
	run_id        UUID NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE INDEX IF NOT EXISTS jobs_listing_code_idx ON jobs (listing_code, created_at DESC)`,
}

const insertJob = `
INSERT INTO jobs (id, title, href, domain, grade, institution, location, deadline, position_type, listing_code, run_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (id) DO NOTHING`

// Repository stores jobs through a pgx pool
type Repository struct {
	db *pgxpool.Pool
}

// Connect opens a pool for connString and checks it is reachable
func Connect(ctx context.Context, connString string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse database url: %w", err)
	}

	config.MaxConns = 4
	config.MaxConnLifetime = time.Hour
	// pooled endpoints such as PgBouncer in transaction mode reject prepared statements
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: database unreachable: %w", err)
	}

	return &Repository{db: pool}, nil
}

func (r *Repository) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

// EnsureSchema creates the jobs table if it does not exist
func (r *Repository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: ensure schema: %w", err)
		}
	}
	return nil
}

// SaveJobs inserts all jobs in one transaction
func (r *Repository) SaveJobs(ctx context.Context, jobs []domain.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	batch := &pgx.Batch{}
	for _, j := range jobs {
		batch.Queue(insertJob, jobArgs(j)...)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("postgres: insert jobs: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

// CountByListing returns how many jobs were stored for a listing
func (r *Repository) CountByListing(ctx context.Context, code string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM jobs WHERE listing_code = $1`, code).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("postgres: count jobs: %w", err)
	}
	return n, nil
}

func jobArgs(j domain.Job) []any {
	return []any{
		j.ID.String(),
		j.Title,
		j.Href,
		j.Domain,
		j.Grade,
		j.Institution,
		j.Location,
		j.Deadline,
		string(j.PositionType),
		j.ListingCode,
		j.RunID.String(),
		j.CreatedAt,
	}
}
