// Package postgres archives delivered reports in PostgreSQL.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/honeypot/internal/domain"
)

const schema = `CREATE TABLE IF NOT EXISTS report_records (
	id             UUID PRIMARY KEY,
	session_id     TEXT NOT NULL,
	scam_detected  BOOLEAN NOT NULL,
	total_messages INTEGER NOT NULL,
	intelligence   JSONB NOT NULL,
	agent_notes    TEXT NOT NULL,
	delivered      BOOLEAN NOT NULL,
	delivery_error TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_report_records_session ON report_records (session_id, created_at);`

type Store struct {
	pool    *pgxpool.Pool
	reports *ReportRepo
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return &Store{
		pool:    pool,
		reports: NewReportRepo(pool),
	}, nil
}

// Migrate creates the archive tables if they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres.Store.Migrate: %w", err)
	}
	return nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Reports() domain.ReportArchive { return s.reports }
