// Package sqlite archives delivered reports in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/gosuda/honeypot/internal/domain"
)

const schema = `CREATE TABLE IF NOT EXISTS report_records (
	id             TEXT PRIMARY KEY,
	session_id     TEXT NOT NULL,
	scam_detected  INTEGER NOT NULL,
	total_messages INTEGER NOT NULL,
	intelligence   TEXT NOT NULL,
	agent_notes    TEXT NOT NULL,
	delivered      INTEGER NOT NULL,
	delivery_error TEXT NOT NULL DEFAULT '',
	created_at     DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_report_records_session ON report_records (session_id, created_at);`

// ReportArchive implements domain.ReportArchive on SQLite.
type ReportArchive struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
// Pass ":memory:" for an in-memory database.
func Open(path string) (*ReportArchive, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite.Open: create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.Open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.Open: ping: %w", err)
	}

	// A single connection avoids "database is locked" and keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA busy_timeout = 5000", "PRAGMA journal_mode=WAL"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite.Open: %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.Open: apply schema: %w", err)
	}

	return &ReportArchive{db: db}, nil
}

func (a *ReportArchive) Close() error {
	return a.db.Close()
}

func (a *ReportArchive) Record(ctx context.Context, rec *domain.ReportRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	intel, err := json.Marshal(rec.Report.ExtractedIntelligence)
	if err != nil {
		return fmt.Errorf("sqlite.ReportArchive.Record: encode intelligence: %w", err)
	}

	_, err = a.db.ExecContext(ctx,
		`INSERT INTO report_records
		 (id, session_id, scam_detected, total_messages, intelligence, agent_notes, delivered, delivery_error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.Report.SessionID, rec.Report.ScamDetected, rec.Report.TotalMessagesExchanged,
		string(intel), rec.Report.AgentNotes, rec.Delivered, rec.DeliveryError, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite.ReportArchive.Record: %w", err)
	}

	return nil
}

func (a *ReportArchive) ListBySession(ctx context.Context, sessionID string) ([]*domain.ReportRecord, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, session_id, scam_detected, total_messages, intelligence, agent_notes, delivered, delivery_error, created_at
		 FROM report_records WHERE session_id = ?
		 ORDER BY created_at ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite.ReportArchive.ListBySession: %w", err)
	}
	defer rows.Close()

	var records []*domain.ReportRecord
	for rows.Next() {
		var (
			rec   domain.ReportRecord
			id    string
			intel string
		)
		err = rows.Scan(&id, &rec.Report.SessionID, &rec.Report.ScamDetected, &rec.Report.TotalMessagesExchanged,
			&intel, &rec.Report.AgentNotes, &rec.Delivered, &rec.DeliveryError, &rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("sqlite.ReportArchive.ListBySession: scan: %w", err)
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("sqlite.ReportArchive.ListBySession: parse id: %w", err)
		}
		if err = json.Unmarshal([]byte(intel), &rec.Report.ExtractedIntelligence); err != nil {
			return nil, fmt.Errorf("sqlite.ReportArchive.ListBySession: decode intelligence: %w", err)
		}
		records = append(records, &rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite.ReportArchive.ListBySession: rows: %w", err)
	}

	return records, nil
}
