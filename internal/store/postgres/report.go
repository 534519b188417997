package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/honeypot/internal/domain"
)

type ReportRepo struct {
	pool *pgxpool.Pool
}

func NewReportRepo(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

func (r *ReportRepo) Record(ctx context.Context, rec *domain.ReportRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO report_records
		 (id, session_id, scam_detected, total_messages, intelligence, agent_notes, delivered, delivery_error, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.ID, rec.Report.SessionID, rec.Report.ScamDetected, rec.Report.TotalMessagesExchanged,
		rec.Report.ExtractedIntelligence, rec.Report.AgentNotes, rec.Delivered, rec.DeliveryError, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("reportRepo.Record: %w", err)
	}

	return nil
}

func (r *ReportRepo) ListBySession(ctx context.Context, sessionID string) ([]*domain.ReportRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, scam_detected, total_messages, intelligence, agent_notes, delivered, delivery_error, created_at
		 FROM report_records WHERE session_id = $1
		 ORDER BY created_at ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("reportRepo.ListBySession: %w", err)
	}
	defer rows.Close()

	var records []*domain.ReportRecord
	for rows.Next() {
		var rec domain.ReportRecord

		err = rows.Scan(&rec.ID, &rec.Report.SessionID, &rec.Report.ScamDetected, &rec.Report.TotalMessagesExchanged,
			&rec.Report.ExtractedIntelligence, &rec.Report.AgentNotes, &rec.Delivered, &rec.DeliveryError, &rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("reportRepo.ListBySession: scan: %w", err)
		}
		records = append(records, &rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("reportRepo.ListBySession: rows: %w", err)
	}

	return records, nil
}
