package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Report is the consolidated finding delivered to the external evaluator.
type Report struct {
	SessionID              string       `json:"sessionId"`
	ScamDetected           bool         `json:"scamDetected"`
	TotalMessagesExchanged int          `json:"totalMessagesExchanged"`
	ExtractedIntelligence  Intelligence `json:"extractedIntelligence"`
	AgentNotes             string       `json:"agentNotes"`
}

// ReportRecord is an archived delivery attempt.
type ReportRecord struct {
	ID            uuid.UUID
	Report        Report
	Delivered     bool
	DeliveryError string
	CreatedAt     time.Time
}

// ReportArchive keeps an audit copy of every delivery attempt.
type ReportArchive interface {
	Record(ctx context.Context, rec *ReportRecord) error
	ListBySession(ctx context.Context, sessionID string) ([]*ReportRecord, error)
}
