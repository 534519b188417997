package domain

import (
	"context"
	"strings"
	"time"
)

// Session is the engagement state of one conversation with a counterparty.
//
// ScamDetected and CallbackSent are monotonic: once set they are never cleared.
// MessageCount always equals the number of messages appended with AddMessage.
type Session struct {
	ID             string       `json:"id"`
	Messages       []Message    `json:"messages"`
	ScamDetected   bool         `json:"scamDetected"`
	ScamConfidence float64      `json:"scamConfidence"`
	Intelligence   Intelligence `json:"intelligence"`
	AgentNotes     []string     `json:"agentNotes"`
	MessageCount   int          `json:"messageCount"`
	CallbackSent   bool         `json:"callbackSent"`
	CreatedAt      time.Time    `json:"createdAt"`
	LastUpdatedAt  time.Time    `json:"lastUpdatedAt"`
}

// NewSession returns an empty, unconfirmed session.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:            id,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}
}

// AddMessage appends a turn to the history and bumps the message count.
func (s *Session) AddMessage(m Message) {
	s.Messages = append(s.Messages, m)
	s.MessageCount++
	s.touch()
}

// Confirm marks the session as a confirmed scam. It returns false and leaves
// the session untouched when the session was already confirmed.
func (s *Session) Confirm(confidence float64, note string) bool {
	if s.ScamDetected {
		return false
	}
	s.ScamDetected = true
	s.ScamConfidence = confidence
	if note != "" {
		s.AgentNotes = append(s.AgentNotes, note)
	}
	s.touch()
	return true
}

// AddNote appends an entry to the audit trail.
func (s *Session) AddNote(note string) {
	s.AgentNotes = append(s.AgentNotes, note)
	s.touch()
}

// ReadyToReport reports whether the final result should be delivered now.
func (s *Session) ReadyToReport(minMessages, minIdentifiers int) bool {
	return s.ScamDetected &&
		!s.CallbackSent &&
		s.MessageCount >= minMessages &&
		s.Intelligence.IdentifierCount() >= minIdentifiers
}

// MarkReported records that delivery was attempted. It is never undone.
func (s *Session) MarkReported() {
	s.CallbackSent = true
	s.touch()
}

// ConsolidatedNotes joins the audit trail into a single line.
func (s *Session) ConsolidatedNotes() string {
	return strings.Join(s.AgentNotes, " | ")
}

// Report builds the final result payload from the current state.
func (s *Session) Report() *Report {
	return &Report{
		SessionID:              s.ID,
		ScamDetected:           s.ScamDetected,
		TotalMessagesExchanged: s.MessageCount,
		ExtractedIntelligence:  s.Intelligence.Clone(),
		AgentNotes:             s.ConsolidatedNotes(),
	}
}

// Clone returns a deep copy so stores never share mutable state with callers.
func (s *Session) Clone() *Session {
	c := *s
	c.Messages = make([]Message, len(s.Messages))
	copy(c.Messages, s.Messages)
	c.AgentNotes = cloneList(s.AgentNotes)
	c.Intelligence = s.Intelligence.Clone()
	return &c
}

func (s *Session) touch() {
	s.LastUpdatedAt = time.Now()
}

// SessionRepository owns all sessions. Every method is atomic on its own;
// callers serialize read-modify-write cycles per session ID.
type SessionRepository interface {
	// GetOrCreate returns a copy of the stored session, or a new unsaved one.
	GetOrCreate(ctx context.Context, id string) (*Session, error)
	// Save upserts the session.
	Save(ctx context.Context, s *Session) error
	Count(ctx context.Context) (int, error)
	// EvictOlderThan removes sessions idle for longer than maxAge and
	// returns how many were removed.
	EvictOlderThan(ctx context.Context, maxAge time.Duration) (int, error)
}
