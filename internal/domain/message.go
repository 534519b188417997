package domain

import (
	"fmt"
	"strings"
)

// Sender identifies who authored a message. The wire values follow the
// evaluator's vocabulary: the counterparty is "scammer", the agent is "user".
type Sender string

const (
	SenderCounterparty Sender = "scammer"
	SenderAgent        Sender = "user"
)

// ParseSender maps a wire sender value onto the canonical Sender.
// "counterparty" and "agent" are accepted as aliases.
func ParseSender(raw string) (Sender, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "scammer", "counterparty":
		return SenderCounterparty, nil
	case "user", "agent":
		return SenderAgent, nil
	default:
		return "", fmt.Errorf("domain.ParseSender(%q): %w", raw, ErrInvalidSender)
	}
}

// Message is a single conversation turn. Timestamps are echoed from the
// caller and are advisory; ordering is by arrival.
type Message struct {
	Sender    Sender `json:"sender"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds
}

// FromCounterparty reports whether the message was sent by the suspected scammer.
func (m Message) FromCounterparty() bool {
	return m.Sender == SenderCounterparty
}
