package messenger

import "context"

// MessageID uniquely identifies a message within a messenger platform.
type MessageID string

// ThreadID uniquely identifies a conversation thread within a messenger platform.
type ThreadID string

// Field is a labelled value rendered as structured detail under an alert.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Messenger abstracts an analyst-facing chat platform.
type Messenger interface {
	// SendMessage posts a text message to a channel and returns its platform message ID.
	SendMessage(ctx context.Context, channelID, text string) (MessageID, error)

	// ReplyInThread posts structured details under a parent message.
	ReplyInThread(ctx context.Context, channelID string, parentID MessageID, text string, fields []Field) (ThreadID, error)

	// Platform returns the messenger platform identifier (e.g. "slack").
	Platform() string
}
