package slack

import (
	"context"
	"fmt"

	slacklib "github.com/slack-go/slack"

	"github.com/gosuda/honeypot/internal/messenger"
)

// SlackAPI abstracts the subset of the Slack client used by SlackMessenger.
type SlackAPI interface {
	PostMessage(channelID string, options ...slacklib.MsgOption) (string, string, error)
}

// SlackMessenger implements messenger.Messenger for Slack.
type SlackMessenger struct {
	api SlackAPI
}

var _ messenger.Messenger = (*SlackMessenger)(nil) //nolint:gochecknoglobals // compile-time check

// NewSlackMessenger creates a SlackMessenger with the given API client.
func NewSlackMessenger(api SlackAPI) *SlackMessenger {
	return &SlackMessenger{api: api}
}

// NewFromToken creates a SlackMessenger backed by the real Slack web API.
func NewFromToken(token string) *SlackMessenger {
	return NewSlackMessenger(slacklib.New(token))
}

// SendMessage posts a text message to a Slack channel and returns the message timestamp as MessageID.
func (m *SlackMessenger) SendMessage(_ context.Context, channelID, text string) (messenger.MessageID, error) {
	_, ts, err := m.api.PostMessage(channelID, slacklib.MsgOptionText(text, false))
	if err != nil {
		return "", fmt.Errorf("slack.SlackMessenger.SendMessage: %w", err)
	}

	return messenger.MessageID(ts), nil
}

// ReplyInThread posts a Block Kit detail message under parentID.
func (m *SlackMessenger) ReplyInThread(_ context.Context, channelID string, parentID messenger.MessageID, text string, fields []messenger.Field) (messenger.ThreadID, error) {
	_, ts, err := m.api.PostMessage(channelID,
		slacklib.MsgOptionTS(string(parentID)),
		slacklib.MsgOptionText(text, false),
		slacklib.MsgOptionBlocks(BuildDetailBlocks(text, fields)...),
	)
	if err != nil {
		return "", fmt.Errorf("slack.SlackMessenger.ReplyInThread: %w", err)
	}

	return messenger.ThreadID(ts), nil
}

// Platform returns the messenger platform identifier.
func (m *SlackMessenger) Platform() string {
	return "slack"
}
