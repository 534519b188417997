// Package notify alerts analysts when a session's findings are dispatched.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/honeypot/internal/domain"
	"github.com/gosuda/honeypot/internal/messenger"
)

// ErrPlatformNotFound is returned when a messenger platform is not registered.
var ErrPlatformNotFound = errors.New("notify: platform not found") //nolint:gochecknoglobals // sentinel error

// MessengerRegistry maps platform names to Messenger implementations.
type MessengerRegistry interface {
	Get(platform string) (messenger.Messenger, bool)
}

// Target is a channel on a messenger platform that receives alerts.
type Target struct {
	Platform  string
	ChannelID string
}

// Notifier posts report alerts to every configured target.
type Notifier struct {
	messengers MessengerRegistry
	targets    []Target
}

// New creates a Notifier that alerts the given targets.
func New(messengers MessengerRegistry, targets ...Target) *Notifier {
	return &Notifier{
		messengers: messengers,
		targets:    targets,
	}
}

// ReportDispatched posts a summary line for the report and threads the
// extracted identifiers underneath it. Every target is attempted.
func (n *Notifier) ReportDispatched(ctx context.Context, rep *domain.Report, delivered bool) error {
	if len(n.targets) == 0 {
		log.Debug().Str("session_id", rep.SessionID).Msg("notify: no alert targets configured")
		return nil
	}

	summary := Summary(rep, delivered)
	fields := Fields(rep)

	var errs []error
	for _, target := range n.targets {
		if err := n.sendTo(ctx, target, summary, fields); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("notify.Notifier.ReportDispatched: %w", err)
	}
	return nil
}

func (n *Notifier) sendTo(ctx context.Context, target Target, summary string, fields []messenger.Field) error {
	msg, ok := n.messengers.Get(target.Platform)
	if !ok {
		return fmt.Errorf("platform %q: %w", target.Platform, ErrPlatformNotFound)
	}

	parent, err := msg.SendMessage(ctx, target.ChannelID, summary)
	if err != nil {
		return fmt.Errorf("send summary to %s: %w", target.Platform, err)
	}

	if _, err := msg.ReplyInThread(ctx, target.ChannelID, parent, "Extracted intelligence", fields); err != nil {
		return fmt.Errorf("send details to %s: %w", target.Platform, err)
	}
	return nil
}

// Summary renders the one-line alert text.
func Summary(rep *domain.Report, delivered bool) string {
	status := "delivered"
	if !delivered {
		status = "delivery failed"
	}
	return fmt.Sprintf("Scam session *%s* reported (%s): %d messages, %d identifiers. %s",
		rep.SessionID, status, rep.TotalMessagesExchanged,
		rep.ExtractedIntelligence.IdentifierCount(), rep.AgentNotes)
}

// Fields renders the non-empty intelligence lists.
func Fields(rep *domain.Report) []messenger.Field {
	intel := rep.ExtractedIntelligence
	lists := []struct {
		label  string
		values []string
	}{
		{"Bank accounts", intel.BankAccounts},
		{"UPI IDs", intel.UPIIDs},
		{"Phishing links", intel.PhishingLinks},
		{"Phone numbers", intel.PhoneNumbers},
		{"Keywords", intel.SuspiciousKeywords},
	}

	fields := make([]messenger.Field, 0, len(lists))
	for _, l := range lists {
		if len(l.values) == 0 {
			continue
		}
		fields = append(fields, messenger.Field{
			Label: l.label + " (" + strconv.Itoa(len(l.values)) + ")",
			Value: strings.Join(l.values, ", "),
		})
	}
	return fields
}
