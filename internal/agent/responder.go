package agent

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// MaxReplyLength is the longest reply sent back without shortening.
const MaxReplyLength = 200

// ErrEmptyReply marks a backend answer that carried no text.
var ErrEmptyReply = errors.New("agent: empty reply") //nolint:gochecknoglobals // sentinel error

//nolint:gochecknoglobals // fixed vocabulary
var fallbackReplies = []string{
	"Why is this happening?",
	"Can you explain more?",
	"What do I need to do?",
	"Is this really urgent?",
	"How do I verify this?",
}

// Responder turns a Request into reply text. It never fails: generator
// errors and timeouts are replaced by a canned fallback.
type Responder struct {
	gen     Generator
	timeout time.Duration
}

// NewResponder wraps gen. A zero timeout leaves the caller's deadline in charge.
func NewResponder(gen Generator, timeout time.Duration) *Responder {
	return &Responder{gen: gen, timeout: timeout}
}

// Reply generates the persona's next message.
func (r *Responder) Reply(ctx context.Context, req Request) string {
	ctx, span := otel.Tracer("honeypot/agent").Start(ctx, "agent.Reply")
	defer span.End()
	span.SetAttributes(
		attribute.String("stage", req.Directive.Stage.String()),
		attribute.Int("history_length", req.TotalHistory()),
	)

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	text, err := r.gen.Generate(ctx, BuildPrompt(req))
	if err == nil {
		text = strings.TrimSpace(text)
		if text == "" {
			err = ErrEmptyReply
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		log.Warn().Err(err).Str("stage", req.Directive.Stage.String()).Msg("agent.Responder: generation failed, using fallback")
		return Fallback(req.TotalHistory())
	}

	return Shorten(text)
}

// Fallback picks a canned reply by history length.
func Fallback(historyLength int) string {
	if historyLength < 0 {
		historyLength = 0
	}
	return fallbackReplies[historyLength%len(fallbackReplies)]
}

// Shorten cuts replies longer than MaxReplyLength down to their first two
// "."-separated fragments followed by a period.
func Shorten(text string) string {
	if len(text) <= MaxReplyLength {
		return text
	}
	parts := strings.Split(text, ".")
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.Join(parts, ".") + "."
}
