// Package honeypot runs one conversation turn end to end: scoring,
// extraction, persona reply, and the one-shot final report.
package honeypot

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/gosuda/honeypot/internal/agent"
	"github.com/gosuda/honeypot/internal/detect"
	"github.com/gosuda/honeypot/internal/domain"
	"github.com/gosuda/honeypot/internal/intel"
)

// NeutralReply is sent while a session is not yet confirmed as a scam.
const NeutralReply = "I'm not sure I understand. Can you explain more?"

const (
	defaultMinMessages    = 3
	defaultMinIdentifiers = 1
	defaultMaxAge         = 24 * time.Hour
	defaultEvictEvery     = 10
	agentReplyOffsetMs    = 1000
)

// Metadata describes the inbound channel. It is logged, never interpreted.
type Metadata struct {
	Channel  string
	Language string
	Locale   string
}

// Turn is one inbound counterparty message plus the caller's view of the
// conversation before it.
type Turn struct {
	SessionID string
	Message   domain.Message
	History   []domain.Message
	Metadata  Metadata
}

// Replier produces the persona's reply. It must not fail.
type Replier interface {
	Reply(ctx context.Context, req agent.Request) string
}

// Dispatcher makes the single delivery attempt for a final report.
type Dispatcher interface {
	Dispatch(ctx context.Context, rep *domain.Report) bool
}

// SessionLocker serializes turns for one session across processes sharing
// a store. The returned func releases the lock.
type SessionLocker interface {
	Lock(ctx context.Context, sessionID string) (func(), error)
}

// Engine processes turns. It is safe for concurrent use; turns for the same
// session run one at a time.
type Engine struct {
	sessions   domain.SessionRepository
	scorer     *detect.Scorer
	extractor  *intel.Extractor
	replier    Replier
	dispatcher Dispatcher
	locks      *keyedMutex
	shared     SessionLocker

	minMessages    int
	minIdentifiers int
	maxAge         time.Duration
	evictEvery     int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxAge sets how long an idle session survives eviction sweeps.
func WithMaxAge(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.maxAge = d
		}
	}
}

// WithReportThresholds sets the evidence needed before the final report fires.
func WithReportThresholds(minMessages, minIdentifiers int) Option {
	return func(e *Engine) {
		e.minMessages = minMessages
		e.minIdentifiers = minIdentifiers
	}
}

// WithSessionLocker adds a cross-process lock taken after the in-process one.
// Use it whenever several instances share the session store.
func WithSessionLocker(l SessionLocker) Option {
	return func(e *Engine) { e.shared = l }
}

// New builds an Engine over the given store and collaborators.
func New(
	sessions domain.SessionRepository,
	scorer *detect.Scorer,
	extractor *intel.Extractor,
	replier Replier,
	dispatcher Dispatcher,
	opts ...Option,
) *Engine {
	e := &Engine{
		sessions:       sessions,
		scorer:         scorer,
		extractor:      extractor,
		replier:        replier,
		dispatcher:     dispatcher,
		locks:          newKeyedMutex(),
		minMessages:    defaultMinMessages,
		minIdentifiers: defaultMinIdentifiers,
		maxAge:         defaultMaxAge,
		evictEvery:     defaultEvictEvery,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Process handles one inbound message and returns the reply to send back.
// A store error aborts the turn before anything is persisted.
func (e *Engine) Process(ctx context.Context, turn Turn) (string, error) {
	ctx, span := otel.Tracer("honeypot/engine").Start(ctx, "honeypot.Process")
	defer span.End()
	span.SetAttributes(attribute.String("session_id", turn.SessionID))

	unlock := e.locks.Lock(turn.SessionID)
	defer unlock()

	if e.shared != nil {
		release, err := e.shared.Lock(ctx, turn.SessionID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "lock session")
			return "", fmt.Errorf("honeypot.Engine.Process: lock: %w", err)
		}
		defer release()
	}

	logger := log.With().Str("session_id", turn.SessionID).Logger()
	logger.Debug().
		Str("channel", turn.Metadata.Channel).
		Str("language", turn.Metadata.Language).
		Str("locale", turn.Metadata.Locale).
		Int("history", len(turn.History)).
		Msg("honeypot: turn received")

	sess, err := e.sessions.GetOrCreate(ctx, turn.SessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load session")
		return "", fmt.Errorf("honeypot.Engine.Process: load: %w", err)
	}

	sess.AddMessage(turn.Message)

	verdict := e.scorer.Score(turn.Message.Text)
	newlyConfirmed := false
	if verdict.IsScam {
		newlyConfirmed = sess.Confirm(verdict.Confidence, "Scam detected: "+verdict.Reason())
		if newlyConfirmed {
			logger.Info().
				Float64("confidence", verdict.Confidence).
				Str("reason", verdict.Reason()).
				Msg("honeypot: scam confirmed")
		}
	}

	e.extractor.Extract(turn.Message.Text, &sess.Intelligence)

	if newlyConfirmed && len(turn.History) > 0 {
		conversation := make([]domain.Message, 0, len(turn.History)+1)
		conversation = append(conversation, turn.History...)
		conversation = append(conversation, turn.Message)
		sess.Intelligence.Merge(*e.extractor.ExtractConversation(conversation))
	}

	reply := NeutralReply
	if sess.ScamDetected {
		directive := agent.StageFor(len(turn.History))
		reply = e.replier.Reply(ctx, agent.Request{
			Directive:     directive,
			History:       agent.RecentHistory(turn.History),
			HistoryLength: len(turn.History),
			Latest:        turn.Message.Text,
		})
		sess.AddMessage(domain.Message{
			Sender:    domain.SenderAgent,
			Text:      reply,
			Timestamp: turn.Message.Timestamp + agentReplyOffsetMs,
		})
	}

	var rep *domain.Report
	if sess.ReadyToReport(e.minMessages, e.minIdentifiers) {
		rep = sess.Report()
		sess.MarkReported()
	}

	if err := e.sessions.Save(ctx, sess); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save session")
		return "", fmt.Errorf("honeypot.Engine.Process: save: %w", err)
	}

	span.SetAttributes(
		attribute.Bool("scam_detected", sess.ScamDetected),
		attribute.Int("message_count", sess.MessageCount),
		attribute.Bool("report_triggered", rep != nil),
	)

	if rep != nil {
		logger.Info().
			Int("messages", rep.TotalMessagesExchanged).
			Int("identifiers", rep.ExtractedIntelligence.IdentifierCount()).
			Msg("honeypot: dispatching final report")
		e.dispatcher.Dispatch(context.WithoutCancel(ctx), rep)
	}

	if e.evictEvery > 0 && sess.MessageCount%e.evictEvery == 0 {
		removed, err := e.sessions.EvictOlderThan(ctx, e.maxAge)
		if err != nil {
			logger.Warn().Err(err).Msg("honeypot: eviction sweep failed")
		} else if removed > 0 {
			logger.Info().Int("removed", removed).Msg("honeypot: evicted idle sessions")
		}
	}

	return reply, nil
}

// ActiveSessions reports how many sessions the store currently holds.
func (e *Engine) ActiveSessions(ctx context.Context) (int, error) {
	n, err := e.sessions.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("honeypot.Engine.ActiveSessions: %w", err)
	}
	return n, nil
}

// Analysis is the offline view of a single message.
type Analysis struct {
	Verdict      detect.Verdict      `json:"verdict"`
	Intelligence domain.Intelligence `json:"intelligence"`
}

// Analyze scores and extracts from text without touching any session.
func (e *Engine) Analyze(text string) Analysis {
	return Analysis{
		Verdict:      e.scorer.Score(text),
		Intelligence: e.extractor.Extract(text, nil).Clone(),
	}
}
