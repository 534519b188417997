package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/gosuda/honeypot/internal/domain"
)

// Alerter is told about every dispatched report.
type Alerter interface {
	ReportDispatched(ctx context.Context, rep *domain.Report, delivered bool) error
}

// Dispatcher makes a single delivery attempt, then archives the outcome and
// alerts analysts. Nothing after the attempt can fail the dispatch.
type Dispatcher struct {
	deliverer Deliverer
	archive   domain.ReportArchive
	alerter   Alerter
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithArchive records each attempt in archive.
func WithArchive(archive domain.ReportArchive) Option {
	return func(d *Dispatcher) { d.archive = archive }
}

// WithAlerter notifies alerter after each attempt.
func WithAlerter(alerter Alerter) Option {
	return func(d *Dispatcher) { d.alerter = alerter }
}

func NewDispatcher(deliverer Deliverer, opts ...Option) *Dispatcher {
	d := &Dispatcher{deliverer: deliverer}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch delivers rep once and reports whether the evaluator accepted it.
// Failures are logged and never retried.
func (d *Dispatcher) Dispatch(ctx context.Context, rep *domain.Report) bool {
	ctx, span := otel.Tracer("honeypot/report").Start(ctx, "report.Dispatch")
	defer span.End()
	span.SetAttributes(attribute.String("session_id", rep.SessionID))

	rec := &domain.ReportRecord{
		ID:        uuid.New(),
		Report:    *rep,
		CreatedAt: time.Now().UTC(),
	}

	err := d.deliverer.Deliver(ctx, rep)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delivery failed")
		rec.DeliveryError = err.Error()
		log.Error().Err(err).Str("session_id", rep.SessionID).Msg("report: delivery failed")
	} else {
		rec.Delivered = true
		log.Info().
			Str("session_id", rep.SessionID).
			Int("messages", rep.TotalMessagesExchanged).
			Int("identifiers", rep.ExtractedIntelligence.IdentifierCount()).
			Msg("report: delivered")
	}

	if d.archive != nil {
		if archErr := d.archive.Record(ctx, rec); archErr != nil {
			log.Error().Err(archErr).Str("session_id", rep.SessionID).Msg("report: archive failed")
		}
	}

	if d.alerter != nil {
		if alertErr := d.alerter.ReportDispatched(ctx, rep, rec.Delivered); alertErr != nil {
			log.Warn().Err(alertErr).Str("session_id", rep.SessionID).Msg("report: analyst alert failed")
		}
	}

	return rec.Delivered
}
