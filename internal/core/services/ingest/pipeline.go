// Package ingest runs one sensor submission through admission, validation,
// enrichment and persistence.
package ingest

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/realrushil/website/internal/core/domain"
	"github.com/realrushil/website/internal/core/ports"
	"github.com/realrushil/website/internal/logging"
	"github.com/realrushil/website/internal/telemetry"
)

// Outcome is the terminal state of an ingest call.
type Outcome string

const (
	Accepted Outcome = "accepted"
	Rejected Outcome = "rejected"
)

// Reason explains a rejection.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonTooManyRequests Reason = "too_many_requests"
	ReasonInvalidFormat   Reason = "invalid_format"
)

// Result is the response contract handed back to the transport.
type Result struct {
	Outcome Outcome
	Reason  Reason

	// Detail is the validation error for ReasonInvalidFormat.
	Detail *domain.ValidationError

	// Set when accepted
	Reading         domain.Reading
	ServerTimestamp string

	// StorageErr is non-nil when the reading was accepted but could not be
	// persisted. It is for logging only.
	StorageErr error
}

// Policy is the admission window applied per source identity.
type Policy struct {
	MaxRequests int
	Window      time.Duration
}

// DefaultPolicy admits 10 posts per minute per source.
var DefaultPolicy = Policy{MaxRequests: 10, Window: time.Minute}

// Estimator is the slice of the occupancy estimator the pipeline reports on.
type Estimator interface {
	Estimate(latest *domain.Reading) domain.OccupancyView
}

// Pipeline implements the ingest state machine. It holds no state of its own.
type Pipeline struct {
	limiter   ports.Limiter
	store     ports.ProbeStore
	policy    Policy
	notifier  ports.ReadingNotifier
	estimator Estimator
	now       func() time.Time
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithPolicy overrides DefaultPolicy.
func WithPolicy(p Policy) Option {
	return func(pl *Pipeline) { pl.policy = p }
}

// WithNotifier sends every accepted reading to n after persistence.
func WithNotifier(n ports.ReadingNotifier) Option {
	return func(pl *Pipeline) { pl.notifier = n }
}

// WithEstimator updates occupancy gauges on every accepted reading.
func WithEstimator(e Estimator) Option {
	return func(pl *Pipeline) { pl.estimator = e }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(pl *Pipeline) { pl.now = now }
}

// NewPipeline creates a pipeline over limiter and store.
func NewPipeline(limiter ports.Limiter, store ports.ProbeStore, opts ...Option) *Pipeline {
	p := &Pipeline{
		limiter: limiter,
		store:   store,
		policy:  DefaultPolicy,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Policy returns the admission window in effect.
func (p *Pipeline) Policy() Policy { return p.policy }

// Ingest runs raw through the state machine. decodeErr carries a body parse
// failure and is reported as invalid format after the rate check.
func (p *Pipeline) Ingest(ctx context.Context, raw domain.RawPayload, decodeErr error, source string) Result {
	ctx, span := otel.Tracer("ingest").Start(ctx, "Pipeline.Ingest",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("probe.source", source)),
	)
	defer span.End()

	log := logging.Ctx(ctx)

	// RateCheck
	if !p.limiter.Admit(source, p.policy.MaxRequests, p.policy.Window) {
		telemetry.IngestTotal.WithLabelValues(string(Rejected), string(ReasonTooManyRequests)).Inc()
		span.SetAttributes(attribute.String("probe.outcome", "rate_limited"))
		log.Warn().Str("source", source).Msg("ingest rate limit exceeded")
		return Result{Outcome: Rejected, Reason: ReasonTooManyRequests}
	}

	// Validate
	reading, err := validate(raw, decodeErr)
	if err != nil {
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			verr = &domain.ValidationError{Kind: domain.MalformedPayload, Message: err.Error()}
		}
		telemetry.IngestTotal.WithLabelValues(string(Rejected), string(ReasonInvalidFormat)).Inc()
		span.SetAttributes(attribute.String("probe.outcome", "invalid"), attribute.String("probe.invalid_kind", string(verr.Kind)))
		log.Warn().Str("source", source).Str("kind", string(verr.Kind)).Str("field", verr.Field).Msg("invalid telemetry payload")
		return Result{Outcome: Rejected, Reason: ReasonInvalidFormat, Detail: verr}
	}

	// Enrich
	reading = reading.Enrich(p.now(), source)
	span.SetAttributes(
		attribute.String("probe.device_id", reading.DeviceID),
		attribute.Int("probe.ssids", len(reading.SSIDCounts)),
		attribute.Int("probe.total_devices", reading.TotalDevices()),
	)

	// Persist; failure does not abort
	storageErr := p.store.Record(ctx, reading)
	if storageErr != nil {
		span.RecordError(storageErr)
		span.SetStatus(codes.Error, "store record failed")
		log.Warn().Err(storageErr).Str("device_id", reading.DeviceID).Msg("reading accepted but not persisted")
	}

	telemetry.IngestTotal.WithLabelValues(string(Accepted), string(ReasonNone)).Inc()
	telemetry.DevicesObserved.Set(float64(reading.TotalDevices()))
	if p.estimator != nil {
		telemetry.EstimatedPeople.Set(float64(p.estimator.Estimate(&reading).EstimatedPeople))
	}
	if p.notifier != nil {
		p.notifier.NotifyReading(ctx, reading)
	}

	log.Info().
		Str("device_id", reading.DeviceID).
		Int("ssids", len(reading.SSIDCounts)).
		Int("total_devices", reading.TotalDevices()).
		Bool("persisted", storageErr == nil).
		Msg("reading accepted")

	return Result{
		Outcome:         Accepted,
		Reading:         reading,
		ServerTimestamp: reading.ServerTimestamp,
		StorageErr:      storageErr,
	}
}

// IngestBody is Ingest for an undecoded request body.
func (p *Pipeline) IngestBody(ctx context.Context, body []byte, source string) Result {
	raw, err := domain.DecodePayload(body)
	return p.Ingest(ctx, raw, err, source)
}

func validate(raw domain.RawPayload, decodeErr error) (domain.Reading, error) {
	if decodeErr != nil {
		return domain.Reading{}, decodeErr
	}
	return domain.ValidatePayload(raw)
}
