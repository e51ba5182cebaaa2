package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"notify-gateway/internal/domain"
	"notify-gateway/internal/notification/metrics"
	"notify-gateway/internal/notification/schema"
	"notify-gateway/internal/notification/sink"
	dErrors "notify-gateway/pkg/domain-errors"
	"notify-gateway/pkg/platform/sentinel"
	"notify-gateway/pkg/requestcontext"
)

var tracer = otel.Tracer("notify-gateway/notification")

// Resolver maps a supervisor id to the canonical supervisor in the current
// directory snapshot. It returns an error wrapping sentinel.ErrNotFound for
// unknown ids.
type Resolver interface {
	Lookup(ctx context.Context, id string) (domain.Supervisor, error)
}

// Service validates submissions and hands accepted ones to a sink.
type Service struct {
	sink     sink.Sink
	resolver Resolver
	logger   *slog.Logger
	metrics  *metrics.Metrics
	newID    func() string
}

// Option configures the Service.
type Option func(*Service)

// WithResolver enables server-side re-resolution of the submitted supervisor.
func WithResolver(r Resolver) Option {
	return func(s *Service) {
		s.resolver = r
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithIDGenerator overrides the delivery id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		s.newID = fn
	}
}

// New creates a submission service.
func New(snk sink.Sink, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		sink:   snk,
		logger: logger,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Submit validates req, re-resolves its supervisor when a resolver is set,
// delivers it and returns the fixed acknowledgment.
//
// Errors:
//   - *schema.ValidationError for invalid input or an unknown supervisor id
//   - the resolver's error (a directory fetch error) when resolution fails upstream
//   - a CodeInternal domain error when the sink fails
func (s *Service) Submit(ctx context.Context, req domain.NotificationRequest) (domain.Acknowledgment, error) {
	ctx, span := tracer.Start(ctx, "notification.submit", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	if err := schema.Validate(req); err != nil {
		s.metrics.IncrementOutcome(metrics.OutcomeInvalid)
		span.SetStatus(codes.Error, "invalid request")
		return domain.Acknowledgment{}, err
	}
	span.SetAttributes(attribute.String("notification.supervisor_id", req.Supervisor.ID))

	if s.resolver != nil {
		canonical, err := s.resolve(ctx, *req.Supervisor)
		if err != nil {
			s.metrics.IncrementOutcome(metrics.OutcomeUnresolved)
			span.RecordError(err)
			span.SetStatus(codes.Error, "supervisor not resolved")
			return domain.Acknowledgment{}, err
		}
		req.Supervisor = &canonical
	}

	delivery := domain.Delivery{
		ID:         s.newID(),
		ReceivedAt: requestcontext.Now(ctx),
		Request:    req,
	}

	start := time.Now()
	err := s.sink.Deliver(ctx, delivery)
	s.metrics.ObserveDelivery(time.Since(start))
	if err != nil {
		s.metrics.IncrementOutcome(metrics.OutcomeFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, "delivery failed")
		s.logger.ErrorContext(ctx, "notification delivery failed",
			"request_id", requestcontext.RequestID(ctx),
			"delivery_id", delivery.ID,
			"error", err,
		)
		return domain.Acknowledgment{}, dErrors.Wrap(err, dErrors.CodeInternal, "notification delivery failed")
	}

	s.metrics.IncrementOutcome(metrics.OutcomeAccepted)
	return domain.NewAcknowledgment(), nil
}

func (s *Service) resolve(ctx context.Context, submitted domain.Supervisor) (domain.Supervisor, error) {
	canonical, err := s.resolver.Lookup(ctx, submitted.ID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return domain.Supervisor{}, &schema.ValidationError{
			Field:   "supervisor.id",
			Rule:    "known",
			Message: `"supervisor.id" does not reference a known supervisor`,
		}
	}
	if err != nil {
		return domain.Supervisor{}, err
	}
	if canonical != submitted {
		s.logger.WarnContext(ctx, "submitted supervisor differs from directory",
			"request_id", requestcontext.RequestID(ctx),
			"supervisor_id", submitted.ID,
		)
	}
	return canonical, nil
}
