package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"notify-gateway/internal/directory"
	"notify-gateway/internal/directory/metrics"
	"notify-gateway/internal/directory/provider"
	"notify-gateway/internal/domain"
	"notify-gateway/pkg/platform/sentinel"
	"notify-gateway/pkg/requestcontext"
)

// DefaultTimeout bounds a single upstream fetch.
const DefaultTimeout = 10 * time.Second

var tracer = otel.Tracer("notify-gateway/directory")

// FetchError reports an upstream failure. Message is safe to return to
// clients; it carries the upstream error text.
type FetchError struct {
	Category provider.ErrorCategory
	Message  string
	Err      error
}

func (e *FetchError) Error() string {
	return e.Message
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Service fetches the upstream directory and serves the canonical list. It
// keeps no state between calls: every call hits the provider exactly once.
type Service struct {
	provider provider.Provider
	logger   *slog.Logger
	metrics  *metrics.Metrics
	timeout  time.Duration
}

// Option configures the Service.
type Option func(*Service)

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New creates a directory service.
func New(p provider.Provider, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		provider: p,
		logger:   logger,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// FetchDirectory returns the current snapshot or a *FetchError. Partial
// snapshots are never returned for upstream failures; malformed records are
// skipped and logged.
func (s *Service) FetchDirectory(ctx context.Context) ([]domain.Supervisor, error) {
	ctx, span := tracer.Start(ctx, "directory.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("directory.provider", s.provider.ID())),
	)
	defer span.End()

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	records, err := s.provider.Fetch(fetchCtx)
	elapsed := time.Since(start)
	if err != nil {
		fetchErr := toFetchError(err)
		s.metrics.ObserveFetch(string(fetchErr.Category), elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, fetchErr.Message)
		s.logger.ErrorContext(ctx, "directory fetch failed",
			"request_id", requestcontext.RequestID(ctx),
			"provider", s.provider.ID(),
			"category", fetchErr.Category,
			"error", err,
			"duration_ms", elapsed.Milliseconds(),
		)
		return nil, fetchErr
	}
	s.metrics.ObserveFetch("", elapsed)

	supervisors, defects := directory.NormalizeReport(records)
	for _, d := range defects {
		s.metrics.IncrementDefect(string(d.Reason))
		s.logger.WarnContext(ctx, "skipping malformed supervisor record",
			"request_id", requestcontext.RequestID(ctx),
			"index", d.Index,
			"id", d.ID,
			"reason", d.Reason,
			"missing_fields", d.MissingFields,
		)
	}
	s.metrics.SetSnapshotSize(len(supervisors))
	span.SetAttributes(
		attribute.Int("directory.records", len(records)),
		attribute.Int("directory.supervisors", len(supervisors)),
	)

	s.logger.InfoContext(ctx, "directory fetched",
		"request_id", requestcontext.RequestID(ctx),
		"records", len(records),
		"supervisors", len(supervisors),
		"defects", len(defects),
		"duration_ms", elapsed.Milliseconds(),
	)
	return supervisors, nil
}

// Lookup resolves id against a freshly fetched snapshot. An unknown id yields
// an error wrapping sentinel.ErrNotFound.
func (s *Service) Lookup(ctx context.Context, id string) (domain.Supervisor, error) {
	snapshot, err := s.FetchDirectory(ctx)
	if err != nil {
		return domain.Supervisor{}, err
	}
	sup, ok := directory.Find(snapshot, id)
	if !ok {
		return domain.Supervisor{}, fmt.Errorf("supervisor %q: %w", id, sentinel.ErrNotFound)
	}
	return sup, nil
}

func toFetchError(err error) *FetchError {
	message := err.Error()
	var pe *provider.ProviderError
	if errors.As(err, &pe) {
		message = pe.Detail()
	}
	return &FetchError{Category: provider.GetCategory(err), Message: message, Err: err}
}
