package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dirservice "notify-gateway/internal/directory/service"
	"notify-gateway/internal/directory/provider"
	"notify-gateway/internal/domain"
	"notify-gateway/internal/notification/metrics"
	"notify-gateway/internal/notification/schema"
	dErrors "notify-gateway/pkg/domain-errors"
	"notify-gateway/pkg/platform/sentinel"
	"notify-gateway/pkg/requestcontext"
)

type recordingSink struct {
	deliveries []domain.Delivery
	err        error
}

func (s *recordingSink) Deliver(_ context.Context, d domain.Delivery) error {
	if s.err != nil {
		return s.err
	}
	s.deliveries = append(s.deliveries, d)
	return nil
}

type mapResolver struct {
	supervisors map[string]domain.Supervisor
	err         error
}

func (r mapResolver) Lookup(_ context.Context, id string) (domain.Supervisor, error) {
	if r.err != nil {
		return domain.Supervisor{}, r.err
	}
	s, ok := r.supervisors[id]
	if !ok {
		return domain.Supervisor{}, fmt.Errorf("supervisor %s: %w", id, sentinel.ErrNotFound)
	}
	return s, nil
}

var canonical = domain.Supervisor{ID: "7", Name: "A - Choi, Sam", Phone: "555", IdentificationNumber: "X1"}

func validRequest() domain.NotificationRequest {
	sup := canonical
	return domain.NotificationRequest{
		FirstName:   "Jane",
		LastName:    "Doe",
		Email:       "jane@x.io",
		PhoneNumber: "555-1234",
		Supervisor:  &sup,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSubmitAcceptsValidRequest(t *testing.T) {
	snk := &recordingSink{}
	received := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc := New(snk, discardLogger(), WithIDGenerator(func() string { return "d-1" }))

	ctx := requestcontext.WithTime(context.Background(), received)
	ack, err := svc.Submit(ctx, validRequest())

	require.NoError(t, err)
	assert.Equal(t, "Notification request submitted successfully.", ack.Message)
	require.Len(t, snk.deliveries, 1)
	assert.Equal(t, "d-1", snk.deliveries[0].ID)
	assert.Equal(t, received, snk.deliveries[0].ReceivedAt)
	assert.Equal(t, validRequest(), snk.deliveries[0].Request)
}

func TestSubmitRejectsInvalidRequestWithoutDelivering(t *testing.T) {
	snk := &recordingSink{}
	svc := New(snk, discardLogger())

	req := validRequest()
	req.FirstName = "J4ne"
	_, err := svc.Submit(context.Background(), req)

	var vErr *schema.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "firstName", vErr.Field)
	assert.Empty(t, snk.deliveries)
}

func TestSubmitDefaultsIDGenerator(t *testing.T) {
	snk := &recordingSink{}
	svc := New(snk, nil)

	_, err := svc.Submit(context.Background(), validRequest())

	require.NoError(t, err)
	require.Len(t, snk.deliveries, 1)
	assert.Len(t, snk.deliveries[0].ID, 36)
}

func TestSubmitSinkFailureIsInternal(t *testing.T) {
	snk := &recordingSink{err: fmt.Errorf("xadd: %w", sentinel.ErrUnavailable)}
	svc := New(snk, discardLogger())

	_, err := svc.Submit(context.Background(), validRequest())

	require.Error(t, err)
	assert.Equal(t, dErrors.CodeInternal, dErrors.CodeOf(err))
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
}

func TestSubmitResolvesCanonicalSupervisor(t *testing.T) {
	snk := &recordingSink{}
	svc := New(snk, discardLogger(), WithResolver(mapResolver{
		supervisors: map[string]domain.Supervisor{canonical.ID: canonical},
	}))

	req := validRequest()
	req.Supervisor.Name = "Tampered Name"
	req.Supervisor.Phone = "000"
	_, err := svc.Submit(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, snk.deliveries, 1)
	assert.Equal(t, canonical, *snk.deliveries[0].Request.Supervisor)
}

func TestSubmitUnknownSupervisorIsValidationError(t *testing.T) {
	snk := &recordingSink{}
	svc := New(snk, discardLogger(), WithResolver(mapResolver{}))

	_, err := svc.Submit(context.Background(), validRequest())

	var vErr *schema.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "supervisor.id", vErr.Field)
	assert.Equal(t, `"supervisor.id" does not reference a known supervisor`, vErr.Message)
	assert.Empty(t, snk.deliveries)
}

func TestSubmitResolverFailurePassesThrough(t *testing.T) {
	fetchErr := &dirservice.FetchError{
		Category: provider.ErrorProviderOutage,
		Message:  "request failed with status code 503",
	}
	snk := &recordingSink{}
	svc := New(snk, discardLogger(), WithResolver(mapResolver{err: fetchErr}))

	_, err := svc.Submit(context.Background(), validRequest())

	var got *dirservice.FetchError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, fetchErr.Message, got.Message)
	assert.Empty(t, snk.deliveries)
}

func TestSubmitRecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	snk := &recordingSink{}
	svc := New(snk, discardLogger(), WithMetrics(m), WithResolver(mapResolver{
		supervisors: map[string]domain.Supervisor{canonical.ID: canonical},
	}))

	_, err := svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	bad := validRequest()
	bad.Email = "not-an-email"
	_, err = svc.Submit(context.Background(), bad)
	require.Error(t, err)

	unknown := validRequest()
	unknown.Supervisor.ID = "404"
	_, err = svc.Submit(context.Background(), unknown)
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions.WithLabelValues(metrics.OutcomeAccepted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions.WithLabelValues(metrics.OutcomeInvalid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions.WithLabelValues(metrics.OutcomeUnresolved)))
}
