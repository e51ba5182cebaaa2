// Package sink delivers accepted notification requests. Validation never
// happens here: a sink only ever sees requests the schema accepted.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"notify-gateway/internal/domain"
	"notify-gateway/pkg/requestcontext"
)

// Sink is the delivery capability. Implementations must be safe for
// concurrent use.
type Sink interface {
	Deliver(ctx context.Context, d domain.Delivery) error
}

// LogSink records the delivery as a log line and does nothing else.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a log-only sink.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Deliver(ctx context.Context, d domain.Delivery) error {
	s.logger.InfoContext(ctx, "received notification request",
		"request_id", requestcontext.RequestID(ctx),
		"delivery_id", d.ID,
		"first_name", d.Request.FirstName,
		"last_name", d.Request.LastName,
		"email", d.Request.Email,
		"phone_number", d.Request.PhoneNumber,
		"supervisor_id", supervisorID(d),
	)
	return nil
}

func supervisorID(d domain.Delivery) string {
	if d.Request.Supervisor == nil {
		return ""
	}
	return d.Request.Supervisor.ID
}

func encode(d domain.Delivery) ([]byte, error) {
	payload, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode delivery %s: %w", d.ID, err)
	}
	return payload, nil
}
