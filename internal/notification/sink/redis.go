package sink

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"notify-gateway/internal/domain"
	"notify-gateway/pkg/platform/sentinel"
)

// DefaultStream is the Redis stream deliveries are appended to.
const DefaultStream = "notification-requests"

// RedisSink appends each delivery to a Redis stream for a downstream
// dispatcher to consume.
type RedisSink struct {
	client redis.Cmdable
	stream string
	maxLen int64
}

// NewRedisSink creates a stream sink. maxLen caps the stream approximately;
// zero means unbounded.
func NewRedisSink(client redis.Cmdable, stream string, maxLen int64) *RedisSink {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisSink{client: client, stream: stream, maxLen: maxLen}
}

func (s *RedisSink) Deliver(ctx context.Context, d domain.Delivery) error {
	payload, err := encode(d)
	if err != nil {
		return err
	}
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"delivery_id":   d.ID,
			"supervisor_id": supervisorID(d),
			"payload":       string(payload),
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("append delivery %s to %s: %w: %w", d.ID, s.stream, sentinel.ErrUnavailable, err)
	}
	return nil
}
