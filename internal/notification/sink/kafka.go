package sink

import (
	"context"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"notify-gateway/internal/domain"
	"notify-gateway/pkg/platform/sentinel"
)

// Producer is the subset of *kgo.Client the Kafka sink uses.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaSink publishes each delivery to a topic, keyed by supervisor id so
// requests for one supervisor stay ordered within a partition.
type KafkaSink struct {
	producer Producer
	topic    string
}

// NewKafkaSink creates a topic sink.
func NewKafkaSink(producer Producer, topic string) *KafkaSink {
	if topic == "" {
		topic = DefaultStream
	}
	return &KafkaSink{producer: producer, topic: topic}
}

func (s *KafkaSink) Deliver(ctx context.Context, d domain.Delivery) error {
	payload, err := encode(d)
	if err != nil {
		return err
	}
	rec := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(supervisorID(d)),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "delivery-id", Value: []byte(d.ID)},
		},
	}
	if err := s.producer.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("publish delivery %s to %s: %w: %w", d.ID, s.topic, sentinel.ErrUnavailable, err)
	}
	return nil
}
