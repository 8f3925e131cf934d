package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/ans-recharge-service/internal/config"
	"github.com/couchcryptid/ans-recharge-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher produces assessment events to a Kafka topic.
// It implements domain.AssessmentPublisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// publishBatchTimeout bounds how long a single assessment waits in the
// writer's batch before it is flushed.
const publishBatchTimeout = 5 * time.Millisecond

// NewPublisher creates a Kafka producer for the configured assessment topic.
// Publish runs on the request path, so each message is flushed on its own.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaAssessmentTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
		BatchSize:              1,
		BatchTimeout:           publishBatchTimeout,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish serializes an assessment and writes it keyed by assessment id.
func (p *Publisher) Publish(ctx context.Context, a domain.Assessment) error {
	msg, err := serializeToMessage(a)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish assessment %s: %w", a.ID, err)
	}
	p.logger.Debug("assessment published", "assessment_id", a.ID, "topic", p.writer.Topic)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals an Assessment into a Kafka message.
func serializeToMessage(a domain.Assessment) (kafkago.Message, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize assessment: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(a.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "variant", Value: []byte(a.Variant)},
			{Key: "recommendation", Value: []byte(a.Recommendation)},
			{Key: "assessed_at", Value: []byte(a.AssessedAt.Format(time.RFC3339))},
		},
	}, nil
}
