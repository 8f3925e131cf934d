//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/ans-recharge-service/internal/adapter/kafka"
	"github.com/couchcryptid/ans-recharge-service/internal/advisor"
	"github.com/couchcryptid/ans-recharge-service/internal/config"
	"github.com/couchcryptid/ans-recharge-service/internal/domain"
	"github.com/couchcryptid/ans-recharge-service/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testTopic = "test-assessments"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	kc, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("ans-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(kc) })

	brokers, err := kc.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	cc, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cc.Close()

	require.NoError(t, cc.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// staticSource serves fixed readings in place of the recharge API.
type staticSource struct {
	readings []domain.RecoveryReading
}

func (s staticSource) FetchRecharges(context.Context, domain.Token) ([]domain.RecoveryReading, error) {
	return s.readings, nil
}

func TestPublisher_AssessmentReachesTopic(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{
		KafkaBrokers:         []string{broker},
		KafkaAssessmentTopic: testTopic,
		KafkaEnabled:         true,
	}
	publisher := kafka.NewPublisher(cfg, discardLogger())
	t.Cleanup(func() { _ = publisher.Close() })

	status := 4
	svc := advisor.New(
		staticSource{readings: []domain.RecoveryReading{
			{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Value: 3.4, StatusCode: &status},
		}},
		publisher,
		advisor.Options{Days: 7},
		discardLogger(),
		observability.NewMetricsForTesting(),
	)

	report, err := svc.Recharge(ctx, domain.Token("integration-token"))
	require.NoError(t, err)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  1 << 20,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from assessment topic")

	assert.Equal(t, report.Assessment.ID, string(msg.Key))
	assert.NotContains(t, string(msg.Value), "integration-token")

	var got domain.Assessment
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, domain.VariantLive, got.Variant)
	assert.Equal(t, domain.LoadIncrease, got.Recommendation)
	assert.Equal(t, "above usual", got.Status.Label)

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "live", headers["variant"])
	assert.Equal(t, "INCREASE", headers["recommendation"])
}
