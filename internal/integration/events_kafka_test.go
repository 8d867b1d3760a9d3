//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/couchcryptid/weather-map-service/internal/adapter/kafka"
	"github.com/couchcryptid/weather-map-service/internal/config"
	"github.com/couchcryptid/weather-map-service/internal/domain"
	"github.com/couchcryptid/weather-map-service/internal/events"
	"github.com/couchcryptid/weather-map-service/internal/observability"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEventsTopic = "test-map-events"

type publishedMessage struct {
	Event   domain.MapEvent
	Key     string
	Headers map[string]string
}

func readPublished(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from events topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var event domain.MapEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event), "unmarshal event")
	return publishedMessage{Event: event, Key: string(msg.Key), Headers: headers}
}

// TestDispatcherPublishesToKafka drives events through the dispatcher and the
// Kafka writer and reads them back from the topic.
func TestDispatcherPublishesToKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testEventsTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaEventsTopic: testEventsTopic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	domain.SetClock(clock)
	t.Cleanup(func() { domain.SetClock(nil) })

	metrics := observability.NewMetricsForTesting()
	d := events.NewDispatcher(writer, 2, time.Hour, clockwork.NewRealClock(), discardLogger(), metrics)
	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- d.Run(runCtx) }()

	selected := domain.NewMapEvent(domain.EventRegionSelected, "Texas", "Houston")
	unsupported := domain.NewMapEvent(domain.EventRegionUnsupported, "Puerto Rico", "")
	d.Publish(ctx, selected)
	d.Publish(ctx, unsupported)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testEventsTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  1 << 20,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	first := readPublished(ctx, t, consumer)
	second := readPublished(ctx, t, consumer)

	assert.Equal(t, selected, first.Event)
	assert.Equal(t, selected.ID, first.Key)
	assert.Equal(t, "region.selected", first.Headers["event_type"])
	assert.Equal(t, "2024-06-01T12:00:00Z", first.Headers["occurred_at"])

	assert.Equal(t, unsupported, second.Event)
	assert.Equal(t, "region.unsupported", second.Headers["event_type"])

	stop()
	require.NoError(t, <-done)
}
