// Package kafka publishes forecast usage events for downstream analytics.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/meskel/agroclimate-mcp/internal/config"
	"github.com/meskel/agroclimate-mcp/internal/query"
)

// Writer produces usage events to a Kafka topic. It implements
// query.UsagePublisher and is optional: when Kafka is disabled the service
// runs with a nil publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured usage topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaUsageTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireOne,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishUsage serializes and publishes one usage event.
func (w *Writer) PublishUsage(ctx context.Context, event query.UsageEvent) error {
	msg, err := serializeUsage(event)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeUsage marshals a usage event into a Kafka message keyed by tool
// name so per-tool ordering is preserved within a partition.
func serializeUsage(event query.UsageEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize usage event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.Tool),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "outcome", Value: []byte(event.Outcome)},
			{Key: "served_at", Value: []byte(event.ServedAt.Format(time.RFC3339))},
		},
	}, nil
}
