// Package kafka publishes decision events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/segmentio/kafka-go"

	"github.com/echoguardhq/echoguard/pkg/eventstream"
)

// Config holds Kafka publisher settings.
type Config struct {
	Brokers []string
	Topic   string
}

// Publisher writes decision events to Kafka.
type Publisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka-backed eventstream publisher.
func NewPublisher(c Config, logger *slog.Logger) (*Publisher, error) {
	if len(c.Brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	if c.Topic == "" {
		return nil, fmt.Errorf("kafka publisher requires a topic")
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(c.Brokers...),
		Topic:                  c.Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}

	return &Publisher{
		writer: writer,
		logger: logger,
	}, nil
}

// PublishDecision marshals the event and writes it to the configured topic.
// Messages are keyed by incident ID so decisions for the same incident land
// on the same partition.
func (p *Publisher) PublishDecision(ctx context.Context, event *eventstream.DecisionRecordedEvent) error {
	if event == nil {
		return eventstream.ErrNilDecisionEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling decision event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.Query.IncidentID, 10)),
		Value: payload,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing decision event: %w", err)
	}

	p.logger.Debug("published decision event",
		"event_id", event.EventID,
		"incident_id", event.Query.IncidentID,
		"topic", p.writer.Topic,
	)

	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
