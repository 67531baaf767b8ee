// Package kafka publishes order events to Kafka.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mrops-br/shopverse-api/internal/domain"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes OrderPlaced events keyed by order number. With no
// brokers configured it only logs the event.
type Publisher struct {
	brokers []string
	topic   string
	writer  messageWriter
	tracer  trace.Tracer
	logger  *slog.Logger
}

// ParseBrokers splits a comma separated broker list, dropping blanks.
func ParseBrokers(csv string) []string {
	brokers := []string{}
	for _, b := range strings.Split(csv, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// NewPublisher creates a publisher for topic on the given brokers.
func NewPublisher(brokers []string, topic string, tracer trace.Tracer, logger *slog.Logger) *Publisher {
	p := &Publisher{
		brokers: brokers,
		topic:   topic,
		tracer:  tracer,
		logger:  logger,
	}
	if p.Enabled() {
		p.writer = &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		}
	}
	return p
}

// Enabled reports whether any broker is configured.
func (p *Publisher) Enabled() bool {
	return len(p.brokers) > 0
}

// PublishOrderPlaced implements domain.OrderPublisher.
func (p *Publisher) PublishOrderPlaced(ctx context.Context, event domain.OrderPlaced) error {
	ctx, span := p.tracer.Start(ctx, "Kafka.PublishOrderPlaced", trace.WithSpanKind(trace.SpanKindProducer))
	defer span.End()

	key := event.Confirmation.OrderNumber
	span.SetAttributes(
		attribute.String("messaging.system", "kafka"),
		attribute.String("messaging.destination.name", p.topic),
		attribute.String("messaging.kafka.message.key", key),
	)

	if !p.Enabled() {
		p.logger.InfoContext(ctx, "Kafka disabled, order event not published",
			slog.String("order_number", key),
		)
		span.SetStatus(codes.Ok, "Publishing disabled")
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to encode event")
		return fmt.Errorf("encode order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now().UTC(),
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte("order.placed")},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to publish event")
		return fmt.Errorf("publish order event: %w", err)
	}

	p.logger.InfoContext(ctx, "Order event published",
		slog.String("topic", p.topic),
		slog.String("order_number", key),
	)
	span.SetStatus(codes.Ok, "Event published")
	return nil
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
