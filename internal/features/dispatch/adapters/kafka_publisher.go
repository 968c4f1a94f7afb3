package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"courier-dispatch/internal/features/dispatch/ports"

	"github.com/segmentio/kafka-go"
)

// Writer is the subset of kafka.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaEventPublisher implements ports.EventPublisher. Messages are keyed by
// shipment id so one shipment's events stay ordered within a partition.
type KafkaEventPublisher struct {
	writer Writer
}

// NewKafkaEventPublisher creates a publisher writing to topic on brokers.
func NewKafkaEventPublisher(brokers []string, topic string) *KafkaEventPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return &KafkaEventPublisher{writer: w}
}

// NewKafkaEventPublisherWithWriter allows injecting a test writer.
func NewKafkaEventPublisherWithWriter(w Writer) *KafkaEventPublisher {
	return &KafkaEventPublisher{writer: w}
}

// Publish writes ev as JSON.
func (p *KafkaEventPublisher) Publish(ctx context.Context, ev ports.ShipmentEvent) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(ev.ShipmentID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(EventName(ev))},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write event for %s: %w", ev.ShipmentID, err)
	}
	return nil
}

// Close closes the underlying writer.
func (p *KafkaEventPublisher) Close() error {
	return p.writer.Close()
}

// EventName is the dotted event name, e.g. "shipment.dispatch_accepted".
func EventName(ev ports.ShipmentEvent) string {
	return "shipment." + strings.ToLower(string(ev.Type))
}

// NopEventPublisher drops every event. Used when no brokers are configured.
type NopEventPublisher struct{}

// Publish does nothing.
func (NopEventPublisher) Publish(context.Context, ports.ShipmentEvent) error { return nil }

// Close does nothing.
func (NopEventPublisher) Close() error { return nil }
