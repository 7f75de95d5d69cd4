// Package events publishes notification outcomes to Kafka for downstream
// consumers. Publishing is best effort and never changes a dispatch result.
package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// EventNotificationDispatched is emitted once per handled dispatcher request
const EventNotificationDispatched = "notification.dispatched"

// Event is the envelope written to the topic
type Event struct {
	EventID   string         `json:"event_id"`
	OrderID   string         `json:"order_id"`
	CreatedAt time.Time      `json:"created_at"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload"`
}

// NewEvent stamps an event with a fresh id and the current time
func NewEvent(eventType, orderID string, payload map[string]any) Event {
	return Event{
		EventID:   uuid.NewString(),
		OrderID:   orderID,
		CreatedAt: time.Now().UTC(),
		Type:      eventType,
		Payload:   payload,
	}
}

// Publisher accepts events
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// messageWriter is the part of *kafka.Writer the publisher needs
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events keyed by order id
type KafkaPublisher struct {
	writer messageWriter
}

// ParseBrokers splits a comma-separated broker list, dropping blanks
func ParseBrokers(brokersCSV string) []string {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// NewKafkaPublisher returns nil when no brokers are configured
func NewKafkaPublisher(brokersCSV, topic string) *KafkaPublisher {
	brokers := ParseBrokers(brokersCSV)
	if len(brokers) == 0 {
		return nil
	}
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}}
}

// Publish writes evt as JSON
func (p *KafkaPublisher) Publish(ctx context.Context, evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(evt.OrderID), Value: data, Time: evt.CreatedAt})
}

// Close flushes and closes the writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
