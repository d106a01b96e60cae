package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const defaultWriteTimeout = 10 * time.Second

// MessageWriter is the part of *kafka.Writer the relay needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// envelope is the wire format of relayed events.
type envelope struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// KafkaRelay forwards bus events to a Kafka topic. Messages are keyed by
// order id so every event of one donation lands on the same partition.
type KafkaRelay struct {
	writer       MessageWriter
	writeTimeout time.Duration
	logger       *slog.Logger
}

func NewKafkaWriter(brokers []string, topic string, writeTimeout time.Duration, logger *slog.Logger) *kafka.Writer {
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: writeTimeout,
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Error(fmt.Sprintf(msg, args...), "component", "kafka_writer")
		}),
	}
}

func NewKafkaRelay(writer MessageWriter, writeTimeout time.Duration, logger *slog.Logger) *KafkaRelay {
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	return &KafkaRelay{
		writer:       writer,
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

// Register subscribes the relay to every given event type.
func (r *KafkaRelay) Register(bus *EventBus, eventTypes ...string) {
	for _, eventType := range eventTypes {
		bus.Subscribe(eventType, r.Handle)
	}
}

func (r *KafkaRelay) Handle(ctx context.Context, event Event) error {
	value, err := json.Marshal(envelope{
		ID:         event.EventID(),
		Type:       event.EventType(),
		OccurredAt: event.OccurredAt(),
		Data:       event.Payload(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.EventID(), err)
	}

	msg := kafka.Message{
		Key:   []byte(messageKey(event)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType())},
			{Key: "event_id", Value: []byte(event.EventID())},
		},
		Time: event.OccurredAt(),
	}

	writeCtx, cancel := context.WithTimeout(ctx, r.writeTimeout)
	defer cancel()

	if err := r.writer.WriteMessages(writeCtx, msg); err != nil {
		r.logger.Error("failed to relay event to kafka",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"error", err)
		return fmt.Errorf("failed to produce event %s: %w", event.EventID(), err)
	}

	r.logger.Debug("event relayed to kafka",
		"event_type", event.EventType(),
		"event_id", event.EventID())
	return nil
}

func (r *KafkaRelay) Close() error {
	if err := r.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer: %w", err)
	}
	return nil
}

func messageKey(event Event) string {
	if data, ok := event.Payload().(map[string]interface{}); ok {
		if orderID, ok := data["order_id"].(string); ok && orderID != "" {
			return orderID
		}
	}
	return event.EventID()
}
