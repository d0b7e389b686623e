package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Payload is the structured email request handed to the delivery worker.
type Payload struct {
	Recipient string            `json:"recipient"`
	Template  string            `json:"template"`
	Params    map[string]string `json:"params"`
	QueuedAt  time.Time         `json:"queued_at"`
}

// Mailer queues outbound mail. Delivery is best-effort: callers log a Send
// failure and move on, the record the mail describes is already written.
type Mailer interface {
	Send(ctx context.Context, p Payload) error
}

const Topic = "notify.email"

// KafkaMailer publishes payloads to the delivery worker's topic.
type KafkaMailer struct {
	w *kafka.Writer
}

func NewKafkaMailer(brokers []string) *KafkaMailer {
	return &KafkaMailer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (m *KafkaMailer) Send(ctx context.Context, p Payload) error {
	if p.QueuedAt.IsZero() {
		p.QueuedAt = time.Now().UTC()
	}

	value, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal mail payload: %w", err)
	}

	err = m.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(p.Recipient),
		Value: value,
		Time:  p.QueuedAt,
	})
	if err != nil {
		return fmt.Errorf("queue mail: %w", err)
	}
	return nil
}

func (m *KafkaMailer) Close() error {
	return m.w.Close()
}

// Noop discards mail; used in tests and local development without a broker.
type Noop struct{}

func (Noop) Send(context.Context, Payload) error { return nil }
