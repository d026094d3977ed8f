package events

import (
	"context"
	"encoding/json"
	"time"

	"storefront-be/internal/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	OrderCreated       = "order.created"
	OrderPaid          = "order.paid"
	OrderStatusChanged = "order.status_changed"
)

type Event struct {
	Type       string    `json:"type"`
	OrderID    string    `json:"orderId"`
	UserID     uint      `json:"userId"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// publishTimeout caps how long a request can wait on the broker.
const publishTimeout = 3 * time.Second

type KafkaPublisher struct {
	writer  messageWriter
	timeout time.Duration
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: time.Second,
			ReadTimeout:  time.Second,
			MaxAttempts:  2,
		},
		timeout: publishTimeout,
	}
}

// Publish keys messages by order id so one order's events stay in one partition.
// The write outlives a cancelled request but never runs past the publish timeout.
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	data, err := json.Marshal(e)
	if err != nil {
		return err
	}

	timeout := p.timeout
	if timeout <= 0 {
		timeout = publishTimeout
	}
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	err = p.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(e.OrderID),
		Value: data,
		Time:  e.OccurredAt,
	})
	if err != nil {
		logger.FromCtx(ctx).Error("failed to publish event",
			zap.String("type", e.Type),
			zap.String("order_id", e.OrderID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

type noopPublisher struct{}

// NewNoopPublisher is used when no brokers are configured.
func NewNoopPublisher() Publisher { return noopPublisher{} }

func (noopPublisher) Publish(context.Context, Event) error { return nil }
func (noopPublisher) Close() error                        { return nil }
