// Package events publishes conclusion and exhibit lifecycle events.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Event types.
const (
	PieceAttached     = "piece.attached"
	PieceUpdated      = "piece.updated"
	PieceRemoved      = "piece.removed"
	PiecesReordered   = "pieces.reordered"
	ConclusionCreated = "conclusion.created"
	ConclusionDeleted = "conclusion.deleted"
)

// Event is one lifecycle notification, JSON encoded and keyed by conclusion id.
type Event struct {
	Type         string    `json:"type"`
	ConclusionID string    `json:"conclusion_id"`
	PieceID      string    `json:"piece_id,omitempty"`
	UserID       string    `json:"user_id"`
	Timestamp    time.Time `json:"timestamp"`
}

// Publisher sends events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// messageWriter is the subset of *kafka.Writer used by KafkaPublisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to a Kafka topic.
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher creates a publisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(e.ConclusionID),
		Value: value,
		Time:  e.Timestamp,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

func (Noop) Close() error { return nil }

// New returns a Kafka publisher when brokers are configured, Noop otherwise.
func New(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		return Noop{}
	}
	return NewKafkaPublisher(brokers, topic)
}

// Emit publishes e and logs failures instead of returning them.
func Emit(ctx context.Context, p Publisher, logger *zap.Logger, e Event) {
	if err := p.Publish(ctx, e); err != nil {
		logger.Warn("event_publish_failed",
			zap.String("component", "events"),
			zap.String("event_type", e.Type),
			zap.String("conclusion_id", e.ConclusionID),
			zap.Error(err),
		)
	}
}
