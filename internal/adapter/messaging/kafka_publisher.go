package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/rl1809/beer-stock/internal/core/domain"
)

// messageWriter is the subset of *kafka.Writer used by the publisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
	}
}

type itemPayload struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	MaxCapacity int    `json:"maxCapacity"`
	Quantity    int    `json:"quantity"`
	Type        string `json:"type"`
}

type eventPayload struct {
	ID         string      `json:"id"`
	Kind       string      `json:"kind"`
	Item       itemPayload `json:"item"`
	Amount     int         `json:"amount,omitempty"`
	OccurredAt time.Time   `json:"occurredAt"`
}

func encodeEvent(event domain.ItemEvent) ([]byte, error) {
	return json.Marshal(eventPayload{
		ID:   event.ID,
		Kind: string(event.Kind),
		Item: itemPayload{
			ID:          event.Item.ID,
			Name:        event.Item.Name,
			Brand:       event.Item.Brand,
			MaxCapacity: event.Item.MaxCapacity,
			Quantity:    event.Item.Quantity,
			Type:        string(event.Item.Type),
		},
		Amount:     event.Amount,
		OccurredAt: event.OccurredAt,
	})
}

// Publish keys messages by item ID so events for one item keep their order within a partition.
func (p *KafkaPublisher) Publish(ctx context.Context, event domain.ItemEvent) error {
	value, err := encodeEvent(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.Item.ID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-kind", Value: []byte(event.Kind)},
			{Key: "event-id", Value: []byte(event.ID)},
		},
		Time: event.OccurredAt,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
