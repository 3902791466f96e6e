package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/rl1809/beer-stock/internal/core/domain"
)

type mockWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msgs...)
	return nil
}

func (m *mockWriter) Close() error {
	m.closed = true
	return nil
}

func restockEvent() domain.ItemEvent {
	return domain.ItemEvent{
		ID:   "evt-1",
		Kind: domain.EventItemRestocked,
		Item: domain.Item{
			ID:          42,
			Name:        "Brahma",
			Brand:       "Ambev",
			MaxCapacity: 50,
			Quantity:    20,
			Type:        domain.TypeLager,
		},
		Amount:     10,
		OccurredAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	writer := &mockWriter{}
	publisher := &KafkaPublisher{writer: writer}

	if err := publisher.Publish(context.Background(), restockEvent()); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if len(writer.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(writer.messages))
	}

	msg := writer.messages[0]
	if string(msg.Key) != "42" {
		t.Errorf("expected key 42, got %s", msg.Key)
	}

	var payload eventPayload
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		t.Fatalf("invalid payload: %v", err)
	}
	if payload.Kind != "item.restocked" || payload.Amount != 10 {
		t.Errorf("unexpected payload: %+v", payload)
	}
	if payload.Item.Quantity != 20 || payload.Item.Type != "LAGER" {
		t.Errorf("unexpected item payload: %+v", payload.Item)
	}

	var kind string
	for _, h := range msg.Headers {
		if h.Key == "event-kind" {
			kind = string(h.Value)
		}
	}
	if kind != "item.restocked" {
		t.Errorf("expected event-kind header, got %q", kind)
	}
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	writer := &mockWriter{err: errors.New("broker down")}
	publisher := &KafkaPublisher{writer: writer}

	err := publisher.Publish(context.Background(), restockEvent())
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, writer.err) {
		t.Errorf("expected wrapped broker error, got: %v", err)
	}
}

func TestKafkaPublisher_Close(t *testing.T) {
	writer := &mockWriter{}
	publisher := &KafkaPublisher{writer: writer}

	publisher.Close()
	if !writer.closed {
		t.Error("expected writer to be closed")
	}
}
