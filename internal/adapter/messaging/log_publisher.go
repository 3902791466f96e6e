package messaging

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/rl1809/beer-stock/internal/core/domain"
)

// LogPublisher writes events to the log. Used when no brokers are configured.
type LogPublisher struct {
	log logrus.FieldLogger
}

func NewLogPublisher(log logrus.FieldLogger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(ctx context.Context, event domain.ItemEvent) error {
	p.log.WithFields(logrus.Fields{
		"event_id": event.ID,
		"kind":     event.Kind,
		"item_id":  event.Item.ID,
		"name":     event.Item.Name,
		"quantity": event.Item.Quantity,
		"amount":   event.Amount,
	}).Info("item event")
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
