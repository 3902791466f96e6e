package port

import (
	"context"

	"github.com/rl1809/beer-stock/internal/core/domain"
)

type EventPublisher interface {
	// Publish delivers a single item event downstream
	Publish(ctx context.Context, event domain.ItemEvent) error

	Close() error
}
