package port

import (
	"context"

	"github.com/rl1809/beer-stock/internal/core/domain"
)

type CacheRepository interface {
	// GetItem returns a cached item by name, nil on miss
	GetItem(ctx context.Context, name string) (*domain.Item, error)

	// SetItem caches the item under its name unless a copy it does not supersede, or a
	// deletion marker for it, is already cached
	SetItem(ctx context.Context, item domain.Item) error

	// InvalidateItem replaces the cached item with a deletion marker so that slower
	// writers holding the deleted row cannot cache it again
	InvalidateItem(ctx context.Context, item domain.Item) error

	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// ReleaseIdempotency removes the key so the request can be retried
	ReleaseIdempotency(ctx context.Context, key string) error
}
