package port

import (
	"context"

	"github.com/rl1809/beer-stock/internal/core/domain"
)

type ItemRepository interface {
	// Save inserts a new item and returns it with the ID assigned by the store, ErrItemAlreadyExists on a duplicate name
	Save(ctx context.Context, item domain.Item) (*domain.Item, error)

	// FindByID returns nil, nil when no item has the given ID
	FindByID(ctx context.Context, id int64) (*domain.Item, error)

	// FindByName returns nil, nil when no item has the given name
	FindByName(ctx context.Context, name string) (*domain.Item, error)

	// FindAll returns every item ordered by ID
	FindAll(ctx context.Context) ([]domain.Item, error)

	// DeleteByID removes the item, deleting a missing ID is not an error
	DeleteByID(ctx context.Context, id int64) error

	// IncrementQuantity atomically adds amount if the result stays within max capacity, returns false otherwise
	IncrementQuantity(ctx context.Context, id int64, amount int) (bool, error)
}
