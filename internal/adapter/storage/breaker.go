package storage

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/rl1809/beer-stock/internal/core/domain"
	"github.com/rl1809/beer-stock/internal/port"
)

type BreakerSettings struct {
	Name          string
	MaxFailures   uint32        // consecutive failures before opening
	OpenTimeout   time.Duration // time spent open before probing again
	OnStateChange func(name string, from, to gobreaker.State)
}

// BreakerRepository guards an ItemRepository with a circuit breaker. Only infrastructure
// errors count as failures; caller cancellation and business errors do not.
type BreakerRepository struct {
	next port.ItemRepository
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerRepository(next port.ItemRepository, settings BreakerSettings) *BreakerRepository {
	maxFailures := settings.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    settings.Name,
		Timeout: settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: settings.OnStateChange,
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, context.Canceled) ||
				errors.Is(err, domain.ErrItemAlreadyExists)
		},
	})

	return &BreakerRepository{next: next, cb: cb}
}

func (b *BreakerRepository) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerRepository) Save(ctx context.Context, item domain.Item) (*domain.Item, error) {
	return execute(b.cb, func() (*domain.Item, error) {
		return b.next.Save(ctx, item)
	})
}

func (b *BreakerRepository) FindByID(ctx context.Context, id int64) (*domain.Item, error) {
	return execute(b.cb, func() (*domain.Item, error) {
		return b.next.FindByID(ctx, id)
	})
}

func (b *BreakerRepository) FindByName(ctx context.Context, name string) (*domain.Item, error) {
	return execute(b.cb, func() (*domain.Item, error) {
		return b.next.FindByName(ctx, name)
	})
}

func (b *BreakerRepository) FindAll(ctx context.Context) ([]domain.Item, error) {
	return execute(b.cb, func() ([]domain.Item, error) {
		return b.next.FindAll(ctx)
	})
}

func (b *BreakerRepository) DeleteByID(ctx context.Context, id int64) error {
	_, err := execute(b.cb, func() (struct{}, error) {
		return struct{}{}, b.next.DeleteByID(ctx, id)
	})
	return err
}

func (b *BreakerRepository) IncrementQuantity(ctx context.Context, id int64, amount int) (bool, error) {
	return execute(b.cb, func() (bool, error) {
		return b.next.IncrementQuantity(ctx, id, amount)
	})
}

func execute[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	var zero T
	result, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return zero, err
	}
	return result.(T), nil
}
