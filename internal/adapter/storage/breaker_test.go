package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"

	"github.com/rl1809/beer-stock/internal/core/domain"
)

// failingRepo fails every call with err while err is set, otherwise delegates to a MemoryAdapter.
type failingRepo struct {
	*MemoryAdapter
	err error
}

func (f *failingRepo) FindByID(ctx context.Context, id int64) (*domain.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.MemoryAdapter.FindByID(ctx, id)
}

func TestBreakerRepository_Contract(t *testing.T) {
	runRepositoryContract(t, NewBreakerRepository(NewMemoryAdapter(), BreakerSettings{Name: "test"}))
}

func TestBreakerRepository_OpensAfterFailures(t *testing.T) {
	inner := &failingRepo{MemoryAdapter: NewMemoryAdapter(), err: errors.New("connection refused")}
	repo := NewBreakerRepository(inner, BreakerSettings{
		Name:        "items",
		MaxFailures: 3,
		OpenTimeout: time.Hour,
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := repo.FindByID(ctx, 1); err == nil {
			t.Fatal("expected inner error")
		}
	}

	if repo.State() != gobreaker.StateOpen {
		t.Fatalf("expected open breaker, got %s", repo.State())
	}

	// Short-circuits without touching the store
	inner.err = nil
	_, err := repo.FindByID(ctx, 1)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("expected ErrOpenState, got: %v", err)
	}
}

func TestBreakerRepository_IgnoresCancellation(t *testing.T) {
	inner := &failingRepo{MemoryAdapter: NewMemoryAdapter(), err: context.Canceled}
	repo := NewBreakerRepository(inner, BreakerSettings{MaxFailures: 1, OpenTimeout: time.Hour})

	for i := 0; i < 5; i++ {
		repo.FindByID(context.Background(), 1)
	}

	if repo.State() != gobreaker.StateClosed {
		t.Errorf("expected closed breaker, got %s", repo.State())
	}
}

func TestBreakerRepository_PassesNilResults(t *testing.T) {
	repo := NewBreakerRepository(NewMemoryAdapter(), BreakerSettings{})

	item, err := repo.FindByName(context.Background(), "nothing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item != nil {
		t.Errorf("expected nil item, got %+v", item)
	}
}
