package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/beer-stock/internal/core/domain"
	"github.com/rl1809/beer-stock/internal/port"
)

const idempotencyKeyPrefix = "increment:"

type ItemService struct {
	repo   port.ItemRepository
	cache  port.CacheRepository
	log    logrus.FieldLogger
	events chan domain.ItemEvent

	// mu guards closed; emit holds it for reading while sending.
	mu     sync.RWMutex
	closed bool
}

type Option func(*ItemService)

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *ItemService) {
		s.log = log
	}
}

// NewItemService builds the service. cache may be nil, in which case lookups go straight
// to the store and IncrementOnce behaves like Increment.
func NewItemService(repo port.ItemRepository, cache port.CacheRepository, queueSize int, opts ...Option) *ItemService {
	s := &ItemService{
		repo:   repo,
		cache:  cache,
		events: make(chan domain.ItemEvent, queueSize),
		log:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ItemService) Create(ctx context.Context, item domain.Item) (*domain.Item, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByName(ctx, item.Name)
	if err != nil {
		return nil, fmt.Errorf("find item by name: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: name %q", domain.ErrItemAlreadyExists, item.Name)
	}

	item.ID = 0
	saved, err := s.repo.Save(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("save item: %w", err)
	}

	s.emit(domain.EventItemCreated, *saved, 0)
	return saved, nil
}

func (s *ItemService) FindByName(ctx context.Context, name string) (*domain.Item, error) {
	if s.cache != nil {
		cached, err := s.cache.GetItem(ctx, name)
		if err != nil {
			s.log.WithError(err).WithField("name", name).Warn("cache lookup failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	item, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("find item by name: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: name %q", domain.ErrItemNotFound, name)
	}

	s.cacheItem(ctx, *item)
	return item, nil
}

func (s *ItemService) ListAll(ctx context.Context) ([]domain.Item, error) {
	items, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("find all items: %w", err)
	}
	if items == nil {
		items = []domain.Item{}
	}
	return items, nil
}

func (s *ItemService) DeleteByID(ctx context.Context, id int64) error {
	item, err := s.mustFind(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	s.evict(ctx, *item)
	s.emit(domain.EventItemDeleted, *item, 0)
	return nil
}

// Increment adds amount units to the item's stock. The write is rejected with
// ErrStockExceeded when the result would pass MaxCapacity; the item is left untouched.
func (s *ItemService) Increment(ctx context.Context, id int64, amount int) (*domain.Item, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidAmount, amount)
	}

	item, err := s.mustFind(ctx, id)
	if err != nil {
		return nil, err
	}
	if !item.CanTake(amount) {
		return nil, stockExceeded(item, amount)
	}

	ok, err := s.repo.IncrementQuantity(ctx, id, amount)
	if err != nil {
		return nil, fmt.Errorf("increment quantity: %w", err)
	}
	if !ok {
		// Lost a race: the row changed or vanished between the check and the write.
		current, err := s.mustFind(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, stockExceeded(current, amount)
	}

	updated, err := s.mustFind(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cacheItem(ctx, *updated)
	s.emit(domain.EventItemRestocked, *updated, amount)
	return updated, nil
}

// IncrementOnce applies Increment at most once per key. A failed increment releases the
// key so the caller may retry.
func (s *ItemService) IncrementOnce(ctx context.Context, key string, id int64, amount int) (*domain.Item, error) {
	if key == "" || s.cache == nil {
		return s.Increment(ctx, id, amount)
	}

	idempotencyKey := idempotencyKeyPrefix + key
	ok, err := s.cache.SetIdempotency(ctx, idempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("idempotency check failed: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: key %q", domain.ErrDuplicateRequest, key)
	}

	item, err := s.Increment(ctx, id, amount)
	if err != nil {
		if releaseErr := s.cache.ReleaseIdempotency(ctx, idempotencyKey); releaseErr != nil {
			s.log.WithError(releaseErr).WithField("key", key).Warn("failed to release idempotency key")
		}
		return nil, err
	}
	return item, nil
}

// Events is drained by the publishing workers. It is closed by Close.
func (s *ItemService) Events() <-chan domain.ItemEvent {
	return s.events
}

// Close closes the event queue. Events emitted afterwards are dropped. Safe to call more than once.
func (s *ItemService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.events)
}

func (s *ItemService) mustFind(ctx context.Context, id int64) (*domain.Item, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find item by id: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: id %d", domain.ErrItemNotFound, id)
	}
	return item, nil
}

// cacheItem writes through to the cache. The cache keeps whichever copy is newest, so
// a reader filling it with an older row cannot overwrite a fresher one.
func (s *ItemService) cacheItem(ctx context.Context, item domain.Item) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetItem(ctx, item); err != nil {
		s.log.WithError(err).WithField("name", item.Name).Warn("cache write failed")
	}
}

func (s *ItemService) evict(ctx context.Context, item domain.Item) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateItem(ctx, item); err != nil {
		s.log.WithError(err).WithField("name", item.Name).Warn("cache invalidation failed")
	}
}

// emit never blocks the request path; a full queue drops the event.
func (s *ItemService) emit(kind domain.EventKind, item domain.Item, amount int) {
	event := domain.ItemEvent{
		ID:         uuid.NewString(),
		Kind:       kind,
		Item:       item,
		Amount:     amount,
		OccurredAt: time.Now().UTC(),
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		s.log.WithFields(logrus.Fields{
			"event": kind,
			"item":  item.ID,
		}).Warn("event queue closed, dropping event")
		return
	}

	select {
	case s.events <- event:
	default:
		s.log.WithFields(logrus.Fields{
			"event": kind,
			"item":  item.ID,
		}).Warn("event queue full, dropping event")
	}
}

func stockExceeded(item *domain.Item, amount int) error {
	return fmt.Errorf("%w: item %d holds %d of %d, cannot add %d",
		domain.ErrStockExceeded, item.ID, item.Quantity, item.MaxCapacity, amount)
}
