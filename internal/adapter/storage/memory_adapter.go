package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rl1809/beer-stock/internal/core/domain"
)

// MemoryAdapter keeps items in process memory. All methods are safe for concurrent use.
type MemoryAdapter struct {
	mu     sync.RWMutex
	items  map[int64]domain.Item
	nextID int64
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{items: make(map[int64]domain.Item)}
}

func (m *MemoryAdapter) Save(ctx context.Context, item domain.Item) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.items {
		if existing.Name == item.Name {
			return nil, fmt.Errorf("%w: name %q", domain.ErrItemAlreadyExists, item.Name)
		}
	}

	now := time.Now().UTC()
	m.nextID++
	item.ID = m.nextID
	item.CreatedAt = now
	item.UpdatedAt = now

	m.items[item.ID] = item
	return &item, nil
}

func (m *MemoryAdapter) FindByID(ctx context.Context, id int64) (*domain.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (m *MemoryAdapter) FindByName(ctx context.Context, name string) (*domain.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, item := range m.items {
		if item.Name == name {
			return &item, nil
		}
	}
	return nil, nil
}

func (m *MemoryAdapter) FindAll(ctx context.Context) ([]domain.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]domain.Item, 0, len(m.items))
	for _, item := range m.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (m *MemoryAdapter) DeleteByID(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, id)
	return nil
}

func (m *MemoryAdapter) IncrementQuantity(ctx context.Context, id int64, amount int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok || !item.CanTake(amount) {
		return false, nil
	}

	item.Quantity += amount
	item.UpdatedAt = time.Now().UTC()
	m.items[id] = item
	return true, nil
}
