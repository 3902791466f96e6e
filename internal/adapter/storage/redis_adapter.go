package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/beer-stock/internal/core/domain"
)

const (
	itemKeyPrefix        = "item:name:"
	idempotencyKeyPrefix = "idempotency:"

	// deletedQuantity ranks a deletion marker above every live copy of the same ID.
	deletedQuantity = 1 << 30
)

// Cached items are hashes of id, quantity and the encoded item. A write only lands
// when its (id, quantity) is not older than what is cached. A deletion marker has an
// empty data field.
var setItemScript = redis.NewScript(`
local current = redis.call("HMGET", KEYS[1], "id", "quantity")
if current[1] then
	local id = tonumber(current[1])
	local newID = tonumber(ARGV[1])
	if newID < id or (newID == id and tonumber(ARGV[2]) < tonumber(current[2])) then
		return 0
	end
end
redis.call("HSET", KEYS[1], "id", ARGV[1], "quantity", ARGV[2], "data", ARGV[3])
redis.call("PEXPIRE", KEYS[1], ARGV[4])
return 1
`)

type RedisAdapter struct {
	client         *redis.Client
	itemTTL        time.Duration
	idempotencyTTL time.Duration
}

func NewRedisAdapter(client *redis.Client, itemTTL, idempotencyTTL time.Duration) *RedisAdapter {
	return &RedisAdapter{
		client:         client,
		itemTTL:        itemTTL,
		idempotencyTTL: idempotencyTTL,
	}
}

type cachedItem struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Brand       string    `json:"brand"`
	MaxCapacity int       `json:"max_capacity"`
	Quantity    int       `json:"quantity"`
	Type        string    `json:"type"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (r *RedisAdapter) GetItem(ctx context.Context, name string) (*domain.Item, error) {
	data, err := r.client.HGet(ctx, itemKeyPrefix+name, "data").Bytes()
	if errors.Is(err, redis.Nil) || (err == nil && len(data) == 0) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var c cachedItem
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode cached item: %w", err)
	}

	return &domain.Item{
		ID:          c.ID,
		Name:        c.Name,
		Brand:       c.Brand,
		MaxCapacity: c.MaxCapacity,
		Quantity:    c.Quantity,
		Type:        domain.Type(c.Type),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}, nil
}

func (r *RedisAdapter) SetItem(ctx context.Context, item domain.Item) error {
	data, err := json.Marshal(cachedItem{
		ID:          item.ID,
		Name:        item.Name,
		Brand:       item.Brand,
		MaxCapacity: item.MaxCapacity,
		Quantity:    item.Quantity,
		Type:        string(item.Type),
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode cached item: %w", err)
	}
	return r.storeItem(ctx, item.Name, item.ID, item.Quantity, string(data))
}

func (r *RedisAdapter) InvalidateItem(ctx context.Context, item domain.Item) error {
	return r.storeItem(ctx, item.Name, item.ID, deletedQuantity, "")
}

func (r *RedisAdapter) storeItem(ctx context.Context, name string, id int64, quantity int, data string) error {
	err := setItemScript.Run(ctx, r.client, []string{itemKeyPrefix + name},
		id, quantity, data, r.itemTTL.Milliseconds(),
	).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, idempotencyKeyPrefix+key, 1, r.idempotencyTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r *RedisAdapter) ReleaseIdempotency(ctx context.Context, key string) error {
	return r.client.Del(ctx, idempotencyKeyPrefix+key).Err()
}
