package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ray-remotestate/pizzeria/cart"
	"github.com/ray-remotestate/pizzeria/models"
)

func NewClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return rdb, nil
}

const catalogKey = "catalog:snapshot"

// Snapshot is the cached form of the whole catalog.
type Snapshot struct {
	Categories []models.Category `json:"categories"`
	Products   []models.Product  `json:"products"`
}

type CatalogCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCatalogCache(rdb *redis.Client, ttl time.Duration) *CatalogCache {
	return &CatalogCache{rdb: rdb, ttl: ttl}
}

// Get reports a miss with ok=false and a nil error.
func (c *CatalogCache) Get(ctx context.Context) (*Snapshot, bool, error) {
	raw, err := c.rdb.Get(ctx, catalogKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var s Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false, err
	}
	return &s, true, nil
}

func (c *CatalogCache) Set(ctx context.Context, s *Snapshot) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, catalogKey, raw, c.ttl).Err()
}

func (c *CatalogCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, catalogKey).Err()
}

// CartStore keeps session carts as JSON lines with a sliding TTL.
type CartStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCartStore(rdb *redis.Client, ttl time.Duration) *CartStore {
	return &CartStore{rdb: rdb, ttl: ttl}
}

func cartKey(sessionID string) string {
	return "cart:" + sessionID
}

func (s *CartStore) Load(ctx context.Context, sessionID string) (*cart.Cart, error) {
	raw, err := s.rdb.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return cart.New(), nil
	}
	if err != nil {
		return nil, err
	}
	var lines []cart.Line
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, err
	}
	return cart.New(lines...), nil
}

func (s *CartStore) Save(ctx context.Context, sessionID string, c *cart.Cart) error {
	if c.IsEmpty() {
		return s.Delete(ctx, sessionID)
	}
	raw, err := json.Marshal(c.Lines())
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, cartKey(sessionID), raw, s.ttl).Err()
}

func (s *CartStore) Delete(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, cartKey(sessionID)).Err()
}

var _ cart.Store = (*CartStore)(nil)

// IdempotencyStore remembers the order created for a client supplied key.
type IdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewIdempotencyStore(rdb *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb, ttl: ttl}
}

func (s *IdempotencyStore) TryLock(ctx context.Context, key string) (bool, error) {
	return s.rdb.SetNX(ctx, "idemp:lock:"+key, "1", s.ttl).Result()
}

func (s *IdempotencyStore) Unlock(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, "idemp:lock:"+key).Err()
}

func (s *IdempotencyStore) Remember(ctx context.Context, key, value string) error {
	return s.rdb.Set(ctx, "idemp:map:"+key, value, s.ttl).Err()
}

func (s *IdempotencyStore) Recall(ctx context.Context, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, "idemp:map:"+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}
