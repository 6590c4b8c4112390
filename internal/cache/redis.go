package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/okazarian/product-recommendation-service/internal/domain"
)

const defaultTTL = 10 * time.Minute

// Cache stores generated recommendation lists per (user, limit) so repeat
// requests skip the strategy chain until the entry expires or the user's
// activity changes.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func buildKey(userID uuid.UUID, limit int) string {
	user := "anon"
	if userID != uuid.Nil {
		user = userID.String()
	}
	return fmt.Sprintf("recs:user:%s:limit:%d", user, limit)
}

// Get returns the cached list and whether one was present.
func (c *Cache) Get(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Product, bool, error) {
	key := buildKey(userID, limit)
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}

	var products []domain.Product
	if err := json.Unmarshal([]byte(val), &products); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached recommendations %s: %w", key, err)
	}
	return products, true, nil
}

// Set stores a generated list with the configured TTL.
func (c *Cache) Set(ctx context.Context, userID uuid.UUID, limit int, products []domain.Product) error {
	key := buildKey(userID, limit)
	val, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("marshal recommendations: %w", err)
	}
	if err := c.client.Set(ctx, key, val, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// ClearUser drops every cached list for one user, used when the user's
// activity changes.
func (c *Cache) ClearUser(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return nil
	}
	pattern := fmt.Sprintf("recs:user:%s:limit:*", userID)
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("cache delete %s: %w", iter.Val(), err)
		}
	}
	return iter.Err()
}

// Ping checks connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
