package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sbilibin2017/gw-secondchance/internal/logger"
	"github.com/sbilibin2017/gw-secondchance/internal/models"
)

// ItemCacheRepository provides cached single-item lookups using Redis.
// The full listing is never cached.
type ItemCacheRepository struct {
	client *redis.Client
	exp    time.Duration // expiration duration for cached items
}

// NewItemCacheRepository creates a new repository instance with optional TTL
func NewItemCacheRepository(client *redis.Client, expiration time.Duration) *ItemCacheRepository {
	return &ItemCacheRepository{
		client: client,
		exp:    expiration,
	}
}

func itemCacheKey(id string) string {
	return fmt.Sprintf("secondchance:item:%s", id)
}

// Get returns the cached item, or nil on a cache miss.
func (r *ItemCacheRepository) Get(ctx context.Context, id string) (*models.ItemDB, error) {
	key := itemCacheKey(id)

	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		logger.Log.Infow("item cache get failed",
			"key", key,
			"error", err,
		)
		return nil, err
	}

	var item models.ItemDB
	if err := json.Unmarshal([]byte(val), &item); err != nil {
		logger.Log.Infow("item cache entry malformed",
			"key", key,
			"error", err,
		)
		return nil, err
	}
	return &item, nil
}

// Set caches an item with the configured expiration.
func (r *ItemCacheRepository) Set(ctx context.Context, item models.ItemDB) error {
	key := itemCacheKey(item.ID)

	val, err := json.Marshal(item)
	if err != nil {
		return err
	}

	err = r.client.Set(ctx, key, val, r.exp).Err()
	if err != nil {
		logger.Log.Infow("item cache set failed",
			"key", key,
			"error", err,
		)
	}
	return err
}

// Invalidate drops the cached entry for an item id.
func (r *ItemCacheRepository) Invalidate(ctx context.Context, id string) error {
	key := itemCacheKey(id)

	err := r.client.Del(ctx, key).Err()
	if err != nil {
		logger.Log.Infow("item cache invalidate failed",
			"key", key,
			"error", err,
		)
	}
	return err
}
