package fact

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Provider is the fact lookup/mutation contract used by the responder and
// the admin surface. Both the raw Store and the redis-backed Cache satisfy it.
type Provider interface {
	Get(key string) (*Fact, error)
	Set(key, value, word, setBy string, when int64, locked bool) error
	Delete(key string) error
	Count() (int64, error)
	SetLocked(key string, locked bool) error
}

const cacheKeyFmt = "fact:%s"

// Cache is a read-through redis cache in front of a Store. Lookups hit redis
// first; every mutation invalidates the cached row. A nil redis client
// disables caching and passes straight through.
type Cache struct {
	next Provider
	rdb  *redis.Client
	ttl  time.Duration
}

func NewCache(next Provider, rdb *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{next: next, rdb: rdb, ttl: ttl}
}

func (c *Cache) Get(key string) (*Fact, error) {
	key = NormalizeKey(key)
	if c.rdb == nil || key == "" {
		return c.next.Get(key)
	}
	ctx := context.Background()
	raw, err := c.rdb.Get(ctx, fmt.Sprintf(cacheKeyFmt, key)).Result()
	if err == nil {
		var f Fact
		if err := json.Unmarshal([]byte(raw), &f); err == nil {
			return &f, nil
		}
		// Unreadable cache entry, fall through to the store
	}
	f, err := c.next.Get(key)
	if err != nil || f == nil {
		return f, err
	}
	if raw, err := json.Marshal(f); err == nil {
		if err := c.rdb.Set(ctx, fmt.Sprintf(cacheKeyFmt, key), raw, c.ttl).Err(); err != nil {
			log.Printf("[FactCache] WARNING: cache write failed for %q: %v", key, err)
		}
	}
	return f, nil
}

func (c *Cache) Set(key, value, word, setBy string, when int64, locked bool) error {
	if err := c.next.Set(key, value, word, setBy, when, locked); err != nil {
		return err
	}
	c.invalidate(key)
	return nil
}

func (c *Cache) Delete(key string) error {
	if err := c.next.Delete(key); err != nil {
		return err
	}
	c.invalidate(key)
	return nil
}

func (c *Cache) Count() (int64, error) {
	return c.next.Count()
}

func (c *Cache) SetLocked(key string, locked bool) error {
	if err := c.next.SetLocked(key, locked); err != nil {
		return err
	}
	c.invalidate(key)
	return nil
}

func (c *Cache) invalidate(key string) {
	if c.rdb == nil {
		return
	}
	key = NormalizeKey(key)
	if err := c.rdb.Del(context.Background(), fmt.Sprintf(cacheKeyFmt, key)).Err(); err != nil {
		log.Printf("[FactCache] WARNING: cache invalidation failed for %q: %v", key, err)
	}
}
