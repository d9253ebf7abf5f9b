package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/DeiVid1337/Boss-Pods-Api/pkg/config"
	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "bp"

// Cache is a Redis-backed read-through cache for list/show responses.
// It is never authoritative: writers must invalidate the affected resource
// after commit. Concurrent misses for the same key are collapsed with
// singleflight so only one loader hits the database.
type Cache struct {
	client  *redis.Client
	group   singleflight.Group
	listTTL time.Duration
	showTTL time.Duration
}

// New creates a cache from configuration. An empty Redis address yields a
// disabled cache whose Remember calls pass straight through to the loader.
func New(cacheConfig *config.CacheConfig) *Cache {
	c := &Cache{
		listTTL: cacheConfig.ListTTL,
		showTTL: cacheConfig.ShowTTL,
	}
	if cacheConfig.Addr != "" {
		c.client = redis.NewClient(&redis.Options{
			Addr:     cacheConfig.Addr,
			Password: cacheConfig.Password,
			DB:       cacheConfig.DB,
		})
	}
	return c
}

// Enabled reports whether a Redis backend is configured
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// ListKey builds a cache key for a filtered list of a resource. The filter
// set is hashed with sorted keys so equivalent requests share an entry.
func ListKey(resource string, parts map[string]string) string {
	keys := make([]string, 0, len(parts))
	for k := range parts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	payload, _ := json.Marshal(struct {
		Resource string   `json:"resource"`
		Keys     []string `json:"keys"`
		Parts    []string `json:"parts"`
	}{resource, keys, valuesInOrder(parts, keys)})

	hash := md5.Sum(payload)
	return fmt.Sprintf("%s:list:%s:%s", keyPrefix, resource, hex.EncodeToString(hash[:]))
}

// ShowKey builds a cache key for a single resource by id
func ShowKey(resource string, id uint) string {
	return fmt.Sprintf("%s:show:%s:%d", keyPrefix, resource, id)
}

func valuesInOrder(parts map[string]string, keys []string) []string {
	values := make([]string, len(keys))
	for i, k := range keys {
		values[i] = parts[k]
	}
	return values
}

// RememberList reads through the cache with the list TTL
func (c *Cache) RememberList(ctx context.Context, key string, dest interface{}, loader func() (interface{}, error)) error {
	return c.remember(ctx, key, c.listTTL, dest, loader)
}

// RememberShow reads through the cache with the show TTL
func (c *Cache) RememberShow(ctx context.Context, key string, dest interface{}, loader func() (interface{}, error)) error {
	return c.remember(ctx, key, c.showTTL, dest, loader)
}

func (c *Cache) remember(ctx context.Context, key string, ttl time.Duration, dest interface{}, loader func() (interface{}, error)) error {
	if !c.Enabled() {
		value, err := loader()
		if err != nil {
			return err
		}
		return assign(value, dest)
	}

	cached, err := c.client.Get(ctx, key).Result()
	if err == nil {
		return json.Unmarshal([]byte(cached), dest)
	}
	if err != redis.Nil {
		// Redis being down must not take reads down with it
		value, loadErr := loader()
		if loadErr != nil {
			return loadErr
		}
		return assign(value, dest)
	}

	payload, err, _ := c.group.Do(key, func() (interface{}, error) {
		value, err := loader()
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		c.client.Set(ctx, key, encoded, ttl)
		return encoded, nil
	})
	if err != nil {
		return err
	}

	return json.Unmarshal(payload.([]byte), dest)
}

// InvalidateList drops every cached list entry for the resource
func (c *Cache) InvalidateList(ctx context.Context, resource string) {
	if !c.Enabled() {
		return
	}
	pattern := fmt.Sprintf("%s:list:%s:*", keyPrefix, resource)
	keys, err := c.client.Keys(ctx, pattern).Result()
	if err != nil || len(keys) == 0 {
		return
	}
	c.client.Del(ctx, keys...)
}

// InvalidateShow drops the cached show entry for a single resource
func (c *Cache) InvalidateShow(ctx context.Context, resource string, id uint) {
	if !c.Enabled() {
		return
	}
	c.client.Del(ctx, ShowKey(resource, id))
}

func assign(value, dest interface{}) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(encoded, dest)
}
