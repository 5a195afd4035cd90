package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/grachmannico95/shopease-be/internal/domain"
	"github.com/grachmannico95/shopease-be/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const lookupKeyPrefix = "shopease:lookup:"

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

var errCacheMiss = errors.New("cache miss")

type lookupCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type redisCache struct {
	client *redis.Client
}

func (c redisCache) Get(ctx context.Context, key string) (string, error) {
	v, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", errCacheMiss
	}
	return v, err
}

func (c redisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// CachedLookup is a read-through cache in front of a domain.ReferenceLookup.
// Only hits are cached. A cache that errors is skipped, never fatal.
type CachedLookup struct {
	next  domain.ReferenceLookup
	cache lookupCache
	ttl   time.Duration
	log   *logger.Logger
}

var _ domain.ReferenceLookup = (*CachedLookup)(nil)

func NewCachedLookup(next domain.ReferenceLookup, client *redis.Client, ttl time.Duration, log *logger.Logger) *CachedLookup {
	return &CachedLookup{next: next, cache: redisCache{client: client}, ttl: ttl, log: log}
}

func (c *CachedLookup) FindStoreIDBySlug(ctx context.Context, slug string) (string, error) {
	return c.through(ctx, lookupKey("store", slug), func() (string, error) {
		return c.next.FindStoreIDBySlug(ctx, slug)
	})
}

func (c *CachedLookup) FindSectionID(ctx context.Context, storeID, name string) (string, error) {
	return c.through(ctx, lookupKey("section", storeID, name), func() (string, error) {
		return c.next.FindSectionID(ctx, storeID, name)
	})
}

func (c *CachedLookup) FindCategoryID(ctx context.Context, name string) (string, error) {
	return c.through(ctx, lookupKey("category", name), func() (string, error) {
		return c.next.FindCategoryID(ctx, name)
	})
}

func (c *CachedLookup) through(ctx context.Context, key string, load func() (string, error)) (string, error) {
	id, err := c.cache.Get(ctx, key)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, errCacheMiss) {
		c.log.Warn(ctx, "Lookup cache read failed", "key", key, "error", err)
	}

	id, err = load()
	if err != nil {
		return "", err
	}

	if err := c.cache.Set(ctx, key, id, c.ttl); err != nil {
		c.log.Warn(ctx, "Lookup cache write failed", "key", key, "error", err)
	}
	return id, nil
}

func lookupKey(kind string, parts ...string) string {
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return lookupKeyPrefix + kind + ":" + strings.Join(parts, ":")
}
