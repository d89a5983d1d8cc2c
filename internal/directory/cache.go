package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	cacheVersionKey = "directory:version"
	// InvalidationChannel carries version bumps between processes.
	InvalidationChannel = "directory.bump"
)

// Cache stores whole collections in Redis under versioned keys. Bumping the
// version invalidates every collection at once.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, cacheVersionKey, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// BuildKey composes the cache key with the current version.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(append([]string{"directory"}, parts...), ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", joined, ver), nil
}

// FetchJSON loads a cached value into dest or populates it using the loader.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("directory: cache loader required")
	}
	if c != nil && c.client != nil {
		payload, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			return json.Unmarshal(payload, dest)
		}
		if !errors.Is(err, redis.Nil) {
			return err
		}
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if c != nil && c.client != nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			return err
		}
	}
	return json.Unmarshal(raw, dest)
}

// Bump invalidates the cache by incrementing the version and publishing it.
func (c *Cache) Bump(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Incr(ctx, cacheVersionKey).Result()
	if err != nil {
		return 0, err
	}
	if err := c.client.Publish(ctx, InvalidationChannel, strconv.FormatInt(ver, 10)).Err(); err != nil {
		return ver, err
	}
	return ver, nil
}

// ListenForInvalidation follows version bumps published by other processes
// until ctx is done. onBump is called with each applied version.
func (c *Cache) ListenForInvalidation(ctx context.Context, onBump func(int64)) error {
	if c == nil || c.client == nil {
		return nil
	}
	pubsub := c.client.Subscribe(ctx, InvalidationChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("directory: subscribe invalidations: %w", err)
	}
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				ver, err := strconv.ParseInt(msg.Payload, 10, 64)
				if err != nil {
					continue
				}
				if onBump != nil {
					onBump(ver)
				}
			}
		}
	}()
	return nil
}

// CachedSource decorates a Source with the Redis cache. Concurrent misses for
// the same collection share one load.
type CachedSource struct {
	next   Source
	cache  *Cache
	group  singleflight.Group
	logger *slog.Logger
}

// NewCachedSource wraps next.
func NewCachedSource(next Source, cache *Cache, logger *slog.Logger) *CachedSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedSource{next: next, cache: cache, logger: logger}
}

// Customers implements Source.
func (s *CachedSource) Customers(ctx context.Context) ([]Customer, error) {
	return load(ctx, s, "customers", s.next.Customers)
}

// Engineers implements Source.
func (s *CachedSource) Engineers(ctx context.Context) ([]Engineer, error) {
	return load(ctx, s, "engineers", s.next.Engineers)
}

// Complaints implements Source.
func (s *CachedSource) Complaints(ctx context.Context) ([]Complaint, error) {
	return load(ctx, s, "complaints", s.next.Complaints)
}

// Plans implements Source.
func (s *CachedSource) Plans(ctx context.Context) ([]Plan, error) {
	return load(ctx, s, "plans", s.next.Plans)
}

// Leads implements Source.
func (s *CachedSource) Leads(ctx context.Context) ([]Lead, error) {
	return load(ctx, s, "leads", s.next.Leads)
}

// Invalidate drops every cached collection.
func (s *CachedSource) Invalidate(ctx context.Context) error {
	ver, err := s.cache.Bump(ctx)
	if err != nil {
		return fmt.Errorf("directory: bump cache: %w", err)
	}
	s.logger.Info("directory cache invalidated", slog.Int64("version", ver))
	return nil
}

func load[T any](ctx context.Context, s *CachedSource, name string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	key, err := s.cache.BuildKey(ctx, name)
	if err != nil {
		s.logger.Warn("directory cache unavailable", slog.String("collection", name), slog.Any("error", err))
		return fetch(ctx)
	}
	// Waiters share one fetch, so it must outlive the caller that started it.
	detached := context.WithoutCancel(ctx)
	value, err, _ := s.group.Do(key, func() (any, error) {
		var out []T
		err := s.cache.FetchJSON(detached, key, &out, func(ctx context.Context) (any, error) {
			return fetch(ctx)
		})
		return out, err
	})
	if err != nil {
		return nil, fmt.Errorf("directory: load %s: %w", name, err)
	}
	return value.([]T), nil
}

var _ Source = (*CachedSource)(nil)
