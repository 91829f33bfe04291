// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"survey_backend/internal/feature/surveys/domain/entity"
	"survey_backend/internal/feature/surveys/usecase"
)

// CachingEntryRepository decorates an EntryRepository with Redis caching of the
// list queries. Single-entry reads always go to the inner repository.
type CachingEntryRepository struct {
	inner     usecase.EntryRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.EntryRepository = (*CachingEntryRepository)(nil)

// NewCachingEntryRepository decorates an EntryRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "surveys".
// A nil rdb disables caching.
func NewCachingEntryRepository(rdb *redis.Client, ttl time.Duration, inner usecase.EntryRepository, namespace string) *CachingEntryRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "surveys"
	}
	return &CachingEntryRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Insert stores the entry and drops cached listings.
func (c *CachingEntryRepository) Insert(ctx context.Context, e *entity.Entry) error {
	if err := c.inner.Insert(ctx, e); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// FindByID is never cached.
func (c *CachingEntryRepository) FindByID(ctx context.Context, id string) (*entity.Entry, error) {
	return c.inner.FindByID(ctx, id)
}

// FindAll returns every entry, checking the cache first.
func (c *CachingEntryRepository) FindAll(ctx context.Context) ([]entity.Entry, error) {
	return c.cachedList(ctx, allKey, c.inner.FindAll)
}

// FindByOwner returns one user's entries, checking the cache first.
func (c *CachingEntryRepository) FindByOwner(ctx context.Context, userID string) ([]entity.Entry, error) {
	return c.cachedList(ctx, ownerKey(userID), func(ctx context.Context) ([]entity.Entry, error) {
		return c.inner.FindByOwner(ctx, userID)
	})
}

// Replace updates the entry and drops cached listings.
func (c *CachingEntryRepository) Replace(ctx context.Context, id string, f entity.Fields, updatedAt time.Time) error {
	if err := c.inner.Replace(ctx, id, f, updatedAt); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// Remove deletes the entry and drops cached listings.
func (c *CachingEntryRepository) Remove(ctx context.Context, id string) error {
	if err := c.inner.Remove(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// Invalidate retires every cached listing in the namespace by bumping its generation.
// Callers use it when entries disappear outside this repository, e.g. a user cascade delete.
func (c *CachingEntryRepository) Invalidate(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Incr(ctx, c.genKey()).Err()
}

// cachedList serves key from the current generation. A list loaded before a write is
// stored under the generation it was read with, so a concurrent invalidation leaves
// it unreachable.
func (c *CachingEntryRepository) cachedList(ctx context.Context, key string, load func(context.Context) ([]entity.Entry, error)) ([]entity.Entry, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return load(ctx)
	}

	gen, err := c.generation(ctx)
	if err != nil {
		slog.Warn("entry cache generation lookup failed", "namespace", c.namespace, "error", err)
		return load(ctx)
	}
	key = c.namespace + ":" + gen + ":" + key

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.Entry
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := load(ctx)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
			slog.Warn("entry cache store failed", "key", key, "error", err)
		}
	}
	return out, nil
}

// generation returns the namespace's current generation; "0" before the first write.
func (c *CachingEntryRepository) generation(ctx context.Context) (string, error) {
	gen, err := c.rdb.Get(ctx, c.genKey()).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	return gen, err
}

// invalidate is the best-effort form of Invalidate used after writes.
func (c *CachingEntryRepository) invalidate(ctx context.Context) {
	if err := c.Invalidate(ctx); err != nil {
		slog.Warn("entry cache invalidation failed", "namespace", c.namespace, "error", err)
	}
}

func (c *CachingEntryRepository) genKey() string {
	return c.namespace + ":gen"
}

const allKey = "all"

func ownerKey(userID string) string {
	return "owner:" + safe(userID)
}
