package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"task-manager/backend/internal/task/domain"
)

const cacheKeyPrefix = "task:"

// CachedRepository is a read-through Redis cache in front of another Repository. Only single-task
// lookups are cached; writes go to the inner repository first and then evict the cached copy.
// Cache failures are logged and fall through to the inner repository.
type CachedRepository struct {
	inner Repository
	rdb   redis.Cmdable
	ttl   time.Duration
}

// NewCachedRepository wraps inner with a Redis cache whose entries expire after ttl.
func NewCachedRepository(inner Repository, rdb redis.Cmdable, ttl time.Duration) *CachedRepository {
	return &CachedRepository{inner: inner, rdb: rdb, ttl: ttl}
}

func (r *CachedRepository) Create(ctx context.Context, t *domain.Task) error {
	return r.inner.Create(ctx, t)
}

func (r *CachedRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	raw, err := r.rdb.Get(ctx, cacheKey(id)).Bytes()
	switch {
	case err == nil:
		var t domain.Task
		if jsonErr := json.Unmarshal(raw, &t); jsonErr == nil {
			return &t, nil
		}
		log.Printf("task cache: dropping undecodable entry for %s", id)
		r.evict(ctx, id)
	case !errors.Is(err, redis.Nil):
		log.Printf("task cache: get %s: %v", id, err)
	}

	t, err := r.inner.GetByID(ctx, id)
	if err != nil || t == nil {
		return t, err
	}
	if payload, err := json.Marshal(t); err == nil {
		if err := r.rdb.Set(ctx, cacheKey(id), payload, r.ttl).Err(); err != nil {
			log.Printf("task cache: set %s: %v", id, err)
		}
	}
	return t, nil
}

func (r *CachedRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Task, error) {
	return r.inner.ListByOwner(ctx, ownerID, limit, offset)
}

func (r *CachedRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	return r.inner.CountByOwner(ctx, ownerID)
}

func (r *CachedRepository) Update(ctx context.Context, t *domain.Task) (bool, error) {
	ok, err := r.inner.Update(ctx, t)
	r.evict(ctx, t.ID)
	return ok, err
}

func (r *CachedRepository) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	ok, err := r.inner.Delete(ctx, id, ownerID)
	r.evict(ctx, id)
	return ok, err
}

func (r *CachedRepository) evict(ctx context.Context, id string) {
	if err := r.rdb.Del(ctx, cacheKey(id)).Err(); err != nil {
		log.Printf("task cache: evict %s: %v", id, err)
	}
}

func cacheKey(id string) string {
	return cacheKeyPrefix + id
}
