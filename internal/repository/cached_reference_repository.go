package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CachedReferenceRepository keeps the active category and location lists in Redis.
// Single-row lookups always go to the wrapped repository.
type CachedReferenceRepository struct {
	ReferenceRepository
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedReferenceRepository wraps inner. A nil client disables caching.
func NewCachedReferenceRepository(inner ReferenceRepository, client *redis.Client, prefix string, ttl time.Duration, logger *zap.Logger) *CachedReferenceRepository {
	return &CachedReferenceRepository{
		ReferenceRepository: inner,
		client:              client,
		prefix:              prefix,
		ttl:                 ttl,
		logger:              logger,
	}
}

// CategoriesKey is the Redis key holding the active categories.
func (r *CachedReferenceRepository) CategoriesKey() string {
	return r.prefix + ":ref:categories"
}

// LocationsKey is the Redis key holding the active locations.
func (r *CachedReferenceRepository) LocationsKey() string {
	return r.prefix + ":ref:locations"
}

func (r *CachedReferenceRepository) ListActiveCategories(ctx context.Context) ([]domain.Category, error) {
	return cachedList(ctx, r, r.CategoriesKey(), r.ReferenceRepository.ListActiveCategories)
}

func (r *CachedReferenceRepository) ListActiveLocations(ctx context.Context) ([]domain.Location, error) {
	return cachedList(ctx, r, r.LocationsKey(), r.ReferenceRepository.ListActiveLocations)
}

// Invalidate drops both cached lists.
func (r *CachedReferenceRepository) Invalidate(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	return r.client.Del(ctx, r.CategoriesKey(), r.LocationsKey()).Err()
}

func cachedList[T any](ctx context.Context, r *CachedReferenceRepository, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	if r.client == nil {
		return load(ctx)
	}

	raw, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var items []T
		if err := json.Unmarshal(raw, &items); err == nil {
			return items, nil
		}
		r.logger.Warn("discarding malformed cache entry", zap.String("key", key))
	case err != redis.Nil:
		r.logger.Warn("reference cache read failed", zap.String("key", key), zap.Error(err))
	}

	items, err := load(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return items, nil
	}
	if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		r.logger.Warn("reference cache write failed", zap.String("key", key), zap.Error(err))
	}
	return items, nil
}
