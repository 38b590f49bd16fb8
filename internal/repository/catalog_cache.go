package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Kilat-Rental/service-reservation/internal/domain/vehicle"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const catalogKeyPrefix = "catalog:vehicle:"

// CachedCatalog is a read-through Redis cache in front of a vehicle.Repository.
// Cache failures degrade to the underlying store.
type CachedCatalog struct {
	next   vehicle.Repository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedCatalog wraps next with a Redis cache.
func NewCachedCatalog(next vehicle.Repository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedCatalog {
	return &CachedCatalog{next: next, client: client, ttl: ttl, logger: logger}
}

func catalogKey(id uuid.UUID) string {
	return catalogKeyPrefix + id.String()
}

// FindByID serves from the cache when possible.
func (c *CachedCatalog) FindByID(ctx context.Context, id uuid.UUID) (vehicle.Vehicle, error) {
	key := catalogKey(id)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var v vehicle.Vehicle
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		c.logger.Warn("discarding malformed catalog cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
	}

	v, err := c.next.FindByID(ctx, id)
	if err != nil {
		return vehicle.Vehicle{}, err
	}

	if payload, err := json.Marshal(v); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return v, nil
}

// List is not cached; listings filter on availability.
func (c *CachedCatalog) List(ctx context.Context, filter vehicle.Filter, page, limit int) ([]vehicle.Vehicle, int64, error) {
	return c.next.List(ctx, filter, page, limit)
}

// UpdateAvailability writes through and evicts the cached entry.
func (c *CachedCatalog) UpdateAvailability(ctx context.Context, id uuid.UUID, availability vehicle.Availability) error {
	if err := c.next.UpdateAvailability(ctx, id, availability); err != nil {
		return err
	}
	if err := c.client.Del(ctx, catalogKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to evict catalog cache entry: %w", err)
	}
	return nil
}
