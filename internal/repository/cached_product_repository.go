package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"storefront/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultSnapshotKey is the Redis key holding the cached product collection
const DefaultSnapshotKey = "catalog:snapshot"

type cachedProductSource struct {
	next        ProductSource
	redisClient *redis.Client
	key         string
	ttl         time.Duration
	logger      *zap.Logger
	group       singleflight.Group
}

// NewCachedProductSource wraps next with a Redis snapshot of the whole
// collection. Snapshots expire after ttl, so listings may be up to ttl stale.
// Redis failures are logged and the call falls through to next.
func NewCachedProductSource(next ProductSource, redisClient *redis.Client, ttl time.Duration, logger *zap.Logger) ProductSource {
	return &cachedProductSource{
		next:        next,
		redisClient: redisClient,
		key:         DefaultSnapshotKey,
		ttl:         ttl,
		logger:      logger,
	}
}

// FetchAll serves the snapshot when present. Concurrent misses share a single
// upstream fetch.
func (s *cachedProductSource) FetchAll(ctx context.Context) ([]domain.Product, error) {
	products, err := s.readSnapshot(ctx)
	if err == nil {
		return products, nil
	}
	if !errors.Is(err, redis.Nil) {
		s.logger.Warn("Failed to read catalog snapshot",
			zap.Error(err),
			zap.String("key", s.key),
		)
	}

	v, err, shared := s.group.Do(s.key, func() (interface{}, error) {
		// Detached: every waiter shares this fetch.
		fetchCtx := context.WithoutCancel(ctx)

		products, err := s.next.FetchAll(fetchCtx)
		if err != nil {
			return nil, err
		}

		s.writeSnapshot(fetchCtx, products)
		return products, nil
	})
	if err != nil {
		return nil, err
	}

	if shared {
		s.logger.Debug("Catalog fetch shared between concurrent callers")
	}

	return v.([]domain.Product), nil
}

func (s *cachedProductSource) readSnapshot(ctx context.Context) ([]domain.Product, error) {
	data, err := s.redisClient.Get(ctx, s.key).Bytes()
	if err != nil {
		return nil, err
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, err
	}

	return products, nil
}

func (s *cachedProductSource) writeSnapshot(ctx context.Context, products []domain.Product) {
	data, err := json.Marshal(products)
	if err != nil {
		s.logger.Error("Failed to encode catalog snapshot", zap.Error(err))
		return
	}

	if err := s.redisClient.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		s.logger.Warn("Failed to store catalog snapshot",
			zap.Error(err),
			zap.String("key", s.key),
		)
		return
	}

	s.logger.Debug("Catalog snapshot stored",
		zap.Int("products", len(products)),
		zap.Duration("ttl", s.ttl),
	)
}
