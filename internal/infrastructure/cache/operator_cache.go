package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/garage/backend/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultOperatorTTL = 10 * time.Minute

// CachedOperatorRepository is a read-through Redis cache in front of the operator
// fee tables. Payment intake reads them on every card payment. Redis failures
// never fail a read; the repository underneath answers instead.
type CachedOperatorRepository struct {
	next   finance.OperatorRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedOperatorRepository wraps next. A nil client disables caching.
func NewCachedOperatorRepository(next finance.OperatorRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedOperatorRepository {
	if ttl <= 0 {
		ttl = defaultOperatorTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedOperatorRepository{next: next, client: client, ttl: ttl, logger: logger}
}

func operatorCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("garage:operator:%s", id)
}

// FindByID returns the cached operator or loads and caches it
func (r *CachedOperatorRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Operator, error) {
	if r.client == nil {
		return r.next.FindByID(ctx, id)
	}

	key := operatorCacheKey(id)
	data, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var op finance.Operator
		if jsonErr := json.Unmarshal(data, &op); jsonErr == nil {
			return &op, nil
		}
		r.logger.Warn("Discarding unreadable operator cache entry", zap.String("key", key))
	case errors.Is(err, redis.Nil):
		r.logger.Debug("Cache miss for operator", zap.String("operator_id", id.String()))
	default:
		r.logger.Warn("Operator cache unavailable, reading from database",
			zap.String("operator_id", id.String()),
			zap.Error(err))
	}

	op, err := r.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, op)
	return op, nil
}

// FindAll always reads the repository
func (r *CachedOperatorRepository) FindAll(ctx context.Context) ([]finance.Operator, error) {
	return r.next.FindAll(ctx)
}

// Save writes through and drops the cached copy
func (r *CachedOperatorRepository) Save(ctx context.Context, op *finance.Operator) error {
	if err := r.next.Save(ctx, op); err != nil {
		return err
	}
	r.Invalidate(ctx, op.ID)
	return nil
}

// Invalidate removes an operator from the cache
func (r *CachedOperatorRepository) Invalidate(ctx context.Context, id uuid.UUID) {
	if r.client == nil {
		return
	}
	if err := r.client.Del(ctx, operatorCacheKey(id)).Err(); err != nil {
		r.logger.Warn("Failed to invalidate operator cache",
			zap.String("operator_id", id.String()),
			zap.Error(err))
	}
}

func (r *CachedOperatorRepository) store(ctx context.Context, op *finance.Operator) {
	data, err := json.Marshal(op)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, operatorCacheKey(op.ID), data, r.ttl).Err(); err != nil {
		r.logger.Debug("Failed to cache operator", zap.String("operator_id", op.ID.String()), zap.Error(err))
	}
}

var _ finance.OperatorRepository = (*CachedOperatorRepository)(nil)
