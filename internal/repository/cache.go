package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mercato-shop/mercato-orders-platform/internal/models"
)

const (
	orderKeyPrefix   = "order:"
	userOrdersPrefix = "user_orders:"
	eventSeenPrefix  = "event_seen:"

	defaultCacheTTL = 5 * time.Minute
	eventSeenTTL    = 24 * time.Hour
)

// RedisOrderCache caches order reads and keeps the consumer's fast-path
// dedup keys. The processed_events table stays the source of truth; the
// Redis key just short-circuits obvious redeliveries.
type RedisOrderCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisOrderCache creates a new Redis-based order cache on an injected
// client.
func NewRedisOrderCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisOrderCache {
	if ttl == 0 {
		ttl = defaultCacheTTL
	}

	return &RedisOrderCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Get retrieves an order from cache. A miss returns (nil, nil).
func (c *RedisOrderCache) Get(ctx context.Context, orderID int64) (*models.Order, error) {
	key := orderKeyPrefix + strconv.FormatInt(orderID, 10)

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("cache miss", zap.Int64("order_id", orderID))
		return nil, nil
	}
	if err != nil {
		c.logger.Error("cache get error",
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)
		return nil, err
	}

	var order models.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, err
	}

	c.logger.Debug("cache hit", zap.Int64("order_id", orderID))
	return &order, nil
}

// Set stores an order in cache.
func (c *RedisOrderCache) Set(ctx context.Context, order *models.Order) error {
	key := orderKeyPrefix + strconv.FormatInt(order.ID, 10)

	data, err := json.Marshal(order)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Error("cache set error",
			zap.Int64("order_id", order.ID),
			zap.Error(err),
		)
		return err
	}

	return nil
}

// InvalidateOrder removes a cached order after a write.
func (c *RedisOrderCache) InvalidateOrder(ctx context.Context, orderID int64) error {
	return c.client.Del(ctx, orderKeyPrefix+strconv.FormatInt(orderID, 10)).Err()
}

// InvalidateByUserID removes the cached order list for a user.
func (c *RedisOrderCache) InvalidateByUserID(ctx context.Context, userID string) error {
	return c.client.Del(ctx, userOrdersPrefix+userID).Err()
}

// GetByUserID retrieves the cached order list for a user.
func (c *RedisOrderCache) GetByUserID(ctx context.Context, userID string) ([]*models.Order, error) {
	data, err := c.client.Get(ctx, userOrdersPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var orders []*models.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// SetByUserID caches the order list for a user.
func (c *RedisOrderCache) SetByUserID(ctx context.Context, userID string, orders []*models.Order) error {
	data, err := json.Marshal(orders)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, userOrdersPrefix+userID, data, c.ttl).Err()
}

// MarkEventSeen is the fast-path dedup check for consumers: it is a SETNX,
// so the first caller gets true and later ones false until the key expires.
// Redis loss only costs the fast path; the database ledger still catches the
// duplicate.
func (c *RedisOrderCache) MarkEventSeen(ctx context.Context, eventID string) (bool, error) {
	return c.client.SetNX(ctx, eventSeenPrefix+eventID, 1, eventSeenTTL).Result()
}
