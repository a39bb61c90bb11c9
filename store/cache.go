package store

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachedStore puts a redis read-through cache in front of GetOrder. Every
// entry carries the order's UpdatedAt as a version and is only ever
// replaced by a newer one, so a slow read cannot put an old status back
// after an update. Cache errors are logged and the primary store answers
// instead.
type CachedStore struct {
	Store
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedStore {
	return &CachedStore{
		Store:  primary,
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

// KEYS[1] order key; ARGV version, payload, ttl in ms.
var putIfNewer = redis.NewScript(`
local current = redis.call("HGET", KEYS[1], "v")
if current and tonumber(current) >= tonumber(ARGV[1]) then
	return 0
end
redis.call("HSET", KEYS[1], "v", ARGV[1], "d", ARGV[2])
redis.call("PEXPIRE", KEYS[1], ARGV[3])
return 1
`)

func orderCacheKey(id uint) string {
	return "order:" + strconv.FormatUint(uint64(id), 10)
}

func (c *CachedStore) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	key := orderCacheKey(id)

	cached, err := c.rdb.HGet(ctx, key, "d").Bytes()
	if err == nil {
		var order models.Order
		if err := json.Unmarshal(cached, &order); err == nil {
			return &order, nil
		}
	} else if err != redis.Nil {
		c.logger.Warn("order cache read failed", zap.Uint("order_id", id), zap.Error(err))
	}

	order, err := c.Store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.put(ctx, order); err != nil {
		c.logger.Warn("order cache write failed", zap.Uint("order_id", id), zap.Error(err))
	}
	return order, nil
}

// put stores order unless the cache already holds the same or a later
// version of it.
func (c *CachedStore) put(ctx context.Context, order *models.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return putIfNewer.Run(ctx, c.rdb, []string{orderCacheKey(order.ID)},
		order.UpdatedAt.UnixMicro(), data, c.ttl.Milliseconds()).Err()
}

// UpdateOrderStatus writes the new state through to the cache. If that
// fails, or the update itself fails, the entry is dropped instead.
func (c *CachedStore) UpdateOrderStatus(ctx context.Context, id uint, mutate OrderMutation) (*models.Order, *models.Order, error) {
	before, after, err := c.Store.UpdateOrderStatus(ctx, id, mutate)

	detached := context.WithoutCancel(ctx)
	if err == nil {
		perr := c.put(detached, after)
		if perr == nil {
			return before, after, nil
		}
		c.logger.Warn("order cache write failed", zap.Uint("order_id", id), zap.Error(perr))
	}
	if derr := c.rdb.Del(detached, orderCacheKey(id)).Err(); derr != nil {
		c.logger.Warn("order cache invalidation failed", zap.Uint("order_id", id), zap.Error(derr))
	}
	return before, after, err
}
