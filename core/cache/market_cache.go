// Package cache implements a short-lived Redis cache for decoded market
// state. Market info changes with every accepted bet, so entries carry a
// small TTL; a stale read only costs an extra simulation, never a wrong
// transaction, because all writes re-simulate against the live ledger.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/hackpredict/sdk-go/core/types"
)

// ErrMiss is returned when the cache has no entry for a market.
var ErrMiss = errors.New("market cache miss")

const defaultMarketTTL = 15 * time.Second

// MarketCache caches decoded MarketInfo keyed by contract address.
//
// Key schema:
//
//	market:info:{address} - JSON-serialized types.MarketInfo
type MarketCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// Config holds connection parameters for the cache.
type Config struct {
	Addr     string
	Password string
	DB       int
	// TTL for cached market info; zero selects the default.
	TTL time.Duration
}

// NewMarketCache connects to Redis and verifies connectivity.
func NewMarketCache(ctx context.Context, cfg Config) (*MarketCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "redis ping")
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultMarketTTL
	}
	return &MarketCache{rdb: rdb, ttl: ttl}, nil
}

func marketInfoKey(addr types.ContractAddress) string {
	return "market:info:" + string(addr)
}

// Set stores a market's decoded info with the cache TTL.
func (c *MarketCache) Set(ctx context.Context, addr types.ContractAddress, info *types.MarketInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return errors.Wrapf(err, "marshal market info %s", addr)
	}
	if err := c.rdb.Set(ctx, marketInfoKey(addr), data, c.ttl).Err(); err != nil {
		return errors.Wrapf(err, "set market info %s", addr)
	}
	return nil
}

// Get returns a cached market's info, or ErrMiss.
func (c *MarketCache) Get(ctx context.Context, addr types.ContractAddress) (*types.MarketInfo, error) {
	data, err := c.rdb.Get(ctx, marketInfoKey(addr)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errors.Wrapf(ErrMiss, "market %s", addr)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get market info %s", addr)
	}
	info := &types.MarketInfo{}
	if err := json.Unmarshal(data, info); err != nil {
		return nil, errors.Wrapf(err, "unmarshal market info %s", addr)
	}
	return info, nil
}

// Invalidate drops a market's cached info. Called after any write that lands
// on the market so the next read observes the new pools.
func (c *MarketCache) Invalidate(ctx context.Context, addr types.ContractAddress) error {
	return errors.Wrapf(c.rdb.Del(ctx, marketInfoKey(addr)).Err(),
		"invalidate market info %s", addr)
}

func (c *MarketCache) Close() error { return c.rdb.Close() }
