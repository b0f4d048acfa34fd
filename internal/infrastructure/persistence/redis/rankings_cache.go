// Package redis caches derived read models (rankings and violation
// statistics) so the aggregation snapshot is not rebuilt on every
// request. A cache outage degrades to recomputation, never to an error
// surfaced to the caller.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/thidua-hub/school-merit-hub/internal/domain/period"
	"github.com/thidua-hub/school-merit-hub/internal/domain/ranking"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config holds Redis connection configuration.
type Config struct {
	// Host is the Redis server hostname.
	Host string

	// Port is the Redis server port.
	Port int

	// Password is the Redis authentication password (empty if no auth).
	Password string

	// DB is the Redis database number (0-15).
	DB int

	// TTL is how long cached rankings stay valid without invalidation.
	TTL time.Duration
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Host: "localhost",
		Port: 6379,
		DB:   0,
		TTL:  5 * time.Minute,
	}
}

// Addr returns the Redis address in "host:port" format.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS AND KEYS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrCacheMiss is returned when the requested key is not found in cache.
	ErrCacheMiss = errors.New("cache: key not found")
)

const (
	keyRankings       = "rankings:"
	keyViolationStats = "violation_stats:"
)

func windowKey(prefix string, periodType period.Type, targetID string) string {
	return prefix + string(periodType) + ":" + targetID
}

// ══════════════════════════════════════════════════════════════════════════════
// RANKINGS CACHE
// ══════════════════════════════════════════════════════════════════════════════

// RankingsCache stores computed ranking and statistics tables as JSON
// blobs keyed by window. Satisfies the query layer's Cache port.
type RankingsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRankingsCache creates a RankingsCache and verifies the connection
// with a ping.
func NewRankingsCache(ctx context.Context, cfg Config) (*RankingsCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: failed to ping: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultConfig().TTL
	}

	return &RankingsCache{client: client, ttl: ttl}, nil
}

// Close closes the underlying client.
func (c *RankingsCache) Close() error {
	return c.client.Close()
}

// GetRankings returns the cached ranking table for the window, with a
// hit flag.
func (c *RankingsCache) GetRankings(ctx context.Context, periodType period.Type, targetID string) ([]ranking.Item, bool, error) {
	data, err := c.client.Get(ctx, windowKey(keyRankings, periodType, targetID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis: get rankings: %w", err)
	}

	var items []ranking.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false, fmt.Errorf("redis: decode rankings: %w", err)
	}
	return items, true, nil
}

// SetRankings caches the ranking table for the window.
func (c *RankingsCache) SetRankings(ctx context.Context, periodType period.Type, targetID string, items []ranking.Item) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("redis: encode rankings: %w", err)
	}
	return c.client.Set(ctx, windowKey(keyRankings, periodType, targetID), data, c.ttl).Err()
}

// GetViolationStats returns the cached statistics table for the window,
// with a hit flag.
func (c *RankingsCache) GetViolationStats(ctx context.Context, periodType period.Type, targetID string) ([]ranking.ViolationStat, bool, error) {
	data, err := c.client.Get(ctx, windowKey(keyViolationStats, periodType, targetID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis: get violation stats: %w", err)
	}

	var stats []ranking.ViolationStat
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, false, fmt.Errorf("redis: decode violation stats: %w", err)
	}
	return stats, true, nil
}

// SetViolationStats caches the statistics table for the window.
func (c *RankingsCache) SetViolationStats(ctx context.Context, periodType period.Type, targetID string, stats []ranking.ViolationStat) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("redis: encode violation stats: %w", err)
	}
	return c.client.Set(ctx, windowKey(keyViolationStats, periodType, targetID), data, c.ttl).Err()
}

// InvalidateAll drops every cached window. Score writes and lock
// changes can shift any window's totals, so the whole namespace goes.
func (c *RankingsCache) InvalidateAll(ctx context.Context) error {
	for _, prefix := range []string{keyRankings, keyViolationStats} {
		iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("redis: scan %s: %w", prefix, err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis: delete %s: %w", prefix, err)
			}
		}
	}
	return nil
}
