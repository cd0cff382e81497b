// Package cache memoizes raw bulletin query results in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jjenkins/visabulletin/internal/model"
)

const keyPrefix = "visabulletin:"

// ErrMiss is returned when a key is not cached
var ErrMiss = errors.New("cache miss")

// RowCache stores raw bulletin rows keyed by query
type RowCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a RowCache over an existing client
func New(client *redis.Client, ttl time.Duration) *RowCache {
	return &RowCache{client: client, ttl: ttl}
}

// Dial connects to Redis and verifies the connection
func Dial(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RowCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return New(client, ttl), nil
}

// Close releases the underlying client
func (c *RowCache) Close() error {
	return c.client.Close()
}

// LatestKey is the key of the latest snapshot
func LatestKey() string {
	return keyPrefix + "latest"
}

// TrendKey is the key of one trend series
func TrendKey(q model.TrendQuery) string {
	return fmt.Sprintf("%strend:%s:%s:%s:%d", keyPrefix, q.CategoryCode, q.RegionCode, q.TableType, q.Months)
}

// Get loads rows stored under key. It returns ErrMiss when nothing is stored.
func (c *RowCache) Get(ctx context.Context, key string) ([]model.RawBulletinRow, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	var rows []model.RawBulletinRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return rows, nil
}

// Set stores rows under key with the cache TTL
func (c *RowCache) Set(ctx context.Context, key string, rows []model.RawBulletinRow) error {
	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Invalidate drops every cached query. Called after an import.
func (c *RowCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache keys: %w", err)
	}
	return nil
}
