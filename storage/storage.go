// Package storage wraps the Redis connection used for real-time caching
// and stream fan-out. The engine never touches it; only the coordinator
// does, through the small operation set below.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrKeyNotFound is returned when a read targets a key that was never set,
// e.g. the high-water mark on a fresh database.
var ErrKeyNotFound = errors.New("storage: key not found")

// Client is a thin wrapper over a Redis connection.
type Client struct {
	rdb *redis.Client
}

// Connect opens a Redis connection from a connection string such as
// "redis://127.0.0.1" and verifies it with a ping.
func Connect(ctx context.Context, connectionString string) (*Client, error) {
	opt, err := redis.ParseURL(connectionString)
	if err != nil {
		return nil, fmt.Errorf("parse redis connection string: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	logrus.Infof("connected to redis at %s", opt.Addr)
	return &Client{rdb: rdb}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Set upserts key to value. A zero ttl means no expiry.
func (c *Client) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Get reads the string value at key.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	v, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("get %s: %w", key, ErrKeyNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return v, nil
}

// SAdd adds member to the set at setKey.
func (c *Client) SAdd(ctx context.Context, setKey, member string) error {
	if err := c.rdb.SAdd(ctx, setKey, member).Err(); err != nil {
		return fmt.Errorf("sadd %s: %w", setKey, err)
	}
	return nil
}

// XAdd appends an entry carrying the block height to the given stream.
func (c *Client) XAdd(ctx context.Context, stream string, blockHeight uint64) error {
	err := c.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{"block_height": blockHeight},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", stream, err)
	}
	return nil
}

// LastIndexedBlock reads the resume high-water mark. ErrKeyNotFound means
// no block has ever been indexed.
func (c *Client) LastIndexedBlock(ctx context.Context) (uint64, error) {
	v, err := c.Get(ctx, LastIndexedBlockKey)
	if err != nil {
		return 0, err
	}
	height, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse last indexed block %q: %w", v, err)
	}
	return height, nil
}

// UpdateLastIndexedBlock advances the resume high-water mark.
func (c *Client) UpdateLastIndexedBlock(ctx context.Context, blockHeight uint64) error {
	return c.Set(ctx, LastIndexedBlockKey, strconv.FormatUint(blockHeight, 10), 0)
}
