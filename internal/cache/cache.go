// Package cache is the read accelerator in front of the shop tables. Nothing
// stored here is authoritative: every reader falls back to the database on a
// miss, and a nil or disabled cache behaves as a permanent miss.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is the key/value surface the services depend on.
type Cache interface {
	// Get returns the stored value and true, or "" and false when absent.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key. A zero ttl means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

// Redis wraps the process-wide go-redis client.
type Redis struct {
	client *redis.Client
}

// Connect builds the client from a redis:// URL and checks it answers.
func Connect(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}
	opts.DialTimeout = 10 * time.Second
	// Failed calls surface to the caller; the client must not retry them.
	opts.MaxRetries = -1

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}
	slog.Info("cache connected", "addr", opts.Addr, "db", opts.DB)
	return &Redis{client: client}, nil
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache get %s: %w", key, err)
	}
	return val, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache del %v: %w", keys, err)
	}
	return nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the connection pool. Called once on shutdown.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Disabled is used when no REDIS_URL is configured.
type Disabled struct{}

func (Disabled) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (Disabled) Set(context.Context, string, string, time.Duration) error { return nil }
func (Disabled) Delete(context.Context, ...string) error { return nil }
func (Disabled) Ping(context.Context) error { return nil }
