// Package tokenstore keeps revoked access-token IDs so logged-out tokens are
// rejected until they would have expired anyway.
package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ledgerly/internal/logger"
)

const keyPrefix = "blacklist:jti:"

// Blacklist records and checks revoked token IDs.
type Blacklist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RedisBlacklist stores revoked IDs in Redis with an expiry equal to the
// token's remaining lifetime.
type RedisBlacklist struct {
	client     *redis.Client
	failClosed bool
}

// NewRedisBlacklist wraps an existing client. When failClosed is false a
// Redis outage is reported as "not revoked".
func NewRedisBlacklist(client *redis.Client, failClosed bool) *RedisBlacklist {
	return &RedisBlacklist{client: client, failClosed: failClosed}
}

// Connect builds a client for addr and pings it.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

// Revoke marks jti as revoked for ttl. A non-positive ttl is a no-op since the
// token has already expired.
func (b *RedisBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, keyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti has been revoked.
func (b *RedisBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	n, err := b.client.Exists(ctx, keyPrefix+jti).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		if b.failClosed {
			return true, fmt.Errorf("blacklist lookup: %w", err)
		}
		logger.Get().Warnw("token blacklist unavailable, allowing request", "error", err)
		return false, nil
	}
	return n > 0, nil
}

// Noop is used when no Redis address is configured.
type Noop struct{}

// Revoke does nothing.
func (Noop) Revoke(context.Context, string, time.Duration) error { return nil }

// IsRevoked always reports false.
func (Noop) IsRevoked(context.Context, string) (bool, error) { return false, nil }

var (
	_ Blacklist = (*RedisBlacklist)(nil)
	_ Blacklist = Noop{}
)
