// Package redis provides a Redis-backed revocation denylist. Revoked jtis
// are stored as keys with a TTL matching the token's remaining lifetime, so
// Redis expires them on its own and DeleteExpired has nothing to do.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "revoked:"

type RevokedTokens struct {
	client *redis.Client
}

func NewRevokedTokens(client *redis.Client) *RevokedTokens {
	return &RevokedTokens{client: client}
}

func (r *RevokedTokens) Insert(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Already past its own expiry; verification rejects it regardless.
		return nil
	}
	return r.client.Set(ctx, keyPrefix+jti, "1", ttl).Err()
}

func (r *RevokedTokens) Exists(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, keyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteExpired is a no-op; key TTLs handle expiry.
func (r *RevokedTokens) DeleteExpired(ctx context.Context) error {
	return nil
}

// Ping verifies the Redis connection is alive.
func (r *RevokedTokens) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
