// Package cache provides the Redis-backed session cache.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"returnsdesk/src/core/domain"
	"returnsdesk/src/core/ports"
)

const keyPrefix = "returnsdesk:session:"

// Connect initializes a Redis client from URL or host:port input.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisSessionCache stores users of validated access tokens with a TTL.
// Keys are SHA-256 digests so raw tokens never reach Redis.
type RedisSessionCache struct {
	client redis.UniversalClient
}

var (
	_ ports.SessionCache    = (*RedisSessionCache)(nil)
	_ ports.ExternalService = (*RedisSessionCache)(nil)
)

// NewRedisSessionCache creates the session cache adapter.
func NewRedisSessionCache(client redis.UniversalClient) *RedisSessionCache {
	return &RedisSessionCache{client: client}
}

// Get implements ports.SessionCache.
func (c *RedisSessionCache) Get(ctx context.Context, accessToken string) (*domain.SessionUser, error) {
	raw, err := c.client.Get(ctx, tokenKey(accessToken)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var user domain.SessionUser
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decode cached session user: %w", err)
	}
	return &user, nil
}

// Put implements ports.SessionCache.
func (c *RedisSessionCache) Put(ctx context.Context, accessToken string, user *domain.SessionUser, ttl time.Duration) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}
	return c.client.Set(ctx, tokenKey(accessToken), raw, ttl).Err()
}

// Health implements ports.ExternalService.
func (c *RedisSessionCache) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (c *RedisSessionCache) Close() error {
	return c.client.Close()
}

func tokenKey(accessToken string) string {
	sum := sha256.Sum256([]byte(accessToken))
	return keyPrefix + hex.EncodeToString(sum[:])
}
