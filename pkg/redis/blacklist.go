package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ashascraft/storefront-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// TokenBlacklist remembers revoked access tokens until they would have expired anyway.
type TokenBlacklist interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// NewTokenBlacklist is Redis-backed when c is non-nil and in-process otherwise.
func NewTokenBlacklist(c *redis.Client) TokenBlacklist {
	if c == nil {
		logger.Warn("Redis unavailable, token blacklist kept in memory", nil)
		return &memoryBlacklist{entries: make(map[string]time.Time)}
	}
	return &redisBlacklist{client: c}
}

type redisBlacklist struct {
	client *redis.Client
}

func blacklistKey(token string) string {
	return fmt.Sprintf("blacklist:%s", token)
}

func (b *redisBlacklist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, blacklistKey(token), "revoked", ttl).Err(); err != nil {
		logger.Error("Failed to blacklist token", err, nil)
		return err
	}
	logger.Debug("Token blacklisted", map[string]interface{}{
		"ttl": ttl.String(),
	})
	return nil
}

func (b *redisBlacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	val, err := b.client.Get(ctx, blacklistKey(token)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		logger.Error("Failed to check token blacklist", err, nil)
		return false, err
	}
	return val == "revoked", nil
}

type memoryBlacklist struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func (b *memoryBlacklist) Revoke(_ context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	for t, exp := range b.entries {
		if now.After(exp) {
			delete(b.entries, t)
		}
	}
	b.entries[token] = now.Add(ttl)
	return nil
}

func (b *memoryBlacklist) IsRevoked(_ context.Context, token string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	exp, ok := b.entries[token]
	if !ok {
		return false, nil
	}
	if time.Now().After(exp) {
		delete(b.entries, token)
		return false, nil
	}
	return true, nil
}
