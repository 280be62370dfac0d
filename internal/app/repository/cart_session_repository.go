package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ashascraft/storefront-backend/internal/app/cart"
	"github.com/ashascraft/storefront-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// CartSessionRepository stores the lines of one cart per session id.
// A session with nothing stored loads as an empty cart.
type CartSessionRepository interface {
	Load(ctx context.Context, sessionID string) ([]cart.Line, error)
	Save(ctx context.Context, sessionID string, lines []cart.Line) error
	Delete(ctx context.Context, sessionID string) error
}

type redisCartSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCartSessionRepository keeps each cart under cart:<session> with a sliding TTL.
func NewRedisCartSessionRepository(client *redis.Client, ttl time.Duration) CartSessionRepository {
	return &redisCartSessionRepository{client: client, ttl: ttl}
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

func (r *redisCartSessionRepository) Load(ctx context.Context, sessionID string) ([]cart.Line, error) {
	raw, err := r.client.Get(ctx, cartKey(sessionID)).Bytes()
	if err == redis.Nil {
		return []cart.Line{}, nil
	}
	if err != nil {
		logger.Error("Failed to load cart session", err, map[string]interface{}{
			"session_id": sessionID,
		})
		return nil, err
	}

	var lines []cart.Line
	if err := json.Unmarshal(raw, &lines); err != nil {
		logger.Warn("Discarding unreadable cart session", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return []cart.Line{}, nil
	}

	r.client.Expire(ctx, cartKey(sessionID), r.ttl)
	return lines, nil
}

func (r *redisCartSessionRepository) Save(ctx context.Context, sessionID string, lines []cart.Line) error {
	if len(lines) == 0 {
		return r.Delete(ctx, sessionID)
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, cartKey(sessionID), raw, r.ttl).Err(); err != nil {
		logger.Error("Failed to save cart session", err, map[string]interface{}{
			"session_id": sessionID,
		})
		return err
	}
	return nil
}

func (r *redisCartSessionRepository) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, cartKey(sessionID)).Err()
}

type memoryCartSessionRepository struct {
	mu       sync.RWMutex
	sessions map[string][]cart.Line
}

// NewMemoryCartSessionRepository keeps carts in process memory. Used when Redis is not configured.
func NewMemoryCartSessionRepository() CartSessionRepository {
	return &memoryCartSessionRepository{sessions: make(map[string][]cart.Line)}
}

func (r *memoryCartSessionRepository) Load(_ context.Context, sessionID string) ([]cart.Line, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.sessions[sessionID]
	lines := make([]cart.Line, len(stored))
	copy(lines, stored)
	return lines, nil
}

func (r *memoryCartSessionRepository) Save(_ context.Context, sessionID string, lines []cart.Line) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(lines) == 0 {
		delete(r.sessions, sessionID)
		return nil
	}
	stored := make([]cart.Line, len(lines))
	copy(stored, lines)
	r.sessions[sessionID] = stored
	return nil
}

func (r *memoryCartSessionRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
	return nil
}
