package repository

import (
	"context"
	"sync"
	"time"

	"worknow/internal/models"
)

// MemorySessionRepository is the in-process fallback used when Redis is
// unreachable. Entries never expire; the failover wrapper keeps its use
// short-lived.
type MemorySessionRepository struct {
	carts      sync.Map
	states     sync.Map
	rateLimits sync.Map
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{}
}

func (r *MemorySessionRepository) GetCart(ctx context.Context, sessionID string) (*models.CartSelection, error) {
	val, ok := r.carts.Load(sessionID)
	if !ok {
		return nil, nil
	}
	return val.(*models.CartSelection), nil
}

func (r *MemorySessionRepository) SaveCart(ctx context.Context, cart *models.CartSelection) error {
	r.carts.Store(cart.SessionID, cart)
	return nil
}

func (r *MemorySessionRepository) ClearCart(ctx context.Context, sessionID string) error {
	r.carts.Delete(sessionID)
	return nil
}

func (r *MemorySessionRepository) GetState(ctx context.Context, sessionID string) (*models.SessionState, error) {
	val, ok := r.states.Load(sessionID)
	if !ok {
		return nil, nil
	}
	return val.(*models.SessionState), nil
}

func (r *MemorySessionRepository) SetState(ctx context.Context, state *models.SessionState) error {
	r.states.Store(state.SessionID, state)
	return nil
}

func (r *MemorySessionRepository) ClearState(ctx context.Context, sessionID string) error {
	r.states.Delete(sessionID)
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemorySessionRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, ok := r.rateLimits.Load(key)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{count: 1, expiresAt: now.Add(window)}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}

	r.rateLimits.Store(key, entry)
	return entry.count <= limit, nil
}
