package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"worknow/internal/domain"
	"worknow/internal/models"

	"github.com/rs/zerolog"
)

const recoveryProbeInterval = time.Minute

// FailoverSessionRepository serves from the primary (Redis) repository and
// degrades to the in-memory fallback when the primary fails, probing for
// recovery once a minute.
type FailoverSessionRepository struct {
	primary  domain.SessionRepository
	fallback domain.SessionRepository
	logger   *zerolog.Logger

	isDown    atomic.Bool
	mu        sync.Mutex
	lastProbe time.Time
}

func NewFailoverSessionRepository(primary, fallback domain.SessionRepository, logger *zerolog.Logger) *FailoverSessionRepository {
	return &FailoverSessionRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverSessionRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("primary session repository failed, falling back to memory")
	r.isDown.Store(true)
	r.mu.Lock()
	r.lastProbe = time.Now()
	r.mu.Unlock()
}

// shouldProbe reports whether enough time passed to retry the primary.
func (r *FailoverSessionRepository) shouldProbe() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if time.Since(r.lastProbe) < recoveryProbeInterval {
		return false
	}
	r.lastProbe = time.Now()
	return true
}

func (r *FailoverSessionRepository) GetCart(ctx context.Context, sessionID string) (*models.CartSelection, error) {
	if !r.isDown.Load() {
		cart, err := r.primary.GetCart(ctx, sessionID)
		if err == nil {
			return cart, nil
		}
		r.markDown(err)
	} else if r.shouldProbe() {
		cart, err := r.primary.GetCart(ctx, sessionID)
		if err == nil {
			r.isDown.Store(false)
			return cart, nil
		}
	}
	return r.fallback.GetCart(ctx, sessionID)
}

func (r *FailoverSessionRepository) SaveCart(ctx context.Context, cart *models.CartSelection) error {
	if !r.isDown.Load() {
		err := r.primary.SaveCart(ctx, cart)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.SaveCart(ctx, cart)
}

func (r *FailoverSessionRepository) ClearCart(ctx context.Context, sessionID string) error {
	if !r.isDown.Load() {
		err := r.primary.ClearCart(ctx, sessionID)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.ClearCart(ctx, sessionID)
}

func (r *FailoverSessionRepository) GetState(ctx context.Context, sessionID string) (*models.SessionState, error) {
	if !r.isDown.Load() {
		state, err := r.primary.GetState(ctx, sessionID)
		if err == nil {
			return state, nil
		}
		r.markDown(err)
	}
	return r.fallback.GetState(ctx, sessionID)
}

func (r *FailoverSessionRepository) SetState(ctx context.Context, state *models.SessionState) error {
	if !r.isDown.Load() {
		err := r.primary.SetState(ctx, state)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.SetState(ctx, state)
}

func (r *FailoverSessionRepository) ClearState(ctx context.Context, sessionID string) error {
	if !r.isDown.Load() {
		err := r.primary.ClearState(ctx, sessionID)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.ClearState(ctx, sessionID)
}

func (r *FailoverSessionRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.markDown(err)
	}
	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}
