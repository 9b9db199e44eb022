package domain

import (
	"context"
	"time"

	"worknow/internal/models"
)

// SessionRepository stores per-session booking state: the cart, the
// selection step, and rate-limit counters.
type SessionRepository interface {
	GetCart(ctx context.Context, sessionID string) (*models.CartSelection, error)
	SaveCart(ctx context.Context, cart *models.CartSelection) error
	ClearCart(ctx context.Context, sessionID string) error

	GetState(ctx context.Context, sessionID string) (*models.SessionState, error)
	SetState(ctx context.Context, state *models.SessionState) error
	ClearState(ctx context.Context, sessionID string) error

	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// BackendClient talks to the marketplace REST API that owns the
// authoritative booking data.
type BackendClient interface {
	Workspace(ctx context.Context, id string) (*models.Workspace, error)
	WorkspaceTimes(ctx context.Context, workspaceID string) ([]models.TimeWindow, error)
	CheckTimesOverlap(ctx context.Context, workspaceID, startTime, endTime string) error
}

// CheckoutStore durably holds checkout handoffs between the moment checkout
// is requested and the moment the checkout page consumes them.
type CheckoutStore interface {
	Put(ctx context.Context, handoff *models.CheckoutHandoff) error
	Take(ctx context.Context, sessionID string) (*models.CheckoutHandoff, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// CartManager exposes the typed cart mutations. Components read the cart
// through it and never mutate the selection directly.
type CartManager interface {
	Get(ctx context.Context, sessionID string) (*models.CartSelection, error)
	SetWorkspace(ctx context.Context, sessionID string, ws *models.Workspace, priceMode string) (*models.CartSelection, error)
	SetTime(ctx context.Context, sessionID, startTime, endTime string) (*models.CartSelection, error)
	ClearTime(ctx context.Context, sessionID string) (*models.CartSelection, error)
	SetAmenity(ctx context.Context, sessionID string, line models.CartLine) (*models.CartSelection, error)
	SetBeverage(ctx context.Context, sessionID string, line models.CartLine) (*models.CartSelection, error)
	ClearBeverageAndAmenity(ctx context.Context, sessionID string) (*models.CartSelection, error)
}

type StateManager interface {
	GetSessionState(ctx context.Context, sessionID string) (*models.SessionState, error)
	SetSessionState(ctx context.Context, sessionID string, step string, data map[string]interface{}) error
	ClearSessionState(ctx context.Context, sessionID string) error
}
