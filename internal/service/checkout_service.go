package service

import (
	"context"
	"errors"
	"time"

	"worknow/internal/domain"
	"worknow/internal/events"
	"worknow/internal/metrics"
	"worknow/internal/models"
	"worknow/internal/remote"

	"github.com/rs/zerolog"
)

var (
	ErrNoTimeSelected   = errors.New("no time range selected")
	ErrNotAuthenticated = errors.New("customer is not authenticated")
	ErrPhoneMissing     = errors.New("customer phone number is missing")
)

// CheckoutService is the single entry point from a finished selection to
// the checkout page: it gates on customer state, validates the range with
// the backend overlap check, and persists the durable handoff.
type CheckoutService struct {
	carts    domain.CartManager
	backend  domain.BackendClient
	store    domain.CheckoutStore
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewCheckoutService(carts domain.CartManager, backend domain.BackendClient, store domain.CheckoutStore, eventBus domain.EventPublisher, logger *zerolog.Logger) *CheckoutService {
	return &CheckoutService{
		carts:    carts,
		backend:  backend,
		store:    store,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Gate reports why checkout is currently unavailable for this cart and
// customer; an empty result means the proceed action is enabled. Each
// precondition yields its own error so the UI can explain it separately.
func (s *CheckoutService) Gate(cart *models.CartSelection, customer *models.Customer) []error {
	var reasons []error
	if cart == nil || !cart.HasTime() {
		reasons = append(reasons, ErrNoTimeSelected)
	}
	if customer == nil {
		reasons = append(reasons, ErrNotAuthenticated)
	} else if customer.Phone == "" {
		reasons = append(reasons, ErrPhoneMissing)
	}
	return reasons
}

// Proceed runs the fail-fast checkout sequence. On conflict or failure the
// cart is left untouched, so the user can simply pick another time.
func (s *CheckoutService) Proceed(ctx context.Context, sessionID string, customer *models.Customer) (*models.CheckoutHandoff, error) {
	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if reasons := s.Gate(cart, customer); len(reasons) > 0 {
		metrics.IncCheckout(metrics.OutcomeRejected)
		return nil, reasons[0]
	}

	if err := s.backend.CheckTimesOverlap(ctx, cart.WorkspaceID, cart.StartTime, cart.EndTime); err != nil {
		switch {
		case errors.Is(err, remote.ErrTimeRangeInUse), errors.Is(err, remote.ErrOutsideOperatingHours):
			metrics.IncOverlapCheck(metrics.OutcomeConflict)
			s.publishConflict(cart, err)
		default:
			metrics.IncOverlapCheck(metrics.OutcomeError)
			s.logger.Error().Err(err).Str("session_id", sessionID).Msg("overlap check failed")
		}
		return nil, err
	}
	metrics.IncOverlapCheck(metrics.OutcomeOK)

	handoff := &models.CheckoutHandoff{
		SessionID:    cart.SessionID,
		WorkspaceID:  cart.WorkspaceID,
		AmenityList:  cart.AmenityList,
		BeverageList: cart.BeverageList,
		Total:        cart.Total,
		StartTime:    cart.StartTime,
		EndTime:      cart.EndTime,
		CreatedAt:    time.Now(),
	}

	if err := s.store.Put(ctx, handoff); err != nil {
		metrics.IncCheckout(metrics.OutcomeError)
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to persist checkout handoff")
		return nil, err
	}

	metrics.IncCheckout(metrics.OutcomeOK)
	s.publish(events.EventCheckoutRequested, cart)

	s.logger.Info().
		Str("session_id", sessionID).
		Str("workspace_id", cart.WorkspaceID).
		Int64("total", cart.Total).
		Msg("checkout handoff created")

	return handoff, nil
}

func (s *CheckoutService) publish(eventType string, cart *models.CartSelection) {
	if s.eventBus == nil {
		return
	}
	_ = s.eventBus.PublishJSON(eventType, events.BookingEventPayload{
		SessionID:   cart.SessionID,
		WorkspaceID: cart.WorkspaceID,
		PriceMode:   cart.PriceMode,
		StartTime:   cart.StartTime,
		EndTime:     cart.EndTime,
		Total:       cart.Total,
	})
}

func (s *CheckoutService) publishConflict(cart *models.CartSelection, cause error) {
	if s.eventBus == nil {
		return
	}
	_ = s.eventBus.PublishJSON(events.EventCheckoutConflict, events.BookingEventPayload{
		SessionID:   cart.SessionID,
		WorkspaceID: cart.WorkspaceID,
		StartTime:   cart.StartTime,
		EndTime:     cart.EndTime,
		Reason:      cause.Error(),
	})
}
