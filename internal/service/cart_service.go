package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"worknow/internal/domain"
	"worknow/internal/events"
	"worknow/internal/models"
	"worknow/internal/timefmt"

	"github.com/rs/zerolog"
)

var (
	ErrPartialTimeRange = errors.New("start and end must be set together")
	ErrEndBeforeStart   = errors.New("end is not after start")
	ErrNoWorkspace      = errors.New("no workspace selected")
)

// CartService owns the per-session CartSelection. All mutations flow
// through it and every mutation recomputes the total before saving.
type CartService struct {
	repo     domain.SessionRepository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewCartService(repo domain.SessionRepository, eventBus domain.EventPublisher, logger *zerolog.Logger) *CartService {
	return &CartService{repo: repo, eventBus: eventBus, logger: logger}
}

// Get returns the session's cart, or an empty one when nothing is stored.
func (s *CartService) Get(ctx context.Context, sessionID string) (*models.CartSelection, error) {
	cart, err := s.repo.GetCart(ctx, sessionID)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to get cart")
		return nil, err
	}
	if cart == nil {
		cart = &models.CartSelection{SessionID: sessionID}
	}
	return cart, nil
}

// SetWorkspace binds the cart to a workspace and price mode. Moving to a
// different workspace discards the previous selection entirely, so a stale
// time or item list never leaks into the new booking.
func (s *CartService) SetWorkspace(ctx context.Context, sessionID string, ws *models.Workspace, priceMode string) (*models.CartSelection, error) {
	if ws == nil || ws.ID == "" {
		return nil, ErrNoWorkspace
	}
	if priceMode != models.PriceModeHourly && priceMode != models.PriceModeDaily {
		return nil, fmt.Errorf("unknown price mode %q", priceMode)
	}

	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if cart.WorkspaceID != ws.ID {
		cart = &models.CartSelection{SessionID: sessionID}
	}

	cart.WorkspaceID = ws.ID
	cart.PriceMode = priceMode
	cart.PricePerUnit = ws.PriceFor(priceMode)

	return cart, s.save(ctx, cart)
}

// SetTime applies a resolved selection. Both bounds are required; a cart
// never holds half a range.
func (s *CartService) SetTime(ctx context.Context, sessionID, startTime, endTime string) (*models.CartSelection, error) {
	if startTime == "" || endTime == "" {
		return nil, ErrPartialTimeRange
	}

	start, err := timefmt.Parse(startTime)
	if err != nil {
		return nil, fmt.Errorf("invalid start time: %w", err)
	}
	end, err := timefmt.Parse(endTime)
	if err != nil {
		return nil, fmt.Errorf("invalid end time: %w", err)
	}
	if !end.After(start) {
		return nil, ErrEndBeforeStart
	}

	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cart.WorkspaceID == "" {
		return nil, ErrNoWorkspace
	}

	cart.StartTime = startTime
	cart.EndTime = endTime

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}

	s.publish(events.EventSelectionSet, cart)
	return cart, nil
}

// ClearTime drops the selected range, e.g. when a picker is closed with an
// unsaved selection.
func (s *CartService) ClearTime(ctx context.Context, sessionID string) (*models.CartSelection, error) {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cart.StartTime = ""
	cart.EndTime = ""

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}

	s.publish(events.EventSelectionCleared, cart)
	return cart, nil
}

// SetAmenity upserts an amenity line; quantity zero removes it.
func (s *CartService) SetAmenity(ctx context.Context, sessionID string, line models.CartLine) (*models.CartSelection, error) {
	return s.setLine(ctx, sessionID, line, false)
}

// SetBeverage upserts a beverage line; quantity zero removes it.
func (s *CartService) SetBeverage(ctx context.Context, sessionID string, line models.CartLine) (*models.CartSelection, error) {
	return s.setLine(ctx, sessionID, line, true)
}

// ClearBeverageAndAmenity empties both item lists.
func (s *CartService) ClearBeverageAndAmenity(ctx context.Context, sessionID string) (*models.CartSelection, error) {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cart.AmenityList = nil
	cart.BeverageList = nil

	return cart, s.save(ctx, cart)
}

func (s *CartService) setLine(ctx context.Context, sessionID string, line models.CartLine, beverage bool) (*models.CartSelection, error) {
	if line.ID == "" {
		return nil, errors.New("item id is required")
	}
	if line.Quantity < 0 {
		return nil, errors.New("quantity must not be negative")
	}

	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cart.WorkspaceID == "" {
		return nil, ErrNoWorkspace
	}

	list := cart.AmenityList
	if beverage {
		list = cart.BeverageList
	}
	list = upsertLine(list, line)
	if beverage {
		cart.BeverageList = list
	} else {
		cart.AmenityList = list
	}

	return cart, s.save(ctx, cart)
}

func upsertLine(list []models.CartLine, line models.CartLine) []models.CartLine {
	for i, l := range list {
		if l.ID != line.ID {
			continue
		}
		if line.Quantity == 0 {
			return append(list[:i], list[i+1:]...)
		}
		list[i] = line
		return list
	}
	if line.Quantity == 0 {
		return list
	}
	return append(list, line)
}

// save recomputes the total and persists the cart. Total is always
// pricePerUnit times the booked units plus the item lines.
func (s *CartService) save(ctx context.Context, cart *models.CartSelection) error {
	units, err := bookedUnits(cart)
	if err != nil {
		return err
	}
	cart.Total = cart.PricePerUnit*units + cart.ItemsTotal()

	if err := s.repo.SaveCart(ctx, cart); err != nil {
		s.logger.Error().Err(err).Str("session_id", cart.SessionID).Msg("failed to save cart")
		return err
	}
	return nil
}

// bookedUnits derives billable units from the selected range: whole hours
// rounded up in hourly mode, inclusive calendar days in daily mode.
func bookedUnits(cart *models.CartSelection) (int64, error) {
	if !cart.HasTime() {
		return 0, nil
	}

	start, err := timefmt.Parse(cart.StartTime)
	if err != nil {
		return 0, fmt.Errorf("invalid start time: %w", err)
	}
	end, err := timefmt.Parse(cart.EndTime)
	if err != nil {
		return 0, fmt.Errorf("invalid end time: %w", err)
	}

	if cart.PriceMode == models.PriceModeDaily {
		days := timefmt.DayStart(end).Sub(timefmt.DayStart(start))/(24*time.Hour) + 1
		return int64(days), nil
	}

	d := end.Sub(start)
	hours := int64(d / time.Hour)
	if d%time.Hour != 0 {
		hours++
	}
	return hours, nil
}

func (s *CartService) publish(eventType string, cart *models.CartSelection) {
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
