package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"worknow/internal/config"
	"worknow/internal/domain"
	"worknow/internal/models"
	"worknow/internal/remote"
	"worknow/internal/selection"
	"worknow/internal/service"
	"worknow/internal/timefmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// User-facing messages are Vietnamese, matching the marketplace frontend.
const (
	MsgChooseTime       = "Vui lòng chọn thời gian đặt chỗ"
	MsgLoginRequired    = "Vui lòng đăng nhập để tiếp tục"
	MsgPhoneRequired    = "Vui lòng cập nhật số điện thoại"
	MsgDateInPast       = "Không thể chọn thời gian trong quá khứ"
	MsgDateTooFar       = "Chỉ có thể đặt chỗ cho hôm nay hoặc ngày mai"
	MsgInvalidSelection = "Thời gian đã chọn không hợp lệ"
	MsgSelectorMismatch = "Hình thức đặt chỗ không phù hợp với không gian này"
	MsgGeneric          = "Có lỗi xảy ra, vui lòng thử lại sau"
)

// errSelectorMismatch is returned when the requested selection mode does not
// match the venue's hours: the hourly picker on an around-the-clock venue,
// or the 24h picker on a venue with posted opening hours.
var errSelectorMismatch = errors.New("selection mode does not match workspace hours")

// Selection modes accepted by the time endpoint.
const (
	ModeHourly   = "hourly"
	Mode24h      = "24h"
	ModeDayRange = "day_range"
)

// HTTPServer is the gateway's public surface: it owns booking sessions and
// forwards the selection flow to the cart, availability and checkout
// services.
type HTTPServer struct {
	cfg       config.APIConfig
	selection config.SelectionConfig

	carts        domain.CartManager
	states       domain.StateManager
	backend      domain.BackendClient
	availability *service.AvailabilityService
	checkout     *service.CheckoutService
	handoffs     domain.CheckoutStore
	sessions     SessionRateLimiter

	exporter   ScheduleExporter
	workspaces []models.Workspace

	server *http.Server
	auth   *HTTPAuth
	logger *zerolog.Logger
	now    func() time.Time
}

// ScheduleExporter writes an availability report for a set of workspaces.
type ScheduleExporter interface {
	Export(ctx context.Context, workspaces []models.Workspace, startDate, endDate time.Time) (string, error)
}

// SessionRateLimiter enforces the shared per-session request budget. It is
// backed by the session repository so the count holds across gateway
// instances and restarts.
type SessionRateLimiter interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type Deps struct {
	Carts        domain.CartManager
	States       domain.StateManager
	Backend      domain.BackendClient
	Availability *service.AvailabilityService
	Checkout     *service.CheckoutService
	Handoffs     domain.CheckoutStore

	// optional: per-session rate limiting on top of the per-client one
	Sessions SessionRateLimiter

	// optional: enables the admin export endpoint
	Exporter   ScheduleExporter
	Workspaces []models.Workspace
}

func NewHTTPServer(cfg config.APIConfig, selectionCfg config.SelectionConfig, deps Deps, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{
		cfg:          cfg,
		selection:    selectionCfg,
		carts:        deps.Carts,
		states:       deps.States,
		backend:      deps.Backend,
		availability: deps.Availability,
		checkout:     deps.Checkout,
		handoffs:     deps.Handoffs,
		sessions:     deps.Sessions,
		exporter:     deps.Exporter,
		workspaces:   deps.Workspaces,
		logger:       logger,
		now:          time.Now,
	}
	srv.auth = NewHTTPAuth(cfg)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/sessions", srv.handleCreateSession)
	mux.HandleFunc("/api/v1/sessions/", srv.handleSession)
	mux.HandleFunc("/api/v1/workspaces/", srv.handleWorkspace)
	mux.HandleFunc("/api/v1/admin/export", srv.handleExport)
	mux.HandleFunc("/healthz", srv.handleHealth)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return errors.New("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the routed handler for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sessionID := uuid.NewString()
	if err := s.states.SetSessionState(r.Context(), sessionID, models.StepSelectMode, nil); err != nil {
		s.writeMapped(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"sessionId": sessionID})
}

// handleSession dispatches /api/v1/sessions/{id}/{action}.
func (s *HTTPServer) handleSession(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/sessions/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	sessionID, action := parts[0], parts[1]

	if !s.allowSession(r.Context(), sessionID) {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	switch {
	case action == "workspace" && r.Method == http.MethodPut:
		s.handleSetWorkspace(w, r, sessionID)
	case action == "time" && r.Method == http.MethodPut:
		s.handleSetTime(w, r, sessionID)
	case action == "time" && r.Method == http.MethodDelete:
		s.handleClearTime(w, r, sessionID)
	case action == "items" && r.Method == http.MethodPost:
		s.handleSetItem(w, r, sessionID)
	case action == "items" && r.Method == http.MethodDelete:
		s.handleClearItems(w, r, sessionID)
	case action == "cart" && r.Method == http.MethodGet:
		s.handleGetCart(w, r, sessionID)
	case action == "checkout" && r.Method == http.MethodPost:
		s.handleCheckout(w, r, sessionID)
	case action == "handoff" && r.Method == http.MethodPost:
		s.handleConsumeHandoff(w, r, sessionID)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// allowSession applies the shared per-session budget. Repository errors fail
// open: the failover repository already degrades to memory, and a broken
// limiter must not take the booking flow down with it.
func (s *HTTPServer) allowSession(ctx context.Context, sessionID string) bool {
	if s.sessions == nil {
		return true
	}
	allowed, err := s.sessions.CheckRateLimit(ctx, sessionID, models.RateLimitRequests, time.Duration(models.RateLimitWindow)*time.Second)
	if err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("session rate limit check failed")
		return true
	}
	return allowed
}

func (s *HTTPServer) handleSetWorkspace(w http.ResponseWriter, r *http.Request, sessionID string) {
	var body struct {
		WorkspaceID string `json:"workspaceId"`
		PriceMode   string `json:"priceMode"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.WorkspaceID == "" {
		writeError(w, http.StatusBadRequest, "workspaceId is required")
		return
	}

	ws, err := s.backend.Workspace(r.Context(), body.WorkspaceID)
	if err != nil {
		s.writeMapped(w, err)
		return
	}

	cart, err := s.carts.SetWorkspace(r.Context(), sessionID, ws, body.PriceMode)
	if err != nil {
		s.writeMapped(w, err)
		return
	}

	_ = s.states.SetSessionState(r.Context(), sessionID, models.StepSelectDate, map[string]interface{}{
		"workspace_id": ws.ID,
	})

	writeJSON(w, http.StatusOK, cart)
}

// timeRequest carries one selector's input form; the server runs the
// matching state machine and stores only the resolved range.
type timeRequest struct {
	Mode string `json:"mode"`

	Date      string `json:"date,omitempty"`
	StartHour *int   `json:"startHour,omitempty"`
	StartMin  *int   `json:"startMinute,omitempty"`

	EndDate string `json:"endDate,omitempty"`
	EndHour *int   `json:"endHour,omitempty"`
	EndMin  *int   `json:"endMinute,omitempty"`

	FromDate string `json:"fromDate,omitempty"`
	ToDate   string `json:"toDate,omitempty"`
}

func (s *HTTPServer) handleSetTime(w http.ResponseWriter, r *http.Request, sessionID string) {
	var body timeRequest
	if !decodeBody(w, r, &body) {
		return
	}

	cart, err := s.carts.Get(r.Context(), sessionID)
	if err != nil {
		s.writeMapped(w, err)
		return
	}
	if cart.WorkspaceID == "" {
		s.writeMapped(w, service.ErrNoWorkspace)
		return
	}

	ws, err := s.backend.Workspace(r.Context(), cart.WorkspaceID)
	if err != nil {
		s.writeMapped(w, err)
		return
	}

	rng, err := s.resolveRange(body, ws)
	if err != nil {
		s.writeMapped(w, err)
		return
	}

	cart, err = s.carts.SetTime(r.Context(), sessionID, rng.StartLabel(), rng.EndLabel())
	if err != nil {
		s.writeMapped(w, err)
		return
	}

	_ = s.states.SetSessionState(r.Context(), sessionID, models.StepReadyToBook, map[string]interface{}{
		"workspace_id": cart.WorkspaceID,
	})

	writeJSON(w, http.StatusOK, cart)
}

// resolveRange runs the picker matching the requested mode. The hourly and
// 24h selectors are tied to the venue's hours, so a mode the venue does not
// operate in is rejected up front.
func (s *HTTPServer) resolveRange(body timeRequest, ws *models.Workspace) (selection.Range, error) {
	switch body.Mode {
	case ModeHourly:
		if ws.Open24h {
			return selection.Range{}, errSelectorMismatch
		}
		picker := selection.NewHourlyPicker(ws.OpenHour, ws.CloseHour, s.now)
		date, err := timefmt.ParseDate(body.Date)
		if err != nil {
			return selection.Range{}, fmt.Errorf("invalid date: %w", err)
		}
		if err := picker.SetDate(date); err != nil {
			return selection.Range{}, err
		}
		if body.StartHour != nil {
			if err := picker.SetStart(*body.StartHour, minuteOrZero(body.StartMin)); err != nil {
				return selection.Range{}, err
			}
		}
		return picker.Range()

	case Mode24h:
		if !ws.Open24h {
			return selection.Range{}, errSelectorMismatch
		}
		minDuration := time.Duration(s.selection.MinDurationMinutes) * time.Minute
		picker := selection.NewAllDayPicker(s.selection.MaxAdvanceDays, minDuration, s.now)
		date, err := timefmt.ParseDate(body.Date)
		if err != nil {
			return selection.Range{}, fmt.Errorf("invalid date: %w", err)
		}
		if err := picker.SetStartDate(date); err != nil {
			return selection.Range{}, err
		}
		if body.StartHour != nil {
			if err := picker.SetStartTime(*body.StartHour, minuteOrZero(body.StartMin)); err != nil {
				return selection.Range{}, err
			}
		}
		if body.EndDate != "" && body.EndHour != nil {
			endDate, err := timefmt.ParseDate(body.EndDate)
			if err != nil {
				return selection.Range{}, fmt.Errorf("invalid end date: %w", err)
			}
			if err := picker.SetEnd(endDate, *body.EndHour, minuteOrZero(body.EndMin)); err != nil {
				return selection.Range{}, err
			}
		}
		return picker.Range()

	case ModeDayRange:
		picker := selection.NewDayRangePicker(s.now)
		from, err := timefmt.ParseDate(body.FromDate)
		if err != nil {
			return selection.Range{}, fmt.Errorf("invalid from date: %w", err)
		}
		to, err := timefmt.ParseDate(body.ToDate)
		if err != nil {
			return selection.Range{}, fmt.Errorf("invalid to date: %w", err)
		}
		if err := picker.SetRange(from, to); err != nil {
			return selection.Range{}, err
		}
		return picker.Range()

	default:
		return selection.Range{}, fmt.Errorf("unknown selection mode %q", body.Mode)
	}
}

func (s *HTTPServer) handleClearTime(w http.ResponseWriter, r *http.Request, sessionID string) {
	cart, err := s.carts.ClearTime(r.Context(), sessionID)
	if err != nil {
		s.writeMapped(w, err)
		return
	}

	// the session is back to choosing a time for the kept workspace
	_ = s.states.SetSessionState(r.Context(), sessionID, models.StepSelectTime, map[string]interface{}{
		"workspace_id": cart.WorkspaceID,
	})

	writeJSON(w, http.StatusOK, cart)
}

func (s *HTTPServer) handleSetItem(w http.ResponseWriter, r *http.Request, sessionID string) {
	var body struct {
		Type      string `json:"type"`
		ID        string `json:"id"`
		Name      string `json:"name"`
		Quantity  int64  `json:"quantity"`
		UnitPrice int64  `json:"unitPrice"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	line := models.CartLine{ID: body.ID, Name: body.Name, Quantity: body.Quantity, UnitPrice: body.UnitPrice}

	var (
		cart *models.CartSelection
		err  error
	)
	switch body.Type {
	case "amenity":
		cart, err = s.carts.SetAmenity(r.Context(), sessionID, line)
	case "beverage":
		cart, err = s.carts.SetBeverage(r.Context(), sessionID, line)
	default:
		writeError(w, http.StatusBadRequest, "type must be amenity or beverage")
		return
	}
	if err != nil {
		s.writeMapped(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (s *HTTPServer) handleClearItems(w http.ResponseWriter, r *http.Request, sessionID string) {
	cart, err := s.carts.ClearBeverageAndAmenity(r.Context(), sessionID)
	if err != nil {
		s.writeMapped(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (s *HTTPServer) handleGetCart(w http.ResponseWriter, r *http.Request, sessionID string) {
	cart, err := s.carts.Get(r.Context(), sessionID)
	if err != nil {
		s.writeMapped(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (s *HTTPServer) handleCheckout(w http.ResponseWriter, r *http.Request, sessionID string) {
	var body struct {
		Customer *models.Customer `json:"customer"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	handoff, err := s.checkout.Proceed(r.Context(), sessionID, body.Customer)
	if err != nil {
		s.writeMapped(w, err)
		return
	}

	_ = s.states.ClearSessionState(r.Context(), sessionID)
	writeJSON(w, http.StatusOK, handoff)
}

// handleConsumeHandoff hands the stored checkout snapshot to the checkout
// page. Consumption is one-shot: a second request for the same session gets
// a 404.
func (s *HTTPServer) handleConsumeHandoff(w http.ResponseWriter, r *http.Request, sessionID string) {
	if s.handoffs == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	handoff, err := s.handoffs.Take(r.Context(), sessionID)
	if err != nil {
		s.writeMapped(w, err)
		return
	}
	if handoff == nil {
		writeError(w, http.StatusNotFound, "no pending checkout for this session")
		return
	}
	writeJSON(w, http.StatusOK, handoff)
}

// handleWorkspace dispatches /api/v1/workspaces/{id}/unavailable.
func (s *HTTPServer) handleWorkspace(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/workspaces/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] != "unavailable" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	overview, err := s.availability.Overview(r.Context(), parts[0], s.now())
	if err != nil {
		s.writeMapped(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// handleExport writes the schedule report for the watched workspaces.
func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.exporter == nil || len(s.workspaces) == 0 {
		writeError(w, http.StatusNotFound, "export is not configured")
		return
	}

	var body struct {
		FromDate string `json:"fromDate"`
		ToDate   string `json:"toDate"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	from, err := timefmt.ParseDate(body.FromDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from date")
		return
	}
	to, err := timefmt.ParseDate(body.ToDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to date")
		return
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "toDate is before fromDate")
		return
	}

	path, err := s.exporter.Export(r.Context(), s.workspaces, from, to)
	if err != nil {
		s.writeMapped(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"file": path})
}

// writeMapped translates domain errors into status codes and the Vietnamese
// messages the frontend shows as toasts.
func (s *HTTPServer) writeMapped(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, remote.ErrTimeRangeInUse):
		writeError(w, http.StatusConflict, remote.MsgTimeRangeInUse)
	case errors.Is(err, remote.ErrOutsideOperatingHours):
		writeError(w, http.StatusConflict, remote.MsgOutsideOperatingHours)
	case errors.Is(err, service.ErrNoTimeSelected), errors.Is(err, service.ErrPartialTimeRange):
		writeError(w, http.StatusBadRequest, MsgChooseTime)
	case errors.Is(err, service.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, MsgLoginRequired)
	case errors.Is(err, service.ErrPhoneMissing):
		writeError(w, http.StatusBadRequest, MsgPhoneRequired)
	case errors.Is(err, service.ErrNoWorkspace):
		writeError(w, http.StatusBadRequest, "workspace is not selected")
	case errors.Is(err, errSelectorMismatch):
		writeError(w, http.StatusBadRequest, MsgSelectorMismatch)
	case errors.Is(err, selection.ErrDateInPast):
		writeError(w, http.StatusBadRequest, MsgDateInPast)
	case errors.Is(err, selection.ErrDateTooFar):
		writeError(w, http.StatusBadRequest, MsgDateTooFar)
	case errors.Is(err, selection.ErrNoDate),
		errors.Is(err, selection.ErrInvalidClock),
		errors.Is(err, selection.ErrEndBeforeMin),
		errors.Is(err, selection.ErrRangeReversed),
		errors.Is(err, service.ErrEndBeforeStart):
		writeError(w, http.StatusBadRequest, MsgInvalidSelection)
	default:
		s.logger.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, MsgGeneric)
	}
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func minuteOrZero(m *int) int {
	if m == nil {
		return 0
	}
	return *m
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
