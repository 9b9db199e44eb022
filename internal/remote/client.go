// Package remote implements the HTTP client for the marketplace backend
// that owns workspaces, reservations and the authoritative overlap check.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"worknow/internal/models"

	"github.com/redis/go-redis/v9"
)

// Typed forms of the backend's sentinel error bodies. The backend reports
// conflicts as plain Vietnamese strings, so the match must stay exact.
var (
	ErrTimeRangeInUse        = errors.New("time range already in use")
	ErrOutsideOperatingHours = errors.New("booking must stay within one day and operating hours")
)

// The backend's literal conflict bodies, also shown to the user as-is.
const (
	MsgTimeRangeInUse        = "Khoảng thời gian đã được sử dụng"
	MsgOutsideOperatingHours = "Thời gian đặt phải trong cùng một ngày và trong giờ hoạt động"
)

const maxBodySize = 1 << 16

// Client is the outbound HTTP client for the marketplace booking API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	redis    *redis.Client
	cacheTTL time.Duration
}

// NewClient constructs a client with a base URL and optional API key.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// UseRedisCache configures optional Redis caching for GET endpoints.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// Workspace fetches the catalog entry for one workspace.
func (c *Client) Workspace(ctx context.Context, id string) (*models.Workspace, error) {
	endpoint := fmt.Sprintf("%s/workspaces/%s", c.baseURL, url.PathEscape(id))
	cacheKey := fmt.Sprintf("workspace:%s", id)

	var wrap struct {
		Workspace models.Workspace `json:"workspace"`
	}
	if c.readCache(ctx, cacheKey, &wrap) {
		return &wrap.Workspace, nil
	}

	if err := c.doGet(ctx, endpoint, &wrap); err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, wrap)
	return &wrap.Workspace, nil
}

// WorkspaceTimes fetches the reservation windows that currently block
// booking for a workspace. An empty list means fully available.
func (c *Client) WorkspaceTimes(ctx context.Context, workspaceID string) ([]models.TimeWindow, error) {
	cacheKey := WorkspaceTimesCacheKey(workspaceID)

	var wrap struct {
		WorkspaceTimes []models.TimeWindow `json:"workspaceTimes"`
	}
	if c.readCache(ctx, cacheKey, &wrap) {
		return wrap.WorkspaceTimes, nil
	}
	return c.FetchWorkspaceTimes(ctx, workspaceID)
}

// FetchWorkspaceTimes always consults the backend, skipping the read-through
// cache. The snapshot refresher depends on this: going through the cached
// read path would hand it back its own previous write and the entry would
// never see a backend change again. The fresh result still lands in the
// cache for subsequent reads.
func (c *Client) FetchWorkspaceTimes(ctx context.Context, workspaceID string) ([]models.TimeWindow, error) {
	endpoint := fmt.Sprintf("%s/users/booking/workspacetimes?WorkspaceId=%s", c.baseURL, url.QueryEscape(workspaceID))

	var wrap struct {
		WorkspaceTimes []models.TimeWindow `json:"workspaceTimes"`
	}
	if err := c.doGet(ctx, endpoint, &wrap); err != nil {
		return nil, err
	}
	c.writeCache(ctx, WorkspaceTimesCacheKey(workspaceID), wrap)
	return wrap.WorkspaceTimes, nil
}

// WorkspaceTimesCacheKey is shared with the snapshot refresher so warm
// cache entries are found on the read path.
func WorkspaceTimesCacheKey(workspaceID string) string {
	return fmt.Sprintf("workspace_times:%s", workspaceID)
}

type overlapRequest struct {
	WorkspaceID string `json:"workspaceId"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

// CheckTimesOverlap validates a proposed range against existing bookings
// and opening hours. Conflicts surface as ErrTimeRangeInUse or
// ErrOutsideOperatingHours; any other non-2xx response is a transport error.
func (c *Client) CheckTimesOverlap(ctx context.Context, workspaceID, startTime, endTime string) error {
	endpoint := fmt.Sprintf("%s/users/booking/checktimesoverlap", c.baseURL)

	data, err := json.Marshal(overlapRequest{
		WorkspaceID: workspaceID,
		StartDate:   startTime,
		EndDate:     endTime,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(data)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.addHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return err
	}

	// Sentinel bodies may arrive with any status code.
	switch strings.Trim(strings.TrimSpace(string(body)), `"`) {
	case MsgTimeRangeInUse:
		return ErrTimeRangeInUse
	case MsgOutsideOperatingHours:
		return ErrOutsideOperatingHours
	}

	if resp.StatusCode >= 300 {
		return fmt.Errorf("http %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.cacheTTL).Err()
}

func (c *Client) doGet(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	c.addHeaders(req)
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("http %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) addHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
}
