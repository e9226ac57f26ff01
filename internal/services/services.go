package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/reelsync/internal/models"
	"github.com/desertthunder/reelsync/internal/shared"
	"golang.org/x/oauth2"
)

const DefaultBaseURL string = "http://localhost:8000/api/v1"

// LikeResult is the server's answer to a like toggle. LikesCount is nil when the server omits it.
type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount *int `json:"likes_count"`
}

// FollowResult is the server's answer to a follow toggle.
type FollowResult struct {
	IsFollowing bool `json:"is_following"`
}

// Client talks to the video service API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for baseURL. A non-empty token is sent as a bearer token.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	var hc *http.Client
	if token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		hc = oauth2.NewClient(context.Background(), src)
	} else {
		hc = &http.Client{}
	}
	hc.Timeout = timeout
	return NewClientWithHTTP(baseURL, hc)
}

// NewClientWithHTTP creates a client using a caller-supplied [http.Client].
func NewClientWithHTTP(baseURL string, client *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: client}
}

// BaseURL returns the API root the client was configured with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// LikeVideo toggles the caller's like on a video.
func (c *Client) LikeVideo(ctx context.Context, videoID string) (*LikeResult, error) {
	var result LikeResult
	if err := c.doRequest(ctx, http.MethodPost, "/videos/"+url.PathEscape(videoID)+"/like", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ToggleFollow toggles the caller's follow on a user.
func (c *Client) ToggleFollow(ctx context.Context, userID string) (*FollowResult, error) {
	var result FollowResult
	if err := c.doRequest(ctx, http.MethodPost, "/users/follow/"+url.PathEscape(userID), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RecordView reports one view of a video.
func (c *Client) RecordView(ctx context.Context, videoID string) error {
	return c.doRequest(ctx, http.MethodPost, "/videos/"+url.PathEscape(videoID)+"/view", nil)
}

// UnreadNotifications lists the caller's unread notifications.
func (c *Client) UnreadNotifications(ctx context.Context) ([]models.Notification, error) {
	var items []models.Notification
	if err := c.doRequest(ctx, http.MethodGet, "/notifications/unread", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// MarkNotificationRead acknowledges a notification.
func (c *Client) MarkNotificationRead(ctx context.Context, id int64) error {
	return c.doRequest(ctx, http.MethodPost, "/notifications/"+strconv.FormatInt(id, 10)+"/read", nil)
}

func (c *Client) doRequest(ctx context.Context, method, endpoint string, result any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %w", shared.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %w", shared.ErrNetworkFailure, err)
		}
	}
	return nil
}

// statusError maps a non-2xx response to a sentinel, keeping the server's detail message when present.
func statusError(resp *http.Response) error {
	var errResp struct {
		Detail string `json:"detail"`
	}
	detail := fmt.Sprintf("status %d", resp.StatusCode)
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Detail != "" {
		detail = fmt.Sprintf("status %d: %s", resp.StatusCode, errResp.Detail)
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", shared.ErrNotFound, detail)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", shared.ErrNotAuthenticated, detail)
	default:
		return fmt.Errorf("%w: %s", shared.ErrNetworkFailure, detail)
	}
}
