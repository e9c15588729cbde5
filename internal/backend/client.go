// Package backend talks to the remote game backend over HTTP.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zappabad/stocky/internal/news"
	"github.com/zappabad/stocky/internal/notify"
)

// DefaultBaseURL is where the backend listens in local development.
const DefaultBaseURL = "http://localhost:8000"

// Client is a thin JSON client for the backend endpoints stocky reads.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client. A zero timeout means 10 seconds.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// FetchNewsList returns every news record the backend has.
func (c *Client) FetchNewsList(ctx context.Context) ([]news.Record, error) {
	var out []news.Record
	if err := c.getJSON(ctx, "/api/news", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchNewsDetail returns a single record including its content.
func (c *Client) FetchNewsDetail(ctx context.Context, id news.RecordID) (news.Record, error) {
	var out news.Record
	if err := c.getJSON(ctx, fmt.Sprintf("/api/news/%d", id), &out); err != nil {
		return news.Record{}, err
	}
	return out, nil
}

// FetchAllOrders returns every order of a user, filled or not.
func (c *Client) FetchAllOrders(ctx context.Context, userID string) ([]notify.Order, error) {
	var out []notify.Order
	if err := c.getJSON(ctx, "/api/trade/orders/all/"+url.PathEscape(userID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
