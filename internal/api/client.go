// Package api is the HTTP client for the inventory backend. All
// persistence, aggregation and authentication live on the other side of
// this contract; the client just moves JSON and reports failures.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"phonecrm/internal/model"
)

// DefaultTimeout bounds every request when the config does not say
// otherwise. There are no retries anywhere.
const DefaultTimeout = 10 * time.Second

// Config wires a client instance to its session. The token source and
// the expiry callback are injected per instance.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// Token returns the current bearer token, "" when logged out.
	Token func() string
	// OnAuthExpired runs on any 401/403 to an authenticated request.
	OnAuthExpired func()
}

type Client struct {
	base string
	http *http.Client
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := Chain(http.DefaultTransport,
		WithBearer(cfg.Token),
		WithAuthWatch(cfg.OnAuthExpired),
		WithBrotli(),
	)
	return &Client{
		base: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{Transport: transport, Timeout: timeout},
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token. Every failure
// collapses into ErrLoginFailed; the backend does not tell us more and
// the login form shows one fixed message anyway.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/login", loginRequest{Username: username, Password: password})
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", ErrLoginFailed
	}
	var out loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if out.Token == "" {
		return "", ErrLoginFailed
	}
	return out.Token, nil
}

// ListItems fetches one page of rows for a tab, optionally filtered by
// search text. A page shorter than limit means the end of the data.
func (c *Client) ListItems(ctx context.Context, tab, search string, limit, offset int) ([]model.Item, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/items", nil)
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	q.Set("tab", tab)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	if search != "" {
		q.Set("search", search)
	}
	req.URL.RawQuery = q.Encode()

	var items []model.Item
	if err := c.do(req, &items); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// Stats fetches the backend-computed aggregates for a tab.
func (c *Client) Stats(ctx context.Context, tab string) (model.Stats, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/stats", nil)
	if err != nil {
		return model.Stats{}, err
	}
	q := req.URL.Query()
	q.Set("tab", tab)
	req.URL.RawQuery = q.Encode()

	var stats model.Stats
	if err := c.do(req, &stats); err != nil {
		return model.Stats{}, fmt.Errorf("fetch stats: %w", err)
	}
	return stats, nil
}

// CreateItem asks the backend for one default row in a tab and returns
// the created row.
func (c *Client) CreateItem(ctx context.Context, tab string) (model.Item, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/items", map[string]string{"tab": tab})
	if err != nil {
		return model.Item{}, err
	}
	var item model.Item
	if err := c.do(req, &item); err != nil {
		return model.Item{}, fmt.Errorf("create item: %w", err)
	}
	return item, nil
}

// createConcurrency caps how many create requests run at once during a
// bulk add.
const createConcurrency = 8

// CreateItems issues count create requests through a bounded pool. The
// first failure cancels the remaining requests, but rows the backend
// already created are returned alongside the error so callers can keep
// them. Rows come back ordered by id.
func (c *Client) CreateItems(ctx context.Context, tab string, count int) ([]model.Item, error) {
	var (
		mu      sync.Mutex
		created []model.Item
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(createConcurrency)
	for i := 0; i < count; i++ {
		g.Go(func() error {
			item, err := c.CreateItem(ctx, tab)
			if err != nil {
				return err
			}
			mu.Lock()
			created = append(created, item)
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	sort.Slice(created, func(i, j int) bool { return created[i].ID < created[j].ID })
	return created, err
}

// UpdateItem sends a single-field update. The caller has already
// patched its local copy; it rolls back if this returns an error.
func (c *Client) UpdateItem(ctx context.Context, id int64, field string, value any) error {
	req, err := c.newRequest(ctx, http.MethodPut, fmt.Sprintf("/items/%d", id), map[string]any{field: value})
	if err != nil {
		return err
	}
	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("update item %d: %w", id, err)
	}
	return nil
}

// DeleteItem removes a row server-side.
func (c *Client) DeleteItem(ctx context.Context, id int64) error {
	req, err := c.newRequest(ctx, http.MethodDelete, fmt.Sprintf("/items/%d", id), nil)
	if err != nil {
		return err
	}
	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("delete item %d: %w", id, err)
	}
	return nil
}

// ReturnItem reverts a sold row to unsold and returns the backend's
// updated representation, which replaces the local row wholesale.
func (c *Client) ReturnItem(ctx context.Context, id int64) (model.Item, error) {
	req, err := c.newRequest(ctx, http.MethodPost, fmt.Sprintf("/items/%d/return", id), nil)
	if err != nil {
		return model.Item{}, err
	}
	var item model.Item
	if err := c.do(req, &item); err != nil {
		return model.Item{}, fmt.Errorf("return item %d: %w", id, err)
	}
	return item, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do runs the request and decodes a JSON body into out when out is
// non-nil. Non-2xx responses become *Error.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError turns a non-2xx response into *Error, picking up the
// backend's {"error": "..."} body when there is one.
func decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))

	var wire struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &wire); err == nil && wire.Error != "" {
		apiErr.Message = wire.Error
		return apiErr
	}
	if msg := strings.TrimSpace(string(body)); msg != "" && len(msg) <= 200 {
		apiErr.Message = msg
	}
	return apiErr
}
