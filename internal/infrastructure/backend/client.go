// Package backend is the HTTP client for the logistics backend REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/logistics/console/internal/domain/dispatch"
	"github.com/logistics/console/internal/domain/inventory"
	"github.com/logistics/console/internal/domain/route"
	"github.com/logistics/console/internal/domain/shared"
	"github.com/logistics/console/internal/infrastructure/config"
	"github.com/logistics/console/internal/infrastructure/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// ErrRequestFailed is returned for every failed backend call.
// Status codes and bodies are logged, never surfaced.
var ErrRequestFailed = shared.ErrRequestFailed

// maxResponseSize bounds how much of a backend response is read
const maxResponseSize = 10 * 1024 * 1024

// HeaderRequestID carries the console request ID to the backend
const HeaderRequestID = "X-Request-ID"

// API is the set of backend operations used by the console
type API interface {
	FetchInventory(ctx context.Context) ([]inventory.Item, error)
	CreateInventoryItem(ctx context.Context, item inventory.Item) (inventory.Item, error)
	CreateDispatch(ctx context.Context, req dispatch.Request) (dispatch.Response, error)
	OptimizeRoute(ctx context.Context, start string, points []string) (route.RouteResponse, error)
}

// Client talks to the logistics backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for failed calls
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a backend client from config
func NewClient(cfg config.BackendConfig, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type inventoryListResponse struct {
	Items []inventory.Item `json:"items"`
}

type inventoryCreateResponse struct {
	Message string          `json:"message"`
	Item    *inventory.Item `json:"item"`
}

// FetchInventory lists all inventory items
func (c *Client) FetchInventory(ctx context.Context) ([]inventory.Item, error) {
	var resp inventoryListResponse
	if err := c.doRequest(ctx, http.MethodGet, "/inventory", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Items == nil {
		return []inventory.Item{}, nil
	}
	return resp.Items, nil
}

// CreateInventoryItem adds an item and returns the item as stored by the backend
func (c *Client) CreateInventoryItem(ctx context.Context, item inventory.Item) (inventory.Item, error) {
	var resp inventoryCreateResponse
	if err := c.doRequest(ctx, http.MethodPost, "/inventory", item, &resp); err != nil {
		return inventory.Item{}, err
	}
	if resp.Item == nil {
		return item, nil
	}
	return *resp.Item, nil
}

// CreateDispatch creates a dispatch and returns its optimized route
func (c *Client) CreateDispatch(ctx context.Context, req dispatch.Request) (dispatch.Response, error) {
	var resp dispatch.Response
	if err := c.doRequest(ctx, http.MethodPost, "/dispatch", req, &resp); err != nil {
		return dispatch.Response{}, err
	}
	return resp, nil
}

// OptimizeRoute orders points into a route starting at start
func (c *Client) OptimizeRoute(ctx context.Context, start string, points []string) (route.RouteResponse, error) {
	var resp route.RouteResponse
	body := route.OptimizeRequest{Start: start, Points: points}
	if err := c.doRequest(ctx, http.MethodPost, "/routes/optimize", body, &resp); err != nil {
		return route.RouteResponse{}, err
	}
	return resp, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body, out any) error {
	log := logger.WithLogger(ctx, c.logger).With(
		zap.String("backend_method", method),
		zap.String("backend_path", path),
	)

	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return ErrRequestFailed.Wrap(fmt.Errorf("invalid backend url: %w", err))
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return ErrRequestFailed.Wrap(fmt.Errorf("failed to encode request: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return ErrRequestFailed.Wrap(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if rid := logger.GetRequestID(ctx); rid != "" {
		req.Header.Set(HeaderRequestID, rid)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("Backend request failed", zap.Error(err))
		return ErrRequestFailed.Wrap(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		log.Warn("Failed to read backend response", zap.Int("status", resp.StatusCode), zap.Error(err))
		return ErrRequestFailed.Wrap(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("Backend returned error status", zap.Int("status", resp.StatusCode))
		return ErrRequestFailed.Wrap(fmt.Errorf("HTTP %d", resp.StatusCode))
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		log.Warn("Failed to decode backend response", zap.Int("status", resp.StatusCode), zap.Error(err))
		return ErrRequestFailed.Wrap(fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

var _ API = (*Client)(nil)
