package maps

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/logistics/console/internal/domain/route"
	"github.com/logistics/console/internal/domain/shared"
	"github.com/logistics/console/internal/infrastructure/config"
	"github.com/logistics/console/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ErrStaticMapDisabled is returned when no API key is configured
var ErrStaticMapDisabled = shared.NewDomainError("MAPS_DISABLED", "Map previews are not configured")

// StaticImage is a rendered map image
type StaticImage struct {
	ContentType string
	Body        []byte
}

// StaticMapClient fetches static map images through the server key
type StaticMapClient struct {
	endpoint   string
	apiKey     string
	size       string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewStaticMapClient creates a static map client
func NewStaticMapClient(cfg config.MapsConfig, opts ...Option) *StaticMapClient {
	o := buildOptions(cfg, opts)
	return &StaticMapClient{
		endpoint:   cfg.StaticMapURL,
		apiKey:     cfg.APIKey,
		size:       cfg.StaticSize,
		httpClient: o.httpClient,
		logger:     o.logger,
	}
}

// Enabled reports whether an API key is configured
func (c *StaticMapClient) Enabled() bool {
	return c.apiKey != ""
}

// buildURL renders the provider URL for a viewport and optional encoded path
func (c *StaticMapClient) buildURL(view route.MapView, polyline string) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid static map url: %w", err)
	}
	q := url.Values{}
	q.Set("center", view.Center.String())
	q.Set("zoom", strconv.Itoa(view.Zoom))
	q.Set("size", c.size)
	if polyline = strings.TrimSpace(polyline); polyline != "" {
		q.Set("path", "enc:"+polyline)
	}
	q.Set("key", c.apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Fetch downloads the image for view, drawing polyline when not empty
func (c *StaticMapClient) Fetch(ctx context.Context, view route.MapView, polyline string) (*StaticImage, error) {
	if !c.Enabled() {
		return nil, ErrStaticMapDisabled
	}
	endpoint, err := c.buildURL(view, polyline)
	if err != nil {
		return nil, ErrProviderFailed.Wrap(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, ErrProviderFailed.Wrap(redactKey(err, c.apiKey))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.WithLogger(ctx, c.logger).Warn("Static map request failed", zap.Error(redactKey(err, c.apiKey)))
		return nil, ErrProviderFailed.Wrap(redactKey(err, c.apiKey))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, ErrProviderFailed.Wrap(fmt.Errorf("failed to read image: %w", err))
	}
	if resp.StatusCode >= 400 {
		logger.WithLogger(ctx, c.logger).Warn("Static map provider returned error status", zap.Int("status", resp.StatusCode))
		return nil, ErrProviderFailed.Wrap(fmt.Errorf("HTTP %d", resp.StatusCode))
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}
	return &StaticImage{ContentType: contentType, Body: body}, nil
}
