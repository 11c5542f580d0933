// Package maps is the server-side client for the mapping provider.
// The provider key never leaves this package.
package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/logistics/console/internal/domain/route"
	"github.com/logistics/console/internal/domain/shared"
	"github.com/logistics/console/internal/infrastructure/config"
	"github.com/logistics/console/internal/infrastructure/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// ErrProviderFailed is returned when the provider cannot be reached or
// answers with a non-2xx status. Non-OK directions statuses are results, not errors.
var ErrProviderFailed = shared.ErrProviderFailed

const maxResponseSize = 5 * 1024 * 1024

// DirectionsService resolves a directions request into a result.
// Exactly one provider request is made per call.
type DirectionsService interface {
	Route(ctx context.Context, req route.DirectionsRequest) (*route.DirectionsResult, error)
}

// DirectionsClient calls the provider's directions web service
type DirectionsClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures the provider clients
type Option func(*options)

type options struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		if hc != nil {
			o.httpClient = hc
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(cfg config.MapsConfig, opts []Option) options {
	o := options{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewDirectionsService returns a provider-backed service, or a disabled one
// when no API key is configured
func NewDirectionsService(cfg config.MapsConfig, opts ...Option) DirectionsService {
	o := buildOptions(cfg, opts)
	if cfg.APIKey == "" {
		o.logger.Warn("Maps API key not configured, route previews are disabled")
		return DisabledDirections{}
	}
	return &DirectionsClient{
		endpoint:   cfg.DirectionsURL,
		apiKey:     cfg.APIKey,
		httpClient: o.httpClient,
		logger:     o.logger,
	}
}

// Route requests driving directions
func (c *DirectionsClient) Route(ctx context.Context, req route.DirectionsRequest) (*route.DirectionsResult, error) {
	endpoint, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, ErrProviderFailed.Wrap(fmt.Errorf("invalid directions url: %w", err))
	}
	endpoint.RawQuery = directionsQuery(req, c.apiKey).Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, ErrProviderFailed.Wrap(fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Accept", "application/json")

	log := logger.WithLogger(ctx, c.logger)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Warn("Directions request failed", zap.Error(redactKey(err, c.apiKey)))
		return nil, ErrProviderFailed.Wrap(redactKey(err, c.apiKey))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, ErrProviderFailed.Wrap(fmt.Errorf("failed to read response: %w", err))
	}
	if resp.StatusCode >= 400 {
		log.Warn("Directions provider returned error status", zap.Int("status", resp.StatusCode))
		return nil, ErrProviderFailed.Wrap(fmt.Errorf("HTTP %d", resp.StatusCode))
	}

	var wire directionsResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, ErrProviderFailed.Wrap(fmt.Errorf("failed to decode response: %w", err))
	}

	result := wire.toDomain()
	if !result.Status.IsOK() {
		log.Info("Directions not available",
			zap.String("status", string(result.Status)),
			zap.String("provider_message", result.ErrorMessage),
		)
	}
	return result, nil
}

func directionsQuery(req route.DirectionsRequest, key string) url.Values {
	q := url.Values{}
	q.Set("origin", req.Origin.String())
	q.Set("destination", req.Destination.String())
	if len(req.Waypoints) > 0 {
		wps := make([]string, 0, len(req.Waypoints))
		for _, wp := range req.Waypoints {
			if wp.Stopover {
				wps = append(wps, wp.Location.String())
			} else {
				wps = append(wps, "via:"+wp.Location.String())
			}
		}
		q.Set("waypoints", strings.Join(wps, "|"))
	}
	q.Set("mode", strings.ToLower(string(req.TravelMode)))
	q.Set("key", key)
	return q
}

// redactKey strips the API key from errors that embed the request URL
func redactKey(err error, key string) error {
	if key == "" || !strings.Contains(err.Error(), key) {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(err.Error(), key, "REDACTED"))
}

// DisabledDirections answers every request with REQUEST_DENIED without
// calling the provider
type DisabledDirections struct{}

// Route implements DirectionsService
func (DisabledDirections) Route(context.Context, route.DirectionsRequest) (*route.DirectionsResult, error) {
	return &route.DirectionsResult{
		Status:       route.StatusRequestDenied,
		ErrorMessage: "maps API key not configured",
	}, nil
}

var (
	_ DirectionsService = (*DirectionsClient)(nil)
	_ DirectionsService = DisabledDirections{}
)
