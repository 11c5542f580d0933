package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Inventory InventoryConfig
	Dispatch  DispatchConfig
	Backend   BackendConfig
	Maps      MapsConfig
	MapToken  MapTokenConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Telemetry TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns the host:port address of the Redis server
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// CacheConfig holds revalidation cache settings
type CacheConfig struct {
	TTL                   time.Duration // Upper bound on staleness of a cached view
	AllowInMemoryFallback bool          // Use an in-process cache when Redis is unreachable
}

// InventoryConfig holds inventory view settings
type InventoryConfig struct {
	LoadingWait time.Duration // How long a page waits for the backend before rendering the loading state
}

// DispatchConfig holds dispatch submission settings
type DispatchConfig struct {
	InFlightTTL time.Duration // Upper bound on how long a submission key stays held
}

// BackendConfig holds the logistics backend API settings
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration // 0 = no timeout
}

// MapsConfig holds mapping provider settings. APIKey never leaves the server.
type MapsConfig struct {
	APIKey        string
	DirectionsURL string
	StaticMapURL  string
	CenterLat     float64
	CenterLng     float64
	Zoom          int
	StaticSize    string // e.g. "640x400"
	Timeout       time.Duration
}

// MapTokenConfig holds settings for the short-lived map session tokens
type MapTokenConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	MetricsEnabled    bool    // Export metrics over OTLP
	LogsEnabled       bool    // Export logs over OTLP via the zap bridge
	MetricsInterval   time.Duration
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with LMS_ prefix (e.g., LMS_MAPS_API_KEY)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("LMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Cache: CacheConfig{
			TTL:                   v.GetDuration("cache.ttl"),
			AllowInMemoryFallback: v.GetBool("cache.allow_in_memory_fallback"),
		},
		Inventory: InventoryConfig{
			LoadingWait: v.GetDuration("inventory.loading_wait"),
		},
		Dispatch: DispatchConfig{
			InFlightTTL: v.GetDuration("dispatch.inflight_ttl"),
		},
		Backend: BackendConfig{
			BaseURL: v.GetString("backend.base_url"),
			Timeout: v.GetDuration("backend.timeout"),
		},
		Maps: MapsConfig{
			APIKey:        v.GetString("maps.api_key"),
			DirectionsURL: v.GetString("maps.directions_url"),
			StaticMapURL:  v.GetString("maps.static_map_url"),
			CenterLat:     v.GetFloat64("maps.center_lat"),
			CenterLng:     v.GetFloat64("maps.center_lng"),
			Zoom:          v.GetInt("maps.zoom"),
			StaticSize:    v.GetString("maps.static_size"),
			Timeout:       v.GetDuration("maps.timeout"),
		},
		MapToken: MapTokenConfig{
			Secret: v.GetString("map_token.secret"),
			TTL:    v.GetDuration("map_token.ttl"),
			Issuer: v.GetString("map_token.issuer"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
		},
	}

	// In-memory fallback defaults to on unless explicitly disabled
	if !v.IsSet("cache.allow_in_memory_fallback") {
		cfg.Cache.AllowInMemoryFallback = true
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "logistics-console"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "3000"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 30 * time.Second
	}
	if cfg.Inventory.LoadingWait == 0 {
		cfg.Inventory.LoadingWait = 1500 * time.Millisecond
	}
	if cfg.Dispatch.InFlightTTL == 0 {
		cfg.Dispatch.InFlightTTL = 2 * time.Minute
	}
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = "http://localhost:8000/api"
	}
	// Backend.Timeout stays 0: submitted calls run to completion
	if cfg.Maps.DirectionsURL == "" {
		cfg.Maps.DirectionsURL = "https://maps.googleapis.com/maps/api/directions/json"
	}
	if cfg.Maps.StaticMapURL == "" {
		cfg.Maps.StaticMapURL = "https://maps.googleapis.com/maps/api/staticmap"
	}
	if cfg.Maps.CenterLat == 0 && cfg.Maps.CenterLng == 0 {
		cfg.Maps.CenterLat = 37.7749
		cfg.Maps.CenterLng = -122.4194
	}
	if cfg.Maps.Zoom == 0 {
		cfg.Maps.Zoom = 12
	}
	if cfg.Maps.StaticSize == "" {
		cfg.Maps.StaticSize = "640x400"
	}
	if cfg.Maps.Timeout == 0 {
		cfg.Maps.Timeout = 10 * time.Second
	}
	if cfg.MapToken.TTL == 0 {
		cfg.MapToken.TTL = 10 * time.Minute
	}
	if cfg.MapToken.Issuer == "" {
		cfg.MapToken.Issuer = "logistics-console"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 60 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	// NOTE: CORS origins have no wildcard fallback. An empty list means
	// no cross-origin requests are allowed until explicitly configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "Idempotency-Key"}
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "logistics-console"
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.base_url must be an absolute URL, got %q", c.Backend.BaseURL)
	}
	if c.Backend.Timeout < 0 {
		return fmt.Errorf("backend.timeout cannot be negative")
	}
	if c.Maps.CenterLat < -90 || c.Maps.CenterLat > 90 {
		return fmt.Errorf("maps.center_lat must be between -90 and 90, got %f", c.Maps.CenterLat)
	}
	if c.Maps.CenterLng < -180 || c.Maps.CenterLng > 180 {
		return fmt.Errorf("maps.center_lng must be between -180 and 180, got %f", c.Maps.CenterLng)
	}
	if c.Maps.Zoom < 0 || c.Maps.Zoom > 21 {
		return fmt.Errorf("maps.zoom must be between 0 and 21, got %d", c.Maps.Zoom)
	}

	if c.App.Env == "production" {
		if c.Maps.APIKey == "" {
			return fmt.Errorf("maps.api_key is required in production")
		}
		if c.MapToken.Secret == "" {
			return fmt.Errorf("map_token.secret is required in production")
		}
		if len(c.MapToken.Secret) < 32 {
			return fmt.Errorf("map_token.secret must be at least 32 characters in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// IsProduction reports whether the app runs in production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
