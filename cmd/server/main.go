package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	dispatchapp "github.com/logistics/console/internal/application/dispatch"
	inventoryapp "github.com/logistics/console/internal/application/inventory"
	"github.com/logistics/console/internal/domain/route"
	"github.com/logistics/console/internal/infrastructure/auth"
	"github.com/logistics/console/internal/infrastructure/backend"
	"github.com/logistics/console/internal/infrastructure/cache"
	"github.com/logistics/console/internal/infrastructure/config"
	"github.com/logistics/console/internal/infrastructure/logger"
	"github.com/logistics/console/internal/infrastructure/maps"
	"github.com/logistics/console/internal/infrastructure/telemetry"
	"github.com/logistics/console/internal/interfaces/http/handler"
	"github.com/logistics/console/internal/interfaces/http/middleware"
	"github.com/logistics/console/internal/interfaces/http/router"
	"github.com/logistics/console/internal/interfaces/http/web"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := logger.ForEnvironment(cfg.App.Env)
	logCfg.Service = cfg.App.Name
	if cfg.Log.Level != "" {
		logCfg.Level = cfg.Log.Level
	}
	if cfg.Log.Format != "" {
		logCfg.Format = cfg.Log.Format
	}
	if cfg.Log.Output != "" {
		logCfg.Output = cfg.Log.Output
	}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	// Telemetry pipelines are no-ops unless enabled in config
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize log export", zap.Error(err))
	}

	// Re-create the logger with the OTLP bridge teed in
	log := bootLog
	if loggerProvider.IsEnabled() {
		log, err = logger.New(logCfg, telemetry.NewZapCore(loggerProvider, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level)))
		if err != nil {
			bootLog.Fatal("Failed to initialize logger", zap.Error(err))
		}
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Logistics Console",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("backend", cfg.Backend.BaseURL),
	)

	prom := telemetry.NewPrometheusRegistry("logistics_console")
	meter := meterProvider.Meter("logistics-console")
	metrics, err := telemetry.NewConsoleMetrics(meter, prom)
	if err != nil {
		log.Fatal("Failed to create console metrics", zap.Error(err))
	}

	// Shared state: view cache, submission guard and token revocations
	stores := cache.NewStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.Cache.AllowInMemoryFallback),
	)
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error("Error closing Redis client", zap.Error(err))
		}
	}()

	viewCache, err := stores.CreateViewCache()
	if err != nil {
		log.Fatal("Failed to create view cache", zap.Error(err))
	}
	guard, err := stores.CreateInFlightGuard()
	if err != nil {
		log.Fatal("Failed to create submission guard", zap.Error(err))
	}

	var revocations auth.RevocationStore = auth.NewMemoryRevocationStore()
	healthChecks := map[string]handler.HealthCheck{}
	if client, err := stores.RedisClient(); err == nil {
		revocations = auth.NewRedisRevocationStore(client)
		healthChecks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
	}

	if cfg.MapToken.Secret == "" {
		secret, err := auth.GenerateSecret()
		if err != nil {
			log.Fatal("Failed to generate map token secret", zap.Error(err))
		}
		cfg.MapToken.Secret = secret
		log.Warn("Map token secret not configured, using a random one. Tokens do not survive a restart.")
	}
	tokens := auth.NewMapTokenService(cfg.MapToken, revocations)

	// Upstream clients
	api := backend.NewClient(cfg.Backend, backend.WithLogger(log))
	directions := maps.NewDirectionsService(cfg.Maps, maps.WithLogger(log))
	staticMaps := maps.NewStaticMapClient(cfg.Maps, maps.WithLogger(log))

	view := route.NewMapView(route.Coordinate{Lat: cfg.Maps.CenterLat, Lng: cfg.Maps.CenterLng}, cfg.Maps.Zoom)

	// Application services
	inventoryService := inventoryapp.NewService(api, viewCache, inventoryapp.Config{
		CacheTTL:    cfg.Cache.TTL,
		LoadingWait: cfg.Inventory.LoadingWait,
	}, metrics, log)
	orchestrator := dispatchapp.NewOrchestrator(api, directions, guard, dispatchapp.Config{
		Center:      view.Center,
		Zoom:        view.Zoom,
		InFlightTTL: cfg.Dispatch.InFlightTTL,
	}, metrics, log)

	renderer, err := web.NewRenderer()
	if err != nil {
		log.Fatal("Failed to load page templates", zap.Error(err))
	}

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.HTMLRender = renderer
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	// Global middleware
	tracingCfg := middleware.DefaultTracingConfig()
	tracingCfg.ServiceName = cfg.Telemetry.ServiceName
	tracingCfg.Enabled = tracerProvider.IsEnabled()

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(tracingCfg))
	engine.Use(logger.Recovery(log))
	engine.Use(logger.AccessLog(log, "/health", "/metrics"))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(corsCfg))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{Meter: meter, Prometheus: prom}))
	engine.Use(middleware.Session(middleware.SessionConfig{Secure: cfg.IsProduction()}))
	engine.Use(middleware.SpanEnricher())

	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
		engine.Use(middleware.RateLimit(limiter))
	}

	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, healthChecks)
	engine.GET("/health", systemHandler.Health)
	engine.GET("/metrics", gin.WrapH(prom.Handler()))

	router.Console(engine, router.Handlers{
		Inventory: handler.NewInventoryHandler(inventoryService),
		Dispatch:  handler.NewDispatchHandler(orchestrator, tokens, staticMaps.Enabled()),
		Maps:      handler.NewMapsHandler(tokens, orchestrator, staticMaps, view),
		Routes:    handler.NewRouteHandler(api),
		System:    systemHandler,
		Tokens:    tokens,
		Logger:    log,
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	for name, shutdown := range map[string]func(context.Context) error{
		"tracer": tracerProvider.Shutdown,
		"meter":  meterProvider.Shutdown,
		"logger": loggerProvider.Shutdown,
	} {
		if err := shutdown(shutdownCtx); err != nil {
			log.Warn("Telemetry shutdown failed", zap.String("provider", name), zap.Error(err))
		}
	}

	log.Info("Server exited gracefully")
}
