package cache

import (
	"fmt"
	"sync"

	"github.com/logistics/console/internal/domain/shared"
	"github.com/logistics/console/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StoreFactory creates the console's shared stores, backed by one Redis
// client when Redis is reachable and by in-memory stores otherwise
type StoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool

	connectOnce sync.Once
	client      *redis.Client
	connectErr  error
	dial        func(config.RedisConfig) (*redis.Client, error)
}

// StoreFactoryOption is a functional option for configuring the factory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory stores when Redis is unavailable
// Default is true (allow fallback)
func WithInMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewStoreFactory creates a new factory
func NewStoreFactory(cfg config.RedisConfig, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		dial:                  NewRedisClient,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// RedisClient returns the shared Redis client, connecting on first use
func (f *StoreFactory) RedisClient() (*redis.Client, error) {
	f.connectOnce.Do(func() {
		f.client, f.connectErr = f.dial(f.redisConfig)
		if f.connectErr == nil {
			f.logger.Info("connected to Redis", zap.String("addr", f.redisConfig.Addr()))
		}
	})
	return f.client, f.connectErr
}

func (f *StoreFactory) fallback(kind string, err error) error {
	if !f.allowInMemoryFallback {
		return fmt.Errorf("Redis required for %s but unavailable: %w", kind, err)
	}
	f.logger.Warn("Redis unavailable, falling back to in-memory "+kind+". "+
		"State is not shared across console instances.",
		zap.Error(err),
	)
	return nil
}

// CreateViewCache creates the revalidation cache
func (f *StoreFactory) CreateViewCache() (shared.ViewCache, error) {
	client, err := f.RedisClient()
	if err == nil {
		f.logger.Info("using Redis view cache")
		return NewRedisViewCache(client, ""), nil
	}
	if ferr := f.fallback("view cache", err); ferr != nil {
		return nil, ferr
	}
	return NewInMemoryViewCache(), nil
}

// CreateInFlightGuard creates the submission guard
func (f *StoreFactory) CreateInFlightGuard() (shared.InFlightGuard, error) {
	client, err := f.RedisClient()
	if err == nil {
		f.logger.Info("using Redis submission guard")
		return NewRedisInFlightGuard(client, ""), nil
	}
	if ferr := f.fallback("submission guard", err); ferr != nil {
		return nil, ferr
	}
	return NewInMemoryInFlightGuard(), nil
}

// Close closes the shared Redis client, if one was opened
func (f *StoreFactory) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
