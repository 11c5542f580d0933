// Package inventory serves the inventory view: a cached, de-duplicated
// read of the backend list and the add-item flow.
package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/logistics/console/internal/domain/inventory"
	"github.com/logistics/console/internal/domain/shared"
	"github.com/logistics/console/internal/infrastructure/logger"
	"github.com/logistics/console/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CacheKey is the view cache key of the inventory list
const CacheKey = "inventory"

// Notice texts
const (
	MsgLoadFailed = "Failed to load inventory"
	MsgAdded      = "Inventory item added successfully"
	MsgAddFailed  = "Failed to add inventory item"
)

// Backend is the part of the backend API the inventory view uses
type Backend interface {
	FetchInventory(ctx context.Context) ([]inventory.Item, error)
	CreateInventoryItem(ctx context.Context, item inventory.Item) (inventory.Item, error)
}

// ViewState is the state of the inventory view
type ViewState string

const (
	StateLoading ViewState = "LOADING"
	StateReady   ViewState = "READY"
	StateError   ViewState = "ERROR"
)

// Row is one table row
type Row struct {
	inventory.Item
	LowStock  bool  `json:"low_stock"`
	Shortfall int64 `json:"shortfall,omitempty"`
}

// View is what the inventory page renders
type View struct {
	State         ViewState      `json:"state"`
	Rows          []Row          `json:"items"`
	LowStockCount int            `json:"low_stock_count"`
	Notice        *shared.Notice `json:"notice,omitempty"`
}

// CreateResult is the outcome of the add-item flow
type CreateResult struct {
	Item   inventory.Item `json:"item"`
	Notice shared.Notice  `json:"notice"`
}

// Config tunes the view service
type Config struct {
	CacheTTL    time.Duration
	LoadingWait time.Duration // <= 0 waits for the backend
}

// Service builds inventory views
type Service struct {
	backend Backend
	cache   shared.ViewCache
	group   singleflight.Group
	cfg     Config

	// gen counts invalidations. A fetch started under an older gen does not
	// write the cache.
	mu  sync.Mutex
	gen uint64

	metrics *telemetry.ConsoleMetrics
	logger  *zap.Logger
}

// NewService creates an inventory view service. metrics may be nil.
func NewService(backend Backend, cache shared.ViewCache, cfg Config, metrics *telemetry.ConsoleMetrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		backend: backend,
		cache:   cache,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
	}
}

// Load returns the current view. It is Ready on a cache hit or when the
// backend answers within the loading wait, Loading while a fetch is still
// running, and Error when the fetch failed. Errors are never cached.
func (s *Service) Load(ctx context.Context) View {
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory", "load")
	defer span.End()
	log := logger.WithLogger(ctx, s.logger)

	if items, ok := s.cached(ctx, log); ok {
		span.SetAttributes(attribute.String(telemetry.SpanAttrCacheResult, string(telemetry.CacheHit)))
		return readyView(items)
	}
	span.SetAttributes(attribute.String(telemetry.SpanAttrCacheResult, string(telemetry.CacheMiss)))

	// The fetch outlives this request so a slow backend still fills the cache.
	fetchCtx := context.WithoutCancel(ctx)
	gen := s.generation()
	ch := s.group.DoChan(CacheKey, func() (any, error) {
		return s.fetch(fetchCtx, gen)
	})

	var timeout <-chan time.Time
	if s.cfg.LoadingWait > 0 {
		timer := time.NewTimer(s.cfg.LoadingWait)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case res := <-ch:
		if res.Err != nil {
			telemetry.RecordError(span, res.Err)
			notice := shared.ErrorNotice(MsgLoadFailed)
			return View{State: StateError, Rows: []Row{}, Notice: &notice}
		}
		return readyView(res.Val.([]inventory.Item))
	case <-timeout:
		log.Debug("Inventory still loading")
		return View{State: StateLoading, Rows: []Row{}}
	case <-ctx.Done():
		return View{State: StateLoading, Rows: []Row{}}
	}
}

func (s *Service) cached(ctx context.Context, log *logger.ContextLogger) ([]inventory.Item, bool) {
	raw, err := s.cache.Get(ctx, CacheKey)
	if err != nil {
		if errors.Is(err, shared.ErrCacheMiss) {
			s.metrics.RecordCacheLookup(ctx, telemetry.CacheMiss)
		} else {
			log.Warn("Inventory cache read failed", zap.Error(err))
			s.metrics.RecordCacheLookup(ctx, telemetry.CacheError)
		}
		return nil, false
	}

	var items []inventory.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		log.Warn("Discarding undecodable inventory cache entry", zap.Error(err))
		_ = s.cache.Delete(ctx, CacheKey)
		s.metrics.RecordCacheLookup(ctx, telemetry.CacheError)
		return nil, false
	}
	s.metrics.RecordCacheLookup(ctx, telemetry.CacheHit)
	return items, true
}

func (s *Service) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

func (s *Service) fetch(ctx context.Context, gen uint64) ([]inventory.Item, error) {
	log := logger.WithLogger(ctx, s.logger)

	items, err := s.backend.FetchInventory(ctx)
	if err != nil {
		log.Warn("Failed to load inventory", zap.Error(err))
		return nil, err
	}

	s.metrics.RecordLowStock(ctx, inventory.CountLowStock(items))

	raw, err := json.Marshal(items)
	if err != nil {
		log.Warn("Failed to encode inventory for cache", zap.Error(err))
		return items, nil
	}
	s.store(ctx, log, gen, raw)
	return items, nil
}

// store caches raw unless the list was invalidated after the fetch began
func (s *Service) store(ctx context.Context, log *logger.ContextLogger, gen uint64, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		log.Debug("Discarding inventory fetched before invalidation")
		return
	}
	if err := s.cache.Set(ctx, CacheKey, raw, s.cfg.CacheTTL); err != nil {
		log.Warn("Inventory cache write failed", zap.Error(err))
	}
}

// Create validates and submits a new item. On success the cached list is
// invalidated so the next Load re-fetches. On failure the cache is untouched
// and the returned result carries the failure notice.
func (s *Service) Create(ctx context.Context, item inventory.Item) (CreateResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory", "create",
		attribute.Int64("inventory.item_id", item.ID))
	defer span.End()
	log := logger.WithLogger(ctx, s.logger)

	valid, err := inventory.NewItem(item.ID, item.Name, item.Stock, item.ReorderLevel)
	if err != nil {
		return CreateResult{Item: item, Notice: shared.ErrorNotice(err.Error())}, err
	}

	created, err := s.backend.CreateInventoryItem(ctx, *valid)
	if err != nil {
		telemetry.RecordError(span, err)
		log.Warn("Failed to add inventory item", zap.Int64("item_id", item.ID), zap.Error(err))
		return CreateResult{Item: item, Notice: shared.ErrorNotice(MsgAddFailed)}, err
	}

	s.Invalidate(ctx)
	log.Info("Inventory item added", zap.Int64("item_id", created.ID))
	return CreateResult{Item: created, Notice: shared.SuccessNotice(MsgAdded)}, nil
}

// Invalidate drops the cached list. Fetches already running keep serving
// their callers but no longer fill the cache.
func (s *Service) Invalidate(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.group.Forget(CacheKey)
	if err := s.cache.Delete(ctx, CacheKey); err != nil {
		logger.WithLogger(ctx, s.logger).Warn("Inventory cache invalidation failed", zap.Error(err))
	}
}

func readyView(items []inventory.Item) View {
	rows := make([]Row, 0, len(items))
	low := 0
	for _, it := range items {
		isLow := it.IsLowStock()
		if isLow {
			low++
		}
		rows = append(rows, Row{Item: it, LowStock: isLow, Shortfall: it.Shortfall()})
	}
	return View{State: StateReady, Rows: rows, LowStockCount: low}
}
