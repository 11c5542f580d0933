package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	dispatchapp "github.com/logistics/console/internal/application/dispatch"
	inventoryapp "github.com/logistics/console/internal/application/inventory"
	"github.com/logistics/console/internal/domain/dispatch"
	"github.com/logistics/console/internal/domain/inventory"
	"github.com/logistics/console/internal/domain/route"
	"github.com/logistics/console/internal/infrastructure/auth"
	"github.com/logistics/console/internal/infrastructure/config"
	"github.com/logistics/console/internal/infrastructure/maps"
	"github.com/logistics/console/internal/interfaces/http/dto"
	"github.com/logistics/console/internal/interfaces/http/middleware"
	"github.com/logistics/console/internal/interfaces/http/web"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

type MockInventoryService struct {
	mock.Mock
}

func (m *MockInventoryService) Load(ctx context.Context) inventoryapp.View {
	args := m.Called(ctx)
	return args.Get(0).(inventoryapp.View)
}

func (m *MockInventoryService) Create(ctx context.Context, item inventory.Item) (inventoryapp.CreateResult, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(inventoryapp.CreateResult), args.Error(1)
}

type MockDispatchService struct {
	mock.Mock
}

func (m *MockDispatchService) Submit(ctx context.Context, key string, form dispatch.Form) (*dispatchapp.Result, error) {
	args := m.Called(ctx, key, form)
	result, _ := args.Get(0).(*dispatchapp.Result)
	return result, args.Error(1)
}

func (m *MockDispatchService) EmptyMapView() route.MapView {
	return route.DefaultMapView()
}

type MockPreviewer struct {
	mock.Mock
}

func (m *MockPreviewer) Preview(ctx context.Context, resp route.RouteResponse) (dispatchapp.Preview, error) {
	args := m.Called(ctx, resp)
	return args.Get(0).(dispatchapp.Preview), args.Error(1)
}

type MockStaticMapper struct {
	mock.Mock
	enabled bool
}

func (m *MockStaticMapper) Enabled() bool {
	return m.enabled
}

func (m *MockStaticMapper) Fetch(ctx context.Context, view route.MapView, polyline string) (*maps.StaticImage, error) {
	args := m.Called(ctx, view, polyline)
	img, _ := args.Get(0).(*maps.StaticImage)
	return img, args.Error(1)
}

type MockOptimizer struct {
	mock.Mock
}

func (m *MockOptimizer) OptimizeRoute(ctx context.Context, start string, points []string) (route.RouteResponse, error) {
	args := m.Called(ctx, start, points)
	return args.Get(0).(route.RouteResponse), args.Error(1)
}

// newTestEngine returns an engine with the request ID, session and page
// rendering a handler expects
func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	renderer, err := web.NewRenderer()
	require.NoError(t, err)

	engine := gin.New()
	engine.HTMLRender = renderer
	engine.Use(middleware.RequestID(), middleware.Session(middleware.SessionConfig{}))
	return engine
}

func newTestTokenService() *auth.MapTokenService {
	return auth.NewMapTokenService(config.MapTokenConfig{
		Secret: "test-secret-key-at-least-32-characters",
		TTL:    10 * time.Minute,
		Issuer: "logistics-console",
	}, auth.NewMemoryRevocationStore())
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// decodeData re-decodes the envelope data into out
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}
