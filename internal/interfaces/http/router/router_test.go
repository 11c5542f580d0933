package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	dispatchapp "github.com/logistics/console/internal/application/dispatch"
	inventoryapp "github.com/logistics/console/internal/application/inventory"
	"github.com/logistics/console/internal/domain/route"
	"github.com/logistics/console/internal/infrastructure/auth"
	"github.com/logistics/console/internal/infrastructure/backend"
	"github.com/logistics/console/internal/infrastructure/cache"
	"github.com/logistics/console/internal/infrastructure/config"
	"github.com/logistics/console/internal/infrastructure/maps"
	"github.com/logistics/console/internal/interfaces/http/handler"
	"github.com/logistics/console/internal/interfaces/http/middleware"
	"github.com/logistics/console/internal/interfaces/http/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.api)
	assert.Empty(t, r.pages)
}

func TestRouterWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))

	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	r.Register(NewDomainGroup("test", "/test").GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	}))
	r.RegisterPages(NewDomainGroup("pages", "/").GET("/home", func(c *gin.Context) {
		c.String(http.StatusOK, "home")
	}))
	r.Setup()

	for path, want := range map[string]string{"/api/v1/test/ping": "pong", "/home": "home"} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, want, w.Body.String())
	}
}

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("inventory", "/inventory")
		assert.Equal(t, "inventory", g.Name())
		assert.Equal(t, "/inventory", g.Prefix())
	})

	t.Run("methods", func(t *testing.T) {
		engine := gin.New()
		ok := func(c *gin.Context) { c.String(http.StatusOK, c.Request.Method) }
		NewDomainGroup("maps", "/maps").
			GET("/token", ok).
			POST("/token", ok).
			DELETE("/token", ok).
			RegisterRoutes(engine.Group("/api/v1"))

		for _, method := range []string{"GET", "POST", "DELETE"} {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(method, "/api/v1/maps/token", nil))
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, method, w.Body.String())
		}
	})

	t.Run("middleware and subgroups", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("parent", "/parent").Use(func(c *gin.Context) {
			c.Header("X-Group", "parent")
			c.Next()
		})
		g.Group("child", "/child").GET("/leaf", func(c *gin.Context) {
			c.String(http.StatusOK, "leaf")
		})
		g.RegisterRoutes(engine.Group(""))

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest("GET", "/parent/child/leaf", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "parent", w.Header().Get("X-Group"))
	})
}

const providerKey = "test-key"

const directionsOK = `{
  "status": "OK",
  "routes": [{
    "summary": "I-80 E",
    "overview_polyline": {"points": "a~l~Fjk~uOwHJy@P"},
    "legs": [{
      "distance": {"text": "14.0 km", "value": 14000},
      "duration": {"text": "20 mins", "value": 1200},
      "start_address": "San Francisco, CA",
      "end_address": "Oakland, CA"
    }]
  }]
}`

// newConsole wires the full console against fake backend and provider servers
func newConsole(t *testing.T) *gin.Engine {
	t.Helper()

	backendSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/inventory":
			_, _ = w.Write([]byte(`{"items":[{"id":1,"name":"Tape","stock":3,"reorder_level":5}]}`))
		case r.Method == http.MethodPost && r.URL.Path == "/dispatch":
			_, _ = w.Write([]byte(`{"dispatch_id":7,"route":{"route":["37.7749,-122.4194","37.8044,-122.2712"],"distance":14,"duration":0.5}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(backendSrv.Close)

	providerSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != providerKey {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if strings.HasSuffix(r.URL.Path, "/staticmap") {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(directionsOK))
	}))
	t.Cleanup(providerSrv.Close)

	mapsCfg := config.MapsConfig{
		APIKey:        providerKey,
		DirectionsURL: providerSrv.URL + "/directions/json",
		StaticMapURL:  providerSrv.URL + "/staticmap",
		StaticSize:    "640x400",
		Timeout:       5 * time.Second,
	}
	view := route.DefaultMapView()

	api := backend.NewClient(config.BackendConfig{BaseURL: backendSrv.URL, Timeout: 5 * time.Second})
	orchestrator := dispatchapp.NewOrchestrator(api, maps.NewDirectionsService(mapsCfg), cache.NewInMemoryInFlightGuard(),
		dispatchapp.Config{Center: view.Center, Zoom: view.Zoom, InFlightTTL: time.Minute}, nil, nil)
	inventory := inventoryapp.NewService(api, cache.NewInMemoryViewCache(), inventoryapp.Config{CacheTTL: time.Minute}, nil, nil)
	tokens := auth.NewMapTokenService(config.MapTokenConfig{
		Secret: "test-secret-key-at-least-32-characters",
		TTL:    10 * time.Minute,
		Issuer: "logistics-console",
	}, auth.NewMemoryRevocationStore())

	renderer, err := web.NewRenderer()
	require.NoError(t, err)
	engine := gin.New()
	engine.HTMLRender = renderer
	engine.Use(middleware.RequestID(), middleware.Session(middleware.SessionConfig{}))

	Console(engine, Handlers{
		Inventory: handler.NewInventoryHandler(inventory),
		Dispatch:  handler.NewDispatchHandler(orchestrator, tokens, true),
		Maps:      handler.NewMapsHandler(tokens, orchestrator, maps.NewStaticMapClient(mapsCfg), view),
		Routes:    handler.NewRouteHandler(api),
		System:    handler.NewSystemHandler("logistics-console", "test", nil),
		Tokens:    tokens,
	})
	return engine
}

// browser keeps the session cookie across requests
type browser struct {
	engine  *gin.Engine
	cookies []*http.Cookie
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	b.engine.ServeHTTP(w, req)
	if set := w.Result().Cookies(); len(set) > 0 {
		b.cookies = set
	}
	return w
}

var mapImgSrc = regexp.MustCompile(`src="(/maps/static\?[^"]+)"`)

func TestConsole_RootRedirects(t *testing.T) {
	engine := newConsole(t)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/inventory", w.Header().Get("Location"))
}

func TestConsole_InventoryPage(t *testing.T) {
	b := &browser{engine: newConsole(t)}

	w := b.do(httptest.NewRequest("GET", "/inventory", nil))
	body := w.Body.String()

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body, "Tape")
	assert.Contains(t, body, `class="low-stock"`)
	assert.Contains(t, body, `aria-current="page"`)
}

func TestConsole_DispatchFlowNeverExposesProviderKey(t *testing.T) {
	b := &browser{engine: newConsole(t)}

	page := b.do(httptest.NewRequest("GET", "/dispatch", nil))
	require.Equal(t, http.StatusOK, page.Code)
	assert.NotContains(t, page.Body.String(), providerKey)

	form := url.Values{"item_id": {"1"}, "quantity": {"2"}, "delivery_point": {"37.8044,-122.2712"}}
	req := httptest.NewRequest("POST", "/dispatch", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := b.do(req)
	body := w.Body.String()

	require.Equal(t, http.StatusOK, w.Code, body)
	assert.Contains(t, body, "Dispatch #7")
	assert.Contains(t, body, "San Francisco, CA to Oakland, CA")
	assert.NotContains(t, body, providerKey)

	match := mapImgSrc.FindStringSubmatch(body)
	require.Len(t, match, 2)
	src := strings.ReplaceAll(match[1], "&amp;", "&")
	assert.Contains(t, src, "polyline=")

	img := b.do(httptest.NewRequest("GET", src, nil))
	assert.Equal(t, http.StatusOK, img.Code)
	assert.Equal(t, "image/png", img.Header().Get("Content-Type"))
}

func TestConsole_StaticMapRequiresToken(t *testing.T) {
	b := &browser{engine: newConsole(t)}

	w := b.do(httptest.NewRequest("GET", "/maps/static", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestConsole_DirectionsAPI(t *testing.T) {
	b := &browser{engine: newConsole(t)}

	issued := b.do(httptest.NewRequest("POST", "/api/v1/maps/token", nil))
	require.Equal(t, http.StatusCreated, issued.Code)
	var envelope struct {
		Data struct {
			Token  string   `json:"token"`
			Scopes []string `json:"scopes"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(issued.Body.Bytes(), &envelope))
	assert.Contains(t, envelope.Data.Scopes, auth.ScopeDirections)

	req := httptest.NewRequest("POST", "/api/v1/maps/directions",
		strings.NewReader(`{"route":["37.7749,-122.4194","37.8044,-122.2712"],"distance":14,"duration":0.5}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+envelope.Data.Token)
	w := b.do(req)

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"OK"`)
	assert.NotContains(t, w.Body.String(), providerKey)
}

func TestConsole_APIRoutes(t *testing.T) {
	engine := newConsole(t)

	tests := []struct {
		method, path string
		want         int
	}{
		{"GET", "/api/v1/inventory", http.StatusOK},
		{"GET", "/api/v1/system/ping", http.StatusOK},
		{"GET", "/api/v1/system/info", http.StatusOK},
		{"DELETE", "/api/v1/maps/token", http.StatusUnauthorized},
		{"POST", "/api/v1/maps/directions", http.StatusUnauthorized},
		{"GET", "/api/v1/unknown", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
