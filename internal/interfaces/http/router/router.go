// Package router wires the console handlers into the gin engine. Pages are
// served from the root, the JSON API under /api/<version>.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/logistics/console/internal/infrastructure/auth"
	"github.com/logistics/console/internal/interfaces/http/handler"
	"github.com/logistics/console/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	pages      []RouteRegistrar
	api        []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds an API registrar, mounted under /api/<version>
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.api = append(r.api, registrar)
	return r
}

// RegisterPages adds a page registrar, mounted at the root
func (r *Router) RegisterPages(registrar RouteRegistrar) *Router {
	r.pages = append(r.pages, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	for _, registrar := range r.pages {
		registrar.RegisterRoutes(&r.engine.RouterGroup)
	}

	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.api {
		registrar.RegisterRoutes(api)
	}
}

// DomainGroup collects the routes of one area of the console
type DomainGroup struct {
	name       string
	prefix     string
	routes     []routeDefinition
	subgroups  []*DomainGroup
	middleware []gin.HandlerFunc
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a new route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use adds middleware to this group
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodGet, path, handlers)
}

// POST registers a POST route
func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPost, path, handlers)
}

// DELETE registers a DELETE route
func (dg *DomainGroup) DELETE(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodDelete, path, handlers)
}

func (dg *DomainGroup) handle(method, path string, handlers []gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{method: method, path: path, handlers: handlers})
	return dg
}

// Group creates a sub-group within this group
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	subgroup := NewDomainGroup(name, prefix)
	dg.subgroups = append(dg.subgroups, subgroup)
	return subgroup
}

// RegisterRoutes implements RouteRegistrar interface
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
	}

	for _, route := range dg.routes {
		group.Handle(route.method, route.path, route.handlers...)
	}
	for _, subgroup := range dg.subgroups {
		subgroup.RegisterRoutes(group)
	}
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string {
	return dg.prefix
}

// Handlers are the console handlers to wire
type Handlers struct {
	Inventory *handler.InventoryHandler
	Dispatch  *handler.DispatchHandler
	Maps      *handler.MapsHandler
	Routes    *handler.RouteHandler
	System    *handler.SystemHandler
	// Tokens validates the map tokens of the provider-backed routes
	Tokens middleware.MapTokenValidator
	Logger *zap.Logger
}

// Console registers the pages and API of the console
func Console(engine *gin.Engine, h Handlers, opts ...RouterOption) *Router {
	r := NewRouter(engine, opts...)

	pages := NewDomainGroup("pages", "/")
	pages.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/inventory")
	})
	pages.Group("inventory", "/inventory").
		GET("", h.Inventory.Page).
		POST("", h.Inventory.Submit)
	pages.Group("dispatch", "/dispatch").
		GET("", h.Dispatch.Page).
		POST("", h.Dispatch.Submit)
	pages.Group("maps", "/maps").
		Use(middleware.RequireMapToken(h.Tokens, auth.ScopeStatic, h.Logger)).
		GET("/static", h.Maps.StaticMap)
	r.RegisterPages(pages)

	r.Register(NewDomainGroup("inventory", "/inventory").
		GET("", h.Inventory.List).
		POST("", h.Inventory.Create))
	r.Register(NewDomainGroup("dispatch", "/dispatch").
		POST("", h.Dispatch.Create))
	r.Register(NewDomainGroup("routes", "/routes").
		POST("/optimize", h.Routes.Optimize))
	r.Register(NewDomainGroup("maps", "/maps").
		POST("/token", h.Maps.IssueToken).
		DELETE("/token", h.Maps.RevokeToken).
		POST("/directions", middleware.RequireMapToken(h.Tokens, auth.ScopeDirections, h.Logger), h.Maps.Directions))
	r.Register(NewDomainGroup("system", "/system").
		GET("/ping", h.System.Ping).
		GET("/info", h.System.GetSystemInfo))

	r.Setup()
	return r
}
