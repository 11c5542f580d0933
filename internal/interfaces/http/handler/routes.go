package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/logistics/console/internal/domain/route"
)

// RouteOptimizer asks the backend for an optimized route
type RouteOptimizer interface {
	OptimizeRoute(ctx context.Context, start string, points []string) (route.RouteResponse, error)
}

// RouteHandler exposes route optimization. No page consumes it.
type RouteHandler struct {
	BaseHandler
	optimizer RouteOptimizer
}

// NewRouteHandler creates a new RouteHandler
func NewRouteHandler(optimizer RouteOptimizer) *RouteHandler {
	return &RouteHandler{optimizer: optimizer}
}

// Optimize forwards a start point and stops to the backend
func (h *RouteHandler) Optimize(c *gin.Context) {
	var req route.OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.optimizer.OptimizeRoute(c.Request.Context(), req.Start, req.Points)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
