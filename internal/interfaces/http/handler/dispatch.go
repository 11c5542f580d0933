package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	dispatchapp "github.com/logistics/console/internal/application/dispatch"
	"github.com/logistics/console/internal/domain/dispatch"
	"github.com/logistics/console/internal/domain/route"
	"github.com/logistics/console/internal/domain/shared"
	"github.com/logistics/console/internal/infrastructure/auth"
	"github.com/logistics/console/internal/infrastructure/logger"
	"github.com/logistics/console/internal/interfaces/http/middleware"
	"github.com/logistics/console/internal/interfaces/http/web"
	"go.uber.org/zap"
)

// dispatchFlow scopes the in-flight guard key of the dispatch form
const dispatchFlow = "dispatch"

// DispatchService runs dispatch submissions
type DispatchService interface {
	Submit(ctx context.Context, key string, form dispatch.Form) (*dispatchapp.Result, error)
	EmptyMapView() route.MapView
}

// DispatchHandler serves the dispatch page and API
type DispatchHandler struct {
	BaseHandler
	service     DispatchService
	tokens      MapTokenIssuer
	mapsEnabled bool
}

// NewDispatchHandler creates a new DispatchHandler. Pages embed a map
// token from tokens when mapsEnabled is set.
func NewDispatchHandler(service DispatchService, tokens MapTokenIssuer, mapsEnabled bool) *DispatchHandler {
	return &DispatchHandler{
		service:     service,
		tokens:      tokens,
		mapsEnabled: mapsEnabled,
	}
}

// Create submits a dispatch from a JSON body. Clients may send an
// Idempotency-Key header to scope the duplicate-submit guard.
func (h *DispatchHandler) Create(c *gin.Context) {
	var form dispatch.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.service.Submit(c.Request.Context(), middleware.SubmissionKey(c, dispatchFlow), form)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Page renders the empty dispatch form
func (h *DispatchHandler) Page(c *gin.Context) {
	content := web.NewDispatchContent(web.NewDispatchForm(dispatch.DefaultForm()), nil, h.service.EmptyMapView())
	h.renderPage(c, http.StatusOK, content, nil)
}

// Submit handles the dispatch form. The entered values are always redisplayed.
func (h *DispatchHandler) Submit(c *gin.Context) {
	entered := web.DispatchForm{
		ItemID:        c.PostForm("item_id"),
		Quantity:      c.PostForm("quantity"),
		DeliveryPoint: c.PostForm("delivery_point"),
	}

	var form dispatch.Form
	if err := c.ShouldBind(&form); err != nil {
		content := web.NewDispatchContent(entered, nil, h.service.EmptyMapView())
		content.Errors = formErrors(err)
		h.renderPage(c, http.StatusUnprocessableEntity, content, nil)
		return
	}

	result, err := h.service.Submit(c.Request.Context(), middleware.SubmissionKey(c, dispatchFlow), form)
	content := web.NewDispatchContent(entered, result, h.service.EmptyMapView())
	var notices []shared.Notice
	if result != nil {
		notices = result.Notices
	}
	if err != nil {
		if errors.Is(err, shared.ErrSubmissionPending) {
			notices = append(notices, shared.WarningNotice("Please wait", shared.ErrSubmissionPending.Message))
		}
		h.renderPage(c, errorStatus(err), content, notices)
		return
	}
	h.renderPage(c, http.StatusOK, content, notices)
}

func (h *DispatchHandler) renderPage(c *gin.Context, status int, content web.DispatchContent, notices []shared.Notice) {
	if h.mapsEnabled {
		token, err := h.tokens.Issue(middleware.GetSessionID(c), auth.ScopeStatic)
		if err != nil {
			logger.GetGinLogger(c).Warn("Failed to issue page map token", zap.Error(err))
		} else {
			content.MapsEnabled = true
			content.MapToken = token.Token
		}
	}
	c.HTML(status, web.PageDispatch, web.NewPage("Dispatch", c.Request.URL.Path, content, notices...))
}
