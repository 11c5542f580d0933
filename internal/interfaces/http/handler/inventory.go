package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	inventoryapp "github.com/logistics/console/internal/application/inventory"
	"github.com/logistics/console/internal/domain/inventory"
	"github.com/logistics/console/internal/domain/shared"
	"github.com/logistics/console/internal/interfaces/http/dto"
	"github.com/logistics/console/internal/interfaces/http/middleware"
	"github.com/logistics/console/internal/interfaces/http/web"
)

// loadingRefreshSeconds is how often a Loading inventory page reloads itself
const loadingRefreshSeconds = 2

// InventoryService builds inventory views
type InventoryService interface {
	Load(ctx context.Context) inventoryapp.View
	Create(ctx context.Context, item inventory.Item) (inventoryapp.CreateResult, error)
}

// InventoryHandler serves the inventory page and API
type InventoryHandler struct {
	BaseHandler
	service InventoryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(service InventoryService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

// List returns the inventory view as JSON
func (h *InventoryHandler) List(c *gin.Context) {
	view := h.service.Load(c.Request.Context())
	if view.State == inventoryapp.StateError {
		h.ErrorWithCode(c, dto.ErrCodeBackendUnavailable, inventoryapp.MsgLoadFailed)
		return
	}
	h.Success(c, view)
}

// Create adds an item from a JSON body
func (h *InventoryHandler) Create(c *gin.Context) {
	var req dto.InventoryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.service.Create(c.Request.Context(), req.ToItem())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.MutationResponse[inventory.Item]{Result: result.Item, Notice: result.Notice})
}

// Page renders the inventory page
func (h *InventoryHandler) Page(c *gin.Context) {
	h.renderPage(c, http.StatusOK, web.InventoryContent{}, nil)
}

// Submit handles the add-item form. On success the dialog closes and the
// list is reloaded; on failure the dialog stays open with the entered values.
func (h *InventoryHandler) Submit(c *gin.Context) {
	form := web.ItemForm{
		ID:           c.PostForm("id"),
		Name:         c.PostForm("name"),
		Stock:        c.PostForm("stock"),
		ReorderLevel: c.PostForm("reorder_level"),
	}
	content := web.InventoryContent{Form: form, DialogOpen: true}

	var req dto.InventoryItemRequest
	if err := c.ShouldBind(&req); err != nil {
		content.Errors = formErrors(err)
		h.renderPage(c, http.StatusUnprocessableEntity, content, []shared.Notice{shared.ErrorNotice(inventoryapp.MsgAddFailed)})
		return
	}

	result, err := h.service.Create(c.Request.Context(), req.ToItem())
	if err != nil {
		h.renderPage(c, errorStatus(err), content, []shared.Notice{result.Notice})
		return
	}
	h.renderPage(c, http.StatusOK, web.InventoryContent{}, []shared.Notice{result.Notice})
}

func (h *InventoryHandler) renderPage(c *gin.Context, status int, content web.InventoryContent, notices []shared.Notice) {
	content.View = h.service.Load(c.Request.Context())
	if content.View.Notice != nil {
		notices = append(notices, *content.View.Notice)
	}

	page := web.NewPage("Inventory", c.Request.URL.Path, content, notices...)
	if content.Loading() {
		page.RefreshSeconds = loadingRefreshSeconds
	}
	c.HTML(status, web.PageInventory, page)
}

// formErrors converts a form bind error into field messages
func formErrors(err error) []dto.ValidationDetail {
	if details := middleware.ValidationDetails(err); details != nil {
		return details
	}
	return []dto.ValidationDetail{{Field: "form", Message: "Please enter whole numbers"}}
}
