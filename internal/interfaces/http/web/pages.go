package web

import (
	"strconv"
	"strings"

	dispatchapp "github.com/logistics/console/internal/application/dispatch"
	inventoryapp "github.com/logistics/console/internal/application/inventory"
	"github.com/logistics/console/internal/domain/dispatch"
	"github.com/logistics/console/internal/domain/route"
	"github.com/logistics/console/internal/domain/shared"
	"github.com/logistics/console/internal/interfaces/http/dto"
)

// NavLink is one entry of the navigation bar
type NavLink struct {
	Label  string
	Href   string
	Active bool
}

var navItems = []NavLink{
	{Label: "Inventory", Href: "/inventory"},
	{Label: "Dispatch", Href: "/dispatch"},
}

// Navigation returns the link bar with the entry matching path marked active
func Navigation(path string) []NavLink {
	links := make([]NavLink, len(navItems))
	for i, item := range navItems {
		item.Active = path == item.Href || strings.HasPrefix(path, item.Href+"/")
		links[i] = item
	}
	return links
}

// Page is the data of the layout template
type Page struct {
	Title   string
	Nav     []NavLink
	Notices []shared.Notice
	// RefreshSeconds > 0 makes the browser reload the page
	RefreshSeconds int
	Content        any
}

// NewPage creates a page for the request path
func NewPage(title, path string, content any, notices ...shared.Notice) Page {
	return Page{
		Title:   title,
		Nav:     Navigation(path),
		Notices: notices,
		Content: content,
	}
}

// ItemForm holds the add-item form values as entered
type ItemForm struct {
	ID           string
	Name         string
	Stock        string
	ReorderLevel string
}

// InventoryContent is the inventory page body
type InventoryContent struct {
	View inventoryapp.View
	Form ItemForm
	// DialogOpen keeps the add-item dialog expanded
	DialogOpen bool
	Errors     []dto.ValidationDetail
}

// Loading reports whether the list is still being fetched
func (c InventoryContent) Loading() bool {
	return c.View.State == inventoryapp.StateLoading
}

// Failed reports whether the list could not be fetched
func (c InventoryContent) Failed() bool {
	return c.View.State == inventoryapp.StateError
}

// DispatchForm holds the dispatch form values as entered
type DispatchForm struct {
	ItemID        string
	Quantity      string
	DeliveryPoint string
}

// NewDispatchForm renders form values for redisplay
func NewDispatchForm(f dispatch.Form) DispatchForm {
	return DispatchForm{
		ItemID:        strconv.FormatInt(f.ItemID, 10),
		Quantity:      strconv.FormatInt(f.Quantity, 10),
		DeliveryPoint: f.DeliveryPoint,
	}
}

// DispatchContent is the dispatch page body
type DispatchContent struct {
	Form     DispatchForm
	Errors   []dto.ValidationDetail
	Response *dispatch.Response
	MapView  route.MapView
	Summary  *route.RouteSummary
	// MapsEnabled is false when no provider key is configured
	MapsEnabled bool
	MapToken    string
}

// NewDispatchContent builds the page body from a submission result.
// result may be nil for the initial form.
func NewDispatchContent(form DispatchForm, result *dispatchapp.Result, emptyView route.MapView) DispatchContent {
	content := DispatchContent{Form: form, MapView: emptyView}
	if result != nil {
		content.Response = result.Response
		content.MapView = result.MapView
		content.Summary = result.Summary
	}
	return content
}

// Directions returns the map overlay, nil when absent
func (c DispatchContent) Directions() *route.DirectionsResult {
	return c.MapView.Directions
}

// Polyline returns the encoded overview path of the overlay
func (c DispatchContent) Polyline() string {
	if primary := c.MapView.Directions.Primary(); primary != nil {
		return primary.OverviewPolyline
	}
	return ""
}
