// Package dispatch models dispatch creation requests and the submission
// lifecycle of the dispatch form.
package dispatch

import (
	"strings"

	"github.com/logistics/console/internal/domain/route"
	"github.com/logistics/console/internal/domain/shared"
)

// LineItem is one item of a dispatch
type LineItem struct {
	ID       int64 `json:"id" binding:"required,gt=0"`
	Quantity int64 `json:"quantity" binding:"required,gt=0"`
}

// Request bundles ordered items and delivery addresses for the backend
type Request struct {
	Items          []LineItem `json:"items" binding:"required,min=1,dive"`
	DeliveryPoints []string   `json:"delivery_points" binding:"required,min=1,dive,required"`
}

// Validate checks the request invariants
func (r Request) Validate() error {
	if len(r.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "At least one item is required")
	}
	for _, item := range r.Items {
		if item.ID <= 0 {
			return shared.NewDomainError("INVALID_ITEM_ID", "Item ID must be a positive integer")
		}
		if item.Quantity <= 0 {
			return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be a positive integer")
		}
	}
	if len(r.DeliveryPoints) == 0 {
		return shared.NewDomainError("NO_DELIVERY_POINTS", "At least one delivery point is required")
	}
	for _, p := range r.DeliveryPoints {
		if strings.TrimSpace(p) == "" {
			return shared.NewDomainError("INVALID_DELIVERY_POINT", "Delivery point cannot be empty")
		}
	}
	return nil
}

// Response is the backend's answer to a successful dispatch creation
type Response struct {
	DispatchID int64               `json:"dispatch_id"`
	Route      route.RouteResponse `json:"route"`
}

// Form is the dispatch form as entered by the user
type Form struct {
	ItemID        int64  `json:"item_id" form:"item_id" binding:"required,gt=0"`
	Quantity      int64  `json:"quantity" form:"quantity" binding:"required,gt=0"`
	DeliveryPoint string `json:"delivery_point" form:"delivery_point" binding:"required,notblank"`
}

// DefaultForm returns the initial form values
func DefaultForm() Form {
	return Form{ItemID: 1, Quantity: 1}
}

// ToRequest converts the form into a single-item, single-destination request
func (f Form) ToRequest() Request {
	return Request{
		Items:          []LineItem{{ID: f.ItemID, Quantity: f.Quantity}},
		DeliveryPoints: []string{strings.TrimSpace(f.DeliveryPoint)},
	}
}
