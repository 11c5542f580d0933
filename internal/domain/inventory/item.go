// Package inventory holds the inventory item model shown by the console.
package inventory

import (
	"strings"

	"github.com/logistics/console/internal/domain/shared"
)

// Item is an inventory item as persisted by the logistics backend.
// Stock and ReorderLevel change independently; low stock is derived.
type Item struct {
	ID           int64  `json:"id" form:"id" binding:"required,gt=0"`
	Name         string `json:"name" form:"name" binding:"required,notblank,max=200"`
	Stock        int64  `json:"stock" form:"stock" binding:"gte=0"`
	ReorderLevel int64  `json:"reorder_level" form:"reorder_level" binding:"gte=0"`
}

// NewItem creates a validated item
func NewItem(id int64, name string, stock, reorderLevel int64) (*Item, error) {
	item := &Item{
		ID:           id,
		Name:         strings.TrimSpace(name),
		Stock:        stock,
		ReorderLevel: reorderLevel,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

// Validate checks the item invariants
func (i *Item) Validate() error {
	if i.ID <= 0 {
		return shared.NewDomainError("INVALID_ITEM_ID", "Item ID must be a positive integer")
	}
	if strings.TrimSpace(i.Name) == "" {
		return shared.NewDomainError("INVALID_ITEM_NAME", "Item name cannot be empty")
	}
	if i.Stock < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}
	if i.ReorderLevel < 0 {
		return shared.NewDomainError("INVALID_REORDER_LEVEL", "Reorder level cannot be negative")
	}
	return nil
}

// IsLowStock returns true if stock is at or below the reorder level
func (i Item) IsLowStock() bool {
	return i.Stock <= i.ReorderLevel
}

// Shortfall returns how many units are needed to get back above the reorder level
func (i Item) Shortfall() int64 {
	if !i.IsLowStock() {
		return 0
	}
	return i.ReorderLevel - i.Stock + 1
}

// CountLowStock returns the number of low-stock items
func CountLowStock(items []Item) int {
	n := 0
	for _, item := range items {
		if item.IsLowStock() {
			n++
		}
	}
	return n
}
