// Package route holds the backend route model and its adaptation into
// a driving-directions request for the mapping provider.
package route

import "github.com/shopspring/decimal"

// RouteResponse is the ordered route computed by the logistics backend.
// Distance is in kilometres and Duration in hours.
type RouteResponse struct {
	Route    []string        `json:"route"`
	Distance decimal.Decimal `json:"distance"`
	Duration decimal.Decimal `json:"duration"`
}

// Len returns the number of route points
func (r RouteResponse) Len() int {
	return len(r.Route)
}

// OptimizeRequest is the body of a route optimization call
type OptimizeRequest struct {
	Start  string   `json:"start" binding:"required"`
	Points []string `json:"points" binding:"required,min=1,dive,required"`
}
