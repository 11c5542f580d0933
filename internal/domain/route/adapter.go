package route

import (
	"fmt"

	"github.com/logistics/console/internal/domain/shared"
)

// ErrEmptyRoute is returned when a route has no points to adapt
var ErrEmptyRoute = shared.NewDomainError("EMPTY_ROUTE", "Route contains no points")

// BuildDirectionsRequest adapts a backend route into a driving-directions
// request. The first point is the origin and the last the destination;
// every point strictly between them becomes a stopover waypoint in order.
// A single-point route yields origin == destination and no waypoints.
//
// Every point is validated before the request is built, so an invalid
// route never reaches the provider.
func BuildDirectionsRequest(resp RouteResponse) (DirectionsRequest, error) {
	n := len(resp.Route)
	if n == 0 {
		return DirectionsRequest{}, ErrEmptyRoute
	}

	points := make([]Coordinate, n)
	for i, raw := range resp.Route {
		c := ParseCoordinate(raw)
		if err := c.Validate(); err != nil {
			return DirectionsRequest{}, fmt.Errorf("route point %d %q: %w", i, raw, err)
		}
		points[i] = c
	}

	req := DirectionsRequest{
		Origin:      points[0],
		Destination: points[n-1],
		Waypoints:   []Waypoint{},
		TravelMode:  TravelModeDriving,
	}
	if n > 2 {
		req.Waypoints = make([]Waypoint, 0, n-2)
		for _, p := range points[1 : n-1] {
			req.Waypoints = append(req.Waypoints, Waypoint{Location: p, Stopover: true})
		}
	}
	return req, nil
}
