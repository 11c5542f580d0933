package route

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/logistics/console/internal/domain/shared"
)

// ErrInvalidCoordinate is returned when a route point is not a usable lat/lng pair
var ErrInvalidCoordinate = shared.NewDomainError("INVALID_ROUTE", "Route contains an invalid coordinate")

// Coordinate is a WGS84 latitude/longitude pair
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ParseCoordinate parses a "lat,lng" string.
// It never fails: a malformed string yields NaN components, which
// Validate rejects. Parsing and validation are separate steps so the
// parser can be applied to any payload the backend sends.
func ParseCoordinate(s string) Coordinate {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Coordinate{Lat: math.NaN(), Lng: math.NaN()}
	}
	return Coordinate{
		Lat: parseComponent(parts[0]),
		Lng: parseComponent(parts[1]),
	}
}

func parseComponent(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// IsFinite reports whether both components are finite numbers
func (c Coordinate) IsFinite() bool {
	return !math.IsNaN(c.Lat) && !math.IsInf(c.Lat, 0) &&
		!math.IsNaN(c.Lng) && !math.IsInf(c.Lng, 0)
}

// Validate checks the coordinate is finite and within WGS84 bounds
func (c Coordinate) Validate() error {
	if !c.IsFinite() {
		return fmt.Errorf("%w: non-finite value", ErrInvalidCoordinate)
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude %v outside [-90, 90]", ErrInvalidCoordinate, c.Lat)
	}
	if c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("%w: longitude %v outside [-180, 180]", ErrInvalidCoordinate, c.Lng)
	}
	return nil
}

// String formats the coordinate as "lat,lng", the form the provider accepts
func (c Coordinate) String() string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lng, 'f', -1, 64)
}
