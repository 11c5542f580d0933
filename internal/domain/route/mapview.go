package route

import "github.com/shopspring/decimal"

// Default map viewport
var DefaultCenter = Coordinate{Lat: 37.7749, Lng: -122.4194}

const DefaultZoom = 12

// MapView is the state of the route map: a fixed viewport plus the
// directions overlay, which stays absent until a successful result arrives.
type MapView struct {
	Center     Coordinate        `json:"center"`
	Zoom       int               `json:"zoom"`
	Directions *DirectionsResult `json:"directions,omitempty"`
}

// NewMapView creates an empty map view
func NewMapView(center Coordinate, zoom int) MapView {
	return MapView{Center: center, Zoom: zoom}
}

// DefaultMapView creates an empty map view on the default viewport
func DefaultMapView() MapView {
	return NewMapView(DefaultCenter, DefaultZoom)
}

// Apply stores result if its status is OK and reports whether it did.
// Any other status leaves the view unchanged.
func (m *MapView) Apply(result *DirectionsResult) bool {
	if result == nil || !result.Status.IsOK() {
		return false
	}
	m.Directions = result
	return true
}

// HasDirections reports whether an overlay is present
func (m MapView) HasDirections() bool {
	return m.Directions != nil
}

// EstimateSource names where a displayed distance/duration comes from
type EstimateSource string

const (
	SourceBackend  EstimateSource = "backend"
	SourceProvider EstimateSource = "provider"
)

// RouteSummary keeps both route estimates side by side. The backend and
// the provider compute the route independently and may disagree;
// Displayed labels the one shown to the user.
type RouteSummary struct {
	Stops                 int             `json:"stops"`
	BackendDistanceKm     decimal.Decimal `json:"backend_distance_km"`
	BackendDurationHours  decimal.Decimal `json:"backend_duration_hours"`
	ProviderDistanceKm    decimal.Decimal `json:"provider_distance_km"`
	ProviderDurationHours decimal.Decimal `json:"provider_duration_hours"`
	Displayed             EstimateSource  `json:"displayed"`
}

var (
	metresPerKm    = decimal.NewFromInt(1000)
	secondsPerHour = decimal.NewFromInt(3600)
)

// Summarize builds the summary for a backend route and the map overlay.
// The provider estimate is displayed when present, otherwise the backend's.
func Summarize(resp RouteResponse, view MapView) RouteSummary {
	s := RouteSummary{
		Stops:                resp.Len(),
		BackendDistanceKm:    resp.Distance,
		BackendDurationHours: resp.Duration,
		Displayed:            SourceBackend,
	}
	if primary := view.Directions.Primary(); primary != nil {
		s.ProviderDistanceKm = decimal.NewFromInt(primary.TotalDistanceMeters()).Div(metresPerKm).Round(1)
		s.ProviderDurationHours = decimal.NewFromInt(primary.TotalDurationSeconds()).Div(secondsPerHour).Round(2)
		s.Displayed = SourceProvider
	}
	return s
}

// DistanceKm returns the displayed distance
func (s RouteSummary) DistanceKm() decimal.Decimal {
	if s.Displayed == SourceProvider {
		return s.ProviderDistanceKm
	}
	return s.BackendDistanceKm
}

// DurationHours returns the displayed duration
func (s RouteSummary) DurationHours() decimal.Decimal {
	if s.Displayed == SourceProvider {
		return s.ProviderDurationHours
	}
	return s.BackendDurationHours
}

// Diverges reports whether both estimates exist and the distances differ
func (s RouteSummary) Diverges() bool {
	return s.Displayed == SourceProvider && !s.ProviderDistanceKm.Truncate(0).Equal(s.BackendDistanceKm.Truncate(0))
}
