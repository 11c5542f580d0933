package route

// TravelMode is the provider travel mode
type TravelMode string

// TravelModeDriving is the only mode the console requests
const TravelModeDriving TravelMode = "DRIVING"

// Waypoint is an intermediate point of a directions request.
// Stopover marks a mandatory stop rather than a routing hint.
type Waypoint struct {
	Location Coordinate `json:"location"`
	Stopover bool       `json:"stopover"`
}

// DirectionsRequest is a driving-directions query for the mapping provider
type DirectionsRequest struct {
	Origin      Coordinate `json:"origin"`
	Destination Coordinate `json:"destination"`
	Waypoints   []Waypoint `json:"waypoints"`
	TravelMode  TravelMode `json:"travelMode"`
}

// Status is the provider's directions status
type Status string

// Provider directions statuses
const (
	StatusOK                     Status = "OK"
	StatusNotFound               Status = "NOT_FOUND"
	StatusZeroResults            Status = "ZERO_RESULTS"
	StatusMaxWaypointsExceeded   Status = "MAX_WAYPOINTS_EXCEEDED"
	StatusMaxRouteLengthExceeded Status = "MAX_ROUTE_LENGTH_EXCEEDED"
	StatusInvalidRequest         Status = "INVALID_REQUEST"
	StatusOverDailyLimit         Status = "OVER_DAILY_LIMIT"
	StatusOverQueryLimit         Status = "OVER_QUERY_LIMIT"
	StatusRequestDenied          Status = "REQUEST_DENIED"
	StatusUnknownError           Status = "UNKNOWN_ERROR"
)

// IsOK reports whether the status carries a renderable result
func (s Status) IsOK() bool {
	return s == StatusOK
}

// DirectionsResult is the provider's response to a DirectionsRequest
type DirectionsResult struct {
	Status       Status            `json:"status"`
	Routes       []DirectionsRoute `json:"routes"`
	ErrorMessage string            `json:"error_message,omitempty"`
}

// DirectionsRoute is one route alternative returned by the provider
type DirectionsRoute struct {
	Summary          string   `json:"summary"`
	Legs             []Leg    `json:"legs"`
	OverviewPolyline string   `json:"overview_polyline"`
	Warnings         []string `json:"warnings,omitempty"`
	WaypointOrder    []int    `json:"waypoint_order,omitempty"`
}

// Leg is the part of a route between two consecutive stops
type Leg struct {
	Distance      Measure    `json:"distance"`
	Duration      Measure    `json:"duration"`
	StartAddress  string     `json:"start_address"`
	EndAddress    string     `json:"end_address"`
	StartLocation Coordinate `json:"start_location"`
	EndLocation   Coordinate `json:"end_location"`
	Steps         []Step     `json:"steps"`
}

// Step is a single turn instruction
type Step struct {
	Instructions string  `json:"instructions"`
	Distance     Measure `json:"distance"`
	Duration     Measure `json:"duration"`
}

// Measure carries a value in base units (metres or seconds) and the
// provider's human-readable rendering of it
type Measure struct {
	Text  string `json:"text"`
	Value int64  `json:"value"`
}

// Primary returns the first route alternative, or nil
func (r *DirectionsResult) Primary() *DirectionsRoute {
	if r == nil || len(r.Routes) == 0 {
		return nil
	}
	return &r.Routes[0]
}

// TotalDistanceMeters sums leg distances of the primary route
func (r *DirectionsRoute) TotalDistanceMeters() int64 {
	var total int64
	for _, leg := range r.Legs {
		total += leg.Distance.Value
	}
	return total
}

// TotalDurationSeconds sums leg durations of the primary route
func (r *DirectionsRoute) TotalDurationSeconds() int64 {
	var total int64
	for _, leg := range r.Legs {
		total += leg.Duration.Value
	}
	return total
}
