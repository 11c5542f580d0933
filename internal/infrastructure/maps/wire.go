package maps

import "github.com/logistics/console/internal/domain/route"

// Provider JSON shapes for the directions web service

type directionsResponse struct {
	Status       string      `json:"status"`
	ErrorMessage string      `json:"error_message"`
	Routes       []wireRoute `json:"routes"`
}

type wireRoute struct {
	Summary          string       `json:"summary"`
	Legs             []wireLeg    `json:"legs"`
	OverviewPolyline wirePolyline `json:"overview_polyline"`
	Warnings         []string     `json:"warnings"`
	WaypointOrder    []int        `json:"waypoint_order"`
}

type wirePolyline struct {
	Points string `json:"points"`
}

type wireLeg struct {
	Distance      wireMeasure `json:"distance"`
	Duration      wireMeasure `json:"duration"`
	StartAddress  string      `json:"start_address"`
	EndAddress    string      `json:"end_address"`
	StartLocation wireLatLng  `json:"start_location"`
	EndLocation   wireLatLng  `json:"end_location"`
	Steps         []wireStep  `json:"steps"`
}

type wireStep struct {
	HTMLInstructions string      `json:"html_instructions"`
	Distance         wireMeasure `json:"distance"`
	Duration         wireMeasure `json:"duration"`
}

type wireMeasure struct {
	Text  string `json:"text"`
	Value int64  `json:"value"`
}

type wireLatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (r directionsResponse) toDomain() *route.DirectionsResult {
	status := route.Status(r.Status)
	if status == "" {
		status = route.StatusUnknownError
	}
	result := &route.DirectionsResult{
		Status:       status,
		ErrorMessage: r.ErrorMessage,
		Routes:       make([]route.DirectionsRoute, 0, len(r.Routes)),
	}
	for _, wr := range r.Routes {
		dr := route.DirectionsRoute{
			Summary:          wr.Summary,
			OverviewPolyline: wr.OverviewPolyline.Points,
			Warnings:         wr.Warnings,
			WaypointOrder:    wr.WaypointOrder,
			Legs:             make([]route.Leg, 0, len(wr.Legs)),
		}
		for _, wl := range wr.Legs {
			leg := route.Leg{
				Distance:      route.Measure(wl.Distance),
				Duration:      route.Measure(wl.Duration),
				StartAddress:  wl.StartAddress,
				EndAddress:    wl.EndAddress,
				StartLocation: route.Coordinate(wl.StartLocation),
				EndLocation:   route.Coordinate(wl.EndLocation),
				Steps:         make([]route.Step, 0, len(wl.Steps)),
			}
			for _, ws := range wl.Steps {
				leg.Steps = append(leg.Steps, route.Step{
					Instructions: ws.HTMLInstructions,
					Distance:     route.Measure(ws.Distance),
					Duration:     route.Measure(ws.Duration),
				})
			}
			dr.Legs = append(dr.Legs, leg)
		}
		result.Routes = append(result.Routes, dr)
	}
	return result
}
