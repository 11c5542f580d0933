package maps

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/logistics/console/internal/domain/route"
	"github.com/logistics/console/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const okDirections = `{
  "status": "OK",
  "routes": [{
    "summary": "Market St",
    "overview_polyline": {"points": "a~l~Fjk~uOwHJy@P"},
    "waypoint_order": [0],
    "legs": [
      {
        "distance": {"text": "1.6 km", "value": 1600},
        "duration": {"text": "6 mins", "value": 360},
        "start_address": "A", "end_address": "B",
        "start_location": {"lat": 37.7749, "lng": -122.4194},
        "end_location": {"lat": 37.78, "lng": -122.41},
        "steps": [{"html_instructions": "Head <b>north</b>", "distance": {"text": "1.6 km", "value": 1600}, "duration": {"text": "6 mins", "value": 360}}]
      },
      {
        "distance": {"text": "0.9 km", "value": 900},
        "duration": {"text": "3 mins", "value": 180},
        "start_address": "B", "end_address": "C",
        "start_location": {"lat": 37.78, "lng": -122.41},
        "end_location": {"lat": 37.7849, "lng": -122.4094},
        "steps": []
      }
    ]
  }]
}`

func testMapsConfig(url string) config.MapsConfig {
	return config.MapsConfig{
		APIKey:        "test-key",
		DirectionsURL: url + "/directions/json",
		StaticMapURL:  url + "/staticmap",
		StaticSize:    "640x400",
	}
}

func threeStopRequest() route.DirectionsRequest {
	return route.DirectionsRequest{
		Origin:      route.Coordinate{Lat: 37.7749, Lng: -122.4194},
		Destination: route.Coordinate{Lat: 37.7849, Lng: -122.4094},
		Waypoints:   []route.Waypoint{{Location: route.Coordinate{Lat: 37.78, Lng: -122.41}, Stopover: true}},
		TravelMode:  route.TravelModeDriving,
	}
}

func TestDirectionsClient_Route(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		q := r.URL.Query()
		assert.Equal(t, "/directions/json", r.URL.Path)
		assert.Equal(t, "37.7749,-122.4194", q.Get("origin"))
		assert.Equal(t, "37.7849,-122.4094", q.Get("destination"))
		assert.Equal(t, "37.78,-122.41", q.Get("waypoints"))
		assert.Equal(t, "driving", q.Get("mode"))
		assert.Equal(t, "test-key", q.Get("key"))
		_, _ = w.Write([]byte(okDirections))
	}))
	defer server.Close()

	svc := NewDirectionsService(testMapsConfig(server.URL), WithHTTPClient(server.Client()))
	result, err := svc.Route(context.Background(), threeStopRequest())

	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, route.StatusOK, result.Status)
	primary := result.Primary()
	require.NotNil(t, primary)
	assert.Equal(t, "a~l~Fjk~uOwHJy@P", primary.OverviewPolyline)
	require.Len(t, primary.Legs, 2)
	assert.Equal(t, "Head <b>north</b>", primary.Legs[0].Steps[0].Instructions)
	assert.Equal(t, int64(2500), primary.TotalDistanceMeters())
	assert.Equal(t, int64(540), primary.TotalDurationSeconds())
}

func TestDirectionsClient_NonOKStatusIsResult(t *testing.T) {
	statuses := []route.Status{
		route.StatusZeroResults,
		route.StatusNotFound,
		route.StatusOverQueryLimit,
		route.StatusRequestDenied,
	}
	for _, status := range statuses {
		t.Run(string(status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"status":"` + string(status) + `","routes":[],"error_message":"nope"}`))
			}))
			defer server.Close()

			svc := NewDirectionsService(testMapsConfig(server.URL), WithHTTPClient(server.Client()))
			result, err := svc.Route(context.Background(), threeStopRequest())

			require.NoError(t, err)
			assert.Equal(t, status, result.Status)
			assert.Nil(t, result.Primary())
		})
	}
}

func TestDirectionsClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) }},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"status":`)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			svc := NewDirectionsService(testMapsConfig(server.URL), WithHTTPClient(server.Client()))
			_, err := svc.Route(context.Background(), threeStopRequest())

			assert.True(t, errors.Is(err, ErrProviderFailed))
		})
	}
}

func TestDirectionsClient_TransportErrorRedactsKey(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	svc := NewDirectionsService(testMapsConfig(url))
	_, err := svc.Route(context.Background(), threeStopRequest())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProviderFailed))
	assert.NotContains(t, errors.Unwrap(err).Error(), "test-key")
}

func TestDirectionsQuery(t *testing.T) {
	req := threeStopRequest()
	req.Waypoints = append(req.Waypoints, route.Waypoint{Location: route.Coordinate{Lat: 1, Lng: 2}})

	q := directionsQuery(req, "k")

	assert.Equal(t, "37.78,-122.41|via:1,2", q.Get("waypoints"))

	req.Waypoints = []route.Waypoint{}
	q = directionsQuery(req, "k")
	_, present := q["waypoints"]
	assert.False(t, present)
}

func TestNewDirectionsService_WithoutKey(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	cfg := testMapsConfig(server.URL)
	cfg.APIKey = ""
	svc := NewDirectionsService(cfg)

	_, disabled := svc.(DisabledDirections)
	assert.True(t, disabled)

	result, err := svc.Route(context.Background(), threeStopRequest())
	require.NoError(t, err)
	assert.Equal(t, route.StatusRequestDenied, result.Status)
	assert.Zero(t, calls.Load())
}

func TestToDomain_MissingStatus(t *testing.T) {
	result := directionsResponse{}.toDomain()

	assert.Equal(t, route.StatusUnknownError, result.Status)
	assert.NotNil(t, result.Routes)
}

func TestRedactKey(t *testing.T) {
	err := redactKey(errors.New(`Get "https://x/?key=secret": refused`), "secret")
	assert.False(t, strings.Contains(err.Error(), "secret"))
	assert.Contains(t, err.Error(), "REDACTED")
}
