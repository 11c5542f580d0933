package route

import (
	"errors"
	"math"
	"testing"

	"github.com/logistics/console/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoordinate(t *testing.T) {
	c := ParseCoordinate("37.7749,-122.4194")

	assert.Equal(t, 37.7749, c.Lat)
	assert.Equal(t, -122.4194, c.Lng)
	assert.True(t, c.IsFinite())
}

func TestParseCoordinate_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"letters", "abc"},
		{"empty", ""},
		{"missing longitude", "37.7749,"},
		{"too many parts", "1,2,3"},
		{"non numeric latitude", "north,-122.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ParseCoordinate(tt.input)
			assert.False(t, c.IsFinite())
		})
	}

	c := ParseCoordinate("abc")
	assert.True(t, math.IsNaN(c.Lat))
	assert.True(t, math.IsNaN(c.Lng))
}

func TestParseCoordinate_TrimsSpaces(t *testing.T) {
	c := ParseCoordinate(" 40.7128 , -74.0060 ")

	assert.Equal(t, 40.7128, c.Lat)
	assert.Equal(t, -74.006, c.Lng)
}

func TestCoordinate_Validate(t *testing.T) {
	tests := []struct {
		name    string
		coord   Coordinate
		wantErr bool
	}{
		{"valid", Coordinate{Lat: 37.7749, Lng: -122.4194}, false},
		{"bounds inclusive", Coordinate{Lat: -90, Lng: 180}, false},
		{"nan", Coordinate{Lat: math.NaN(), Lng: 1}, true},
		{"inf", Coordinate{Lat: 1, Lng: math.Inf(1)}, true},
		{"latitude out of range", Coordinate{Lat: 90.5, Lng: 0}, true},
		{"longitude out of range", Coordinate{Lat: 0, Lng: -181}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.coord.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidCoordinate))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCoordinate_String(t *testing.T) {
	assert.Equal(t, "37.7749,-122.4194", Coordinate{Lat: 37.7749, Lng: -122.4194}.String())
	assert.Equal(t, "1,2", Coordinate{Lat: 1, Lng: 2}.String())
}

func TestBuildDirectionsRequest_TwoPoints(t *testing.T) {
	req, err := BuildDirectionsRequest(RouteResponse{
		Route: []string{"37.422,-122.0841", "37.7749,-122.4194"},
	})

	require.NoError(t, err)
	assert.Equal(t, Coordinate{Lat: 37.422, Lng: -122.0841}, req.Origin)
	assert.Equal(t, Coordinate{Lat: 37.7749, Lng: -122.4194}, req.Destination)
	assert.Empty(t, req.Waypoints)
	assert.Equal(t, TravelModeDriving, req.TravelMode)
}

func TestBuildDirectionsRequest_WaypointsPreserveOrder(t *testing.T) {
	points := []string{
		"37.0,-122.0",
		"37.1,-122.1",
		"37.2,-122.2",
		"37.3,-122.3",
		"37.4,-122.4",
	}

	req, err := BuildDirectionsRequest(RouteResponse{Route: points})

	require.NoError(t, err)
	assert.Equal(t, ParseCoordinate(points[0]), req.Origin)
	assert.Equal(t, ParseCoordinate(points[4]), req.Destination)
	require.Len(t, req.Waypoints, 3)
	for i, wp := range req.Waypoints {
		assert.Equal(t, ParseCoordinate(points[i+1]), wp.Location)
		assert.True(t, wp.Stopover)
	}
}

func TestBuildDirectionsRequest_SinglePoint(t *testing.T) {
	req, err := BuildDirectionsRequest(RouteResponse{Route: []string{"37.7749,-122.4194"}})

	require.NoError(t, err)
	assert.Equal(t, req.Origin, req.Destination)
	assert.Empty(t, req.Waypoints)
}

func TestBuildDirectionsRequest_EmptyRoute(t *testing.T) {
	_, err := BuildDirectionsRequest(RouteResponse{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyRoute))

	var de *shared.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "EMPTY_ROUTE", de.Code)
}

func TestBuildDirectionsRequest_InvalidPoint(t *testing.T) {
	_, err := BuildDirectionsRequest(RouteResponse{
		Route: []string{"37.7749,-122.4194", "abc", "37.8,-122.5"},
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCoordinate))
	assert.Contains(t, err.Error(), "route point 1")
	assert.Contains(t, err.Error(), `"abc"`)
}

func TestBuildDirectionsRequest_OutOfRangePoint(t *testing.T) {
	_, err := BuildDirectionsRequest(RouteResponse{
		Route: []string{"137.7749,-122.4194", "37.8,-122.5"},
	})

	assert.True(t, errors.Is(err, ErrInvalidCoordinate))
}
