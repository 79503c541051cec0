// README: Mapping provider contract; a pure translation layer over the external geospatial API.
package maps

import (
	"context"

	"lantern/internal/types"
)

// TravelMode selects the routing profile for directions and matrix calls.
type TravelMode string

const (
	ModeDriving TravelMode = "driving"
	ModeWalking TravelMode = "walking"
	ModeTransit TravelMode = "transit"
)

// GeocodeResult is one forward or reverse geocoding match.
type GeocodeResult struct {
	Position         types.Point `json:"position"`
	FormattedAddress string      `json:"formatted_address"`
	PlaceID          string      `json:"place_id,omitempty"`
}

// Place is a simplified place-search result. DistanceKm is filled by
// RankByStraightLine and is zero otherwise.
type Place struct {
	PlaceID          string      `json:"place_id"`
	Name             string      `json:"name"`
	Address          string      `json:"address"`
	Position         types.Point `json:"position"`
	Rating           float32     `json:"rating"`
	UserRatingsTotal int         `json:"user_ratings_total"`
	DistanceKm       float64     `json:"distance_km,omitempty"`
}

// PlaceDetail carries the extra fields of a place-details lookup.
type PlaceDetail struct {
	PlaceID  string      `json:"place_id"`
	Name     string      `json:"name"`
	Address  string      `json:"address"`
	Phone    string      `json:"phone,omitempty"`
	Website  string      `json:"website,omitempty"`
	Position types.Point `json:"position"`
	Rating   float32     `json:"rating"`
}

// RouteStep is a single instruction of a route.
type RouteStep struct {
	Instruction  string `json:"instruction"`
	DistanceText string `json:"distance_text"`
	DurationText string `json:"duration_text"`
}

// Route is a single origin→destination route. Distance and duration are
// carried as human-readable text; downstream ETA math parses the text
// (see parseDurationText) rather than trusting a numeric field, matching
// the provider-agnostic contract.
type Route struct {
	DistanceText   string      `json:"distance_text"`
	DurationText   string      `json:"duration_text"`
	DistanceMeters int         `json:"distance_meters"`
	Polyline       string      `json:"polyline,omitempty"`
	Steps          []RouteStep `json:"steps,omitempty"`
}

// MatrixElement is one origin×destination cell of a distance matrix.
type MatrixElement struct {
	Status         string `json:"status"`
	DistanceText   string `json:"distance_text"`
	DurationText   string `json:"duration_text"`
	DistanceMeters int    `json:"distance_meters"`
}

// Matrix is a full distance-matrix response.
type Matrix struct {
	Origins      []string          `json:"origins"`
	Destinations []string          `json:"destinations"`
	Rows         [][]MatrixElement `json:"rows"`
}

// Provider is the uniform interface over the external geospatial API.
// Every operation is a network call that may fail; failures surface as the
// typed errors in errors.go so callers can choose to tolerate them.
type Provider interface {
	Geocode(ctx context.Context, address string) ([]GeocodeResult, error)
	ReverseGeocode(ctx context.Context, p types.Point) ([]GeocodeResult, error)
	NearbyPlaces(ctx context.Context, center types.Point, radiusMeters uint, placeType, keyword string) ([]Place, error)
	TextSearch(ctx context.Context, query string, near *types.Point, radiusMeters uint) ([]Place, error)
	Directions(ctx context.Context, origin, destination types.Point, mode TravelMode) (Route, error)
	DistanceMatrix(ctx context.Context, origins, destinations []types.Point, mode TravelMode) (Matrix, error)
	PlaceDetails(ctx context.Context, placeID string) (*PlaceDetail, error)
}
