// README: In-memory Provider fake shared by the maps package tests.
package maps

import (
	"context"

	"lantern/internal/types"
)

func pt(lat, lng float64) types.Point {
	return types.Point{Lat: lat, Lng: lng}
}

// fakeProvider returns canned routes keyed by call count and can be forced
// to fail from a given leg onwards.
type fakeProvider struct {
	routes    []Route
	err       error
	failAfter int // fail on the Nth Directions call (0-based); -1 disables
	calls     []([2]types.Point)
}

func newFakeProvider(routes ...Route) *fakeProvider {
	return &fakeProvider{routes: routes, failAfter: -1}
}

func (f *fakeProvider) Directions(_ context.Context, origin, destination types.Point, _ TravelMode) (Route, error) {
	n := len(f.calls)
	f.calls = append(f.calls, [2]types.Point{origin, destination})
	if f.err != nil && (f.failAfter < 0 || n >= f.failAfter) {
		return Route{}, f.err
	}
	if n < len(f.routes) {
		return f.routes[n], nil
	}
	if len(f.routes) > 0 {
		return f.routes[len(f.routes)-1], nil
	}
	return Route{}, ErrRouteNotFound
}

func (f *fakeProvider) Geocode(context.Context, string) ([]GeocodeResult, error) {
	return nil, nil
}

func (f *fakeProvider) ReverseGeocode(context.Context, types.Point) ([]GeocodeResult, error) {
	return nil, nil
}

func (f *fakeProvider) NearbyPlaces(context.Context, types.Point, uint, string, string) ([]Place, error) {
	return nil, nil
}

func (f *fakeProvider) TextSearch(context.Context, string, *types.Point, uint) ([]Place, error) {
	return nil, nil
}

func (f *fakeProvider) DistanceMatrix(context.Context, []types.Point, []types.Point, TravelMode) (Matrix, error) {
	return Matrix{}, nil
}

func (f *fakeProvider) PlaceDetails(context.Context, string) (*PlaceDetail, error) {
	return nil, ErrNoResult
}
