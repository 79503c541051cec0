// README: Google Maps implementation of the Provider interface.
package maps

import (
	"context"
	"fmt"
	"time"

	gmaps "googlemaps.github.io/maps"

	"lantern/internal/types"
)

// GoogleProvider adapts the official Google Maps client to Provider.
// One instance is constructed per process and injected; it is never a
// package-level singleton so tests can substitute a fake Provider.
type GoogleProvider struct {
	client  *gmaps.Client
	timeout time.Duration
}

// NewGoogleProvider creates a GoogleProvider with the given API key.
// Every outbound call is bounded by timeout.
func NewGoogleProvider(apiKey string, timeout time.Duration) (*GoogleProvider, error) {
	client, err := gmaps.NewClient(gmaps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &GoogleProvider{client: client, timeout: timeout}, nil
}

func (g *GoogleProvider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, g.timeout)
}

func (g *GoogleProvider) Geocode(ctx context.Context, address string) ([]GeocodeResult, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	results, err := g.client.Geocode(ctx, &gmaps.GeocodingRequest{Address: address})
	if err != nil {
		return nil, fmt.Errorf("geocode: %w: %s", ErrProviderUnavailable, err)
	}
	out := make([]GeocodeResult, 0, len(results))
	for _, r := range results {
		out = append(out, GeocodeResult{
			Position:         types.Point{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
			FormattedAddress: r.FormattedAddress,
			PlaceID:          r.PlaceID,
		})
	}
	return out, nil
}

func (g *GoogleProvider) ReverseGeocode(ctx context.Context, p types.Point) ([]GeocodeResult, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	results, err := g.client.ReverseGeocode(ctx, &gmaps.GeocodingRequest{
		LatLng: &gmaps.LatLng{Lat: p.Lat, Lng: p.Lng},
	})
	if err != nil {
		return nil, fmt.Errorf("reverse geocode: %w: %s", ErrProviderUnavailable, err)
	}
	out := make([]GeocodeResult, 0, len(results))
	for _, r := range results {
		out = append(out, GeocodeResult{
			Position:         types.Point{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
			FormattedAddress: r.FormattedAddress,
			PlaceID:          r.PlaceID,
		})
	}
	return out, nil
}

func (g *GoogleProvider) NearbyPlaces(ctx context.Context, center types.Point, radiusMeters uint, placeType, keyword string) ([]Place, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	req := &gmaps.NearbySearchRequest{
		Location: &gmaps.LatLng{Lat: center.Lat, Lng: center.Lng},
		Radius:   radiusMeters,
		Keyword:  keyword,
	}
	if placeType != "" {
		if t, err := gmaps.ParsePlaceType(placeType); err == nil {
			req.Type = t
		} else if req.Keyword == "" {
			// Unknown type strings still narrow the search as a keyword.
			req.Keyword = placeType
		}
	}

	resp, err := g.client.NearbySearch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("nearby search: %w: %s", ErrProviderUnavailable, err)
	}
	return toPlaces(resp.Results), nil
}

func (g *GoogleProvider) TextSearch(ctx context.Context, query string, near *types.Point, radiusMeters uint) ([]Place, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	req := &gmaps.TextSearchRequest{Query: query}
	if near != nil {
		req.Location = &gmaps.LatLng{Lat: near.Lat, Lng: near.Lng}
		req.Radius = radiusMeters
	}

	resp, err := g.client.TextSearch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("text search: %w: %s", ErrProviderUnavailable, err)
	}
	return toPlaces(resp.Results), nil
}

func (g *GoogleProvider) Directions(ctx context.Context, origin, destination types.Point, mode TravelMode) (Route, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	routes, _, err := g.client.Directions(ctx, &gmaps.DirectionsRequest{
		Origin:      formatLatLng(origin),
		Destination: formatLatLng(destination),
		Mode:        travelMode(mode),
	})
	if err != nil {
		return Route{}, fmt.Errorf("directions: %w: %s", ErrProviderUnavailable, err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return Route{}, ErrRouteNotFound
	}

	leg := routes[0].Legs[0]
	out := Route{
		DistanceText:   leg.Distance.HumanReadable,
		DurationText:   formatDurationText(leg.Duration),
		DistanceMeters: leg.Distance.Meters,
		Polyline:       routes[0].OverviewPolyline.Points,
	}
	for _, step := range leg.Steps {
		out.Steps = append(out.Steps, RouteStep{
			Instruction:  step.HTMLInstructions,
			DistanceText: step.Distance.HumanReadable,
			DurationText: formatDurationText(step.Duration),
		})
	}
	return out, nil
}

func (g *GoogleProvider) DistanceMatrix(ctx context.Context, origins, destinations []types.Point, mode TravelMode) (Matrix, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	req := &gmaps.DistanceMatrixRequest{Mode: travelMode(mode)}
	for _, o := range origins {
		req.Origins = append(req.Origins, formatLatLng(o))
	}
	for _, d := range destinations {
		req.Destinations = append(req.Destinations, formatLatLng(d))
	}

	resp, err := g.client.DistanceMatrix(ctx, req)
	if err != nil {
		return Matrix{}, fmt.Errorf("distance matrix: %w: %s", ErrProviderUnavailable, err)
	}

	out := Matrix{Origins: resp.OriginAddresses, Destinations: resp.DestinationAddresses}
	for _, row := range resp.Rows {
		var cells []MatrixElement
		for _, el := range row.Elements {
			cells = append(cells, MatrixElement{
				Status:         el.Status,
				DistanceText:   el.Distance.HumanReadable,
				DurationText:   formatDurationText(el.Duration),
				DistanceMeters: el.Distance.Meters,
			})
		}
		out.Rows = append(out.Rows, cells)
	}
	return out, nil
}

func (g *GoogleProvider) PlaceDetails(ctx context.Context, placeID string) (*PlaceDetail, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	r, err := g.client.PlaceDetails(ctx, &gmaps.PlaceDetailsRequest{PlaceID: placeID})
	if err != nil {
		return nil, fmt.Errorf("place details: %w: %s", ErrProviderUnavailable, err)
	}
	if r.PlaceID == "" && r.Name == "" {
		return nil, ErrNoResult
	}
	return &PlaceDetail{
		PlaceID:  r.PlaceID,
		Name:     r.Name,
		Address:  r.FormattedAddress,
		Phone:    r.FormattedPhoneNumber,
		Website:  r.Website,
		Position: types.Point{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
		Rating:   r.Rating,
	}, nil
}

func toPlaces(results []gmaps.PlacesSearchResult) []Place {
	out := make([]Place, 0, len(results))
	for _, r := range results {
		addr := r.FormattedAddress
		if addr == "" {
			addr = r.Vicinity
		}
		out = append(out, Place{
			PlaceID:          r.PlaceID,
			Name:             r.Name,
			Address:          addr,
			Position:         types.Point{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
			Rating:           r.Rating,
			UserRatingsTotal: r.UserRatingsTotal,
		})
	}
	return out
}

func travelMode(m TravelMode) gmaps.Mode {
	switch m {
	case ModeWalking:
		return gmaps.TravelModeWalking
	case ModeTransit:
		return gmaps.TravelModeTransit
	default:
		return gmaps.TravelModeDriving
	}
}

func formatLatLng(p types.Point) string {
	return fmt.Sprintf("%f,%f", p.Lat, p.Lng)
}

// formatDurationText renders a duration the way the provider's REST API
// does ("15 mins", "1 hour 30 mins") so the text-based ETA contract holds
// regardless of client library.
func formatDurationText(d time.Duration) string {
	mins := int(d.Round(time.Minute).Minutes())
	if mins < 1 {
		mins = 1
	}
	hours := mins / 60
	mins = mins % 60
	switch {
	case hours == 0 && mins == 1:
		return "1 min"
	case hours == 0:
		return fmt.Sprintf("%d mins", mins)
	case mins == 0 && hours == 1:
		return "1 hour"
	case mins == 0:
		return fmt.Sprintf("%d hours", hours)
	case hours == 1:
		return fmt.Sprintf("1 hour %d mins", mins)
	default:
		return fmt.Sprintf("%d hours %d mins", hours, mins)
	}
}
