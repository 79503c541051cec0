// README: Multi-stop route chaining; input stop order is preserved, not reordered.
package maps

import (
	"context"
	"fmt"

	"lantern/internal/types"
)

// RouteLeg is one origin→destination segment of a chained plan.
type RouteLeg struct {
	Origin       types.Point `json:"origin"`
	Destination  types.Point `json:"destination"`
	Route        Route       `json:"route"`
	DistanceKm   float64     `json:"distance_km"`
	DurationMins float64     `json:"duration_mins"`
}

// RoutePlan is the aggregate of all legs. Totals are sums of each leg's
// first parsed numeric value, so they inherit the unit of the provider's
// distance text.
type RoutePlan struct {
	TotalDistanceKm   float64    `json:"total_distance_km"`
	TotalDurationMins float64    `json:"total_duration_mins"`
	Legs              []RouteLeg `json:"legs"`
}

// OptimizeRoute chains routes start→stops[0]→stops[1]→… in the given
// order. This is route chaining, not combinatorial optimization. Any
// leg's failure aborts the whole computation.
func (p *Planner) OptimizeRoute(ctx context.Context, start types.Point, stops []types.Point, mode TravelMode) (*RoutePlan, error) {
	if len(stops) == 0 {
		return nil, fmt.Errorf("optimize route: %w", ErrNoResult)
	}

	plan := &RoutePlan{}
	origin := start
	for i, stop := range stops {
		route, err := p.provider.Directions(ctx, origin, stop, mode)
		if err != nil {
			return nil, fmt.Errorf("leg %d: %w", i, err)
		}

		leg := RouteLeg{Origin: origin, Destination: stop, Route: route}
		if v, ok := firstFloat(route.DistanceText); ok {
			leg.DistanceKm = v
		}
		if v, ok := firstFloat(route.DurationText); ok {
			leg.DurationMins = v
		}

		plan.TotalDistanceKm += leg.DistanceKm
		plan.TotalDurationMins += leg.DurationMins
		plan.Legs = append(plan.Legs, leg)
		origin = stop
	}
	return plan, nil
}
