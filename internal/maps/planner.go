// README: Route & ETA calculator built on the Provider interface.
package maps

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"go.uber.org/zap"

	"lantern/internal/types"
)

// LegEstimate is the live distance/duration/ETA triple attached to
// tracking responses. ETA is the zero time when the duration text could
// not be parsed.
type LegEstimate struct {
	DistanceText string    `json:"distance_text"`
	DurationText string    `json:"duration_text"`
	ETA          time.Time `json:"eta,omitempty"`
}

// Planner computes routes and arrival estimates. now is replaceable in
// tests.
type Planner struct {
	provider Provider
	log      *zap.Logger
	now      func() time.Time
}

func NewPlanner(provider Provider, log *zap.Logger) *Planner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Planner{provider: provider, log: log, now: time.Now}
}

// Route returns the provider's route between two points. Fails with
// ErrRouteNotFound when the provider has no route.
func (p *Planner) Route(ctx context.Context, origin, destination types.Point, mode TravelMode) (Route, error) {
	return p.provider.Directions(ctx, origin, destination, mode)
}

// EstimatedArrival returns now plus the parsed route duration. Duration
// text that parses to nothing returns ErrUnparsableDuration; callers on
// tolerant paths log it and omit the ETA.
func (p *Planner) EstimatedArrival(ctx context.Context, origin, destination types.Point, mode TravelMode) (time.Time, error) {
	route, err := p.provider.Directions(ctx, origin, destination, mode)
	if err != nil {
		return time.Time{}, err
	}
	mins, err := parseDurationText(route.DurationText)
	if err != nil {
		p.log.Warn("duration text did not parse",
			zap.String("duration_text", route.DurationText))
		return time.Time{}, err
	}
	return p.now().Add(time.Duration(mins) * time.Minute), nil
}

// LiveLeg returns the best-effort distance/duration/ETA between two points.
// An unparsable duration yields a zero ETA but still returns the texts.
func (p *Planner) LiveLeg(ctx context.Context, origin, destination types.Point) (LegEstimate, error) {
	route, err := p.provider.Directions(ctx, origin, destination, ModeDriving)
	if err != nil {
		return LegEstimate{}, err
	}
	est := LegEstimate{
		DistanceText: route.DistanceText,
		DurationText: route.DurationText,
	}
	if mins, err := parseDurationText(route.DurationText); err == nil {
		est.ETA = p.now().Add(time.Duration(mins) * time.Minute)
	} else {
		p.log.Warn("duration text did not parse",
			zap.String("duration_text", route.DurationText))
	}
	return est, nil
}

var (
	hourRe  = regexp.MustCompile(`(\d+)\s*hour`)
	minRe   = regexp.MustCompile(`(\d+)\s*min`)
	floatRe = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// parseDurationText extracts minutes from provider duration strings like
// "15 mins" or "1 hour 30 mins". A missing token contributes zero; text
// with neither token is an ErrUnparsableDuration.
func parseDurationText(text string) (int, error) {
	mins := 0
	matched := false
	if m := hourRe.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		mins += h * 60
		matched = true
	}
	if m := minRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		mins += n
		matched = true
	}
	if !matched {
		return 0, ErrUnparsableDuration
	}
	return mins, nil
}

// firstFloat returns the first decimal number in text, or 0 with ok=false.
func firstFloat(text string) (float64, bool) {
	m := floatRe.FindString(text)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
