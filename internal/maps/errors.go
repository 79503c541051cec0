// README: Typed mapping-provider errors; callers branch on these, never on raw API errors.
package maps

import "errors"

var (
	// ErrProviderUnavailable wraps any transport or API failure from the
	// mapping provider, including timeouts.
	ErrProviderUnavailable = errors.New("mapping provider unavailable")

	// ErrNoResult means the provider answered but had nothing matching.
	ErrNoResult = errors.New("no result")

	// ErrRouteNotFound means the provider returned zero routes between the
	// requested points.
	ErrRouteNotFound = errors.New("route not found")

	// ErrUnparsableDuration means a human duration string ("15 mins") had no
	// recognizable hour/minute tokens. The public ETA contract degrades this
	// to "no ETA"; it is kept as a distinct error so it shows up in logs.
	ErrUnparsableDuration = errors.New("unparsable duration text")
)
