package ports

import (
	"context"

	"carrier-search-portal/internal/domain"
)

// MapSDK is the external mapping environment. Each accessor returns nil while the
// corresponding capability is not loaded.
type MapSDK interface {
	Maps() MapFactory
	Places() PlacesService
	Directions() DirectionsService
}

type MapFactory interface {
	NewMap(container string, opts domain.MapOptions) (MapCanvas, error)
}

// MapCanvas is a map surface that route overlays are drawn on.
type MapCanvas interface {
	Container() string
	Options() domain.MapOptions
	AddOverlay(o domain.RouteOverlay) (id string)
	RemoveOverlay(id string) bool
	Overlays() []domain.RouteOverlay
}

type PlacesService interface {
	NewAutocomplete(input string, opts domain.AutocompleteOptions) (Autocomplete, error)
}

// Autocomplete is a place-suggestion widget bound to one input.
type Autocomplete interface {
	Input() string
	// Return place suggestions for the typed text.
	Suggest(ctx context.Context, text string) ([]domain.Place, error)
	// Select a place; fires every place listener.
	Choose(place domain.Place)
	// Register a place-changed listener; the returned func removes it.
	AddPlaceListener(fn func(domain.Place)) (remove func())
}

type DirectionsService interface {
	// Route returns a result whose Status is "OK" on success; err is reserved
	// for context cancellation and local failures.
	Route(ctx context.Context, req domain.DirectionsRequest) (domain.DirectionsResult, error)
}
