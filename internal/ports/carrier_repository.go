package ports

import (
	"context"

	"carrier-search-portal/internal/domain"
)

// Port: a boundary for the carrier catalog served by the search API.
type CarrierRepository interface {
	// Return the canonical city name for a normalized alias; ok is false when unknown.
	ResolveAlias(ctx context.Context, alias string) (canonical string, ok bool, err error)
	// Return carriers for a canonical route; ok is false when the route is not listed.
	CarriersForRoute(ctx context.Context, from string, to string) (carriers []domain.Carrier, ok bool, err error)
	// Return carriers used for routes that are not listed.
	DefaultCarriers(ctx context.Context) ([]domain.Carrier, error)
}
