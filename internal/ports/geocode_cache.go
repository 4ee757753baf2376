package ports

import (
	"context"

	"carrier-search-portal/internal/domain"
)

// Persistent address -> coordinate cache. Keys are expected to be normalized by the caller.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, results map[string]domain.Coordinates) error
}
