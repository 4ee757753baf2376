package ports

import (
	"context"

	"carrier-search-portal/internal/domain"
)

// Contract for looking up carriers operating between two places.
type CarrierSearcher interface {
	// Return carriers for the from -> to route. Inputs are display-formatted place names.
	Search(ctx context.Context, from string, to string) ([]domain.Carrier, error)
}

// Records completed searches.
type SearchRecorder interface {
	Record(ctx context.Context, from string, to string, resultCount int)
}
