package services

import (
	"context"
	"strings"

	"carrier-search-portal/internal/domain"
	"carrier-search-portal/internal/platform/obs"
	"carrier-search-portal/internal/ports"
)

// CanonicalizeAlias lower-cases s and collapses runs of whitespace into single spaces.
func CanonicalizeAlias(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// CarrierCatalog answers carrier lookups for the search API.
type CarrierCatalog struct {
	repo ports.CarrierRepository
}

func NewCarrierCatalog(repo ports.CarrierRepository) *CarrierCatalog {
	return &CarrierCatalog{repo: repo}
}

// CanonicalCity resolves a free-form city name to its canonical form.
// ok is false when the name is not a known alias.
func (c *CarrierCatalog) CanonicalCity(ctx context.Context, city string) (string, bool, error) {
	alias := CanonicalizeAlias(city)
	if alias == "" {
		return "", false, nil
	}
	return c.repo.ResolveAlias(ctx, alias)
}

// Find returns the carriers for from -> to. Routes are directional; a pair that
// is not listed (or a city that does not canonicalize) falls back to the defaults.
// matched reports whether a listed route was used.
func (c *CarrierCatalog) Find(ctx context.Context, from, to string) (carriers []domain.Carrier, matched bool, err error) {
	defer obs.Time(ctx, "catalog_find")(&err)

	fromCanon, fromOK, err := c.CanonicalCity(ctx, from)
	if err != nil {
		return nil, false, err
	}
	toCanon, toOK, err := c.CanonicalCity(ctx, to)
	if err != nil {
		return nil, false, err
	}

	if fromOK && toOK {
		carriers, ok, err := c.repo.CarriersForRoute(ctx, fromCanon, toCanon)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return carriers, true, nil
		}
	}

	carriers, err = c.repo.DefaultCarriers(ctx)
	if err != nil {
		return nil, false, err
	}
	return carriers, false, nil
}
