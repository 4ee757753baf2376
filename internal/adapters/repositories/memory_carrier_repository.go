package repositories

import (
	"context"
	"slices"

	"carrier-search-portal/internal/domain"
)

type routeKey struct{ from, to string }

// In-memory CarrierRepository built from a CatalogSeed. Read-only after construction.
type MemoryCarrierRepository struct {
	aliases  map[string]string
	routes   map[routeKey][]domain.Carrier
	defaults []domain.Carrier
}

func NewMemoryCarrierRepository(seed CatalogSeed) (*MemoryCarrierRepository, error) {
	if err := seed.Validate(); err != nil {
		return nil, err
	}

	r := &MemoryCarrierRepository{
		aliases:  seed.Aliases,
		routes:   make(map[routeKey][]domain.Carrier, len(seed.Routes)),
		defaults: toCarriers(seed.Defaults),
	}
	for _, rt := range seed.Routes {
		r.routes[routeKey{rt.From, rt.To}] = toCarriers(rt.Carriers)
	}
	return r, nil
}

func (m *MemoryCarrierRepository) ResolveAlias(ctx context.Context, alias string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	canonical, ok := m.aliases[alias]
	return canonical, ok, nil
}

func (m *MemoryCarrierRepository) CarriersForRoute(ctx context.Context, from, to string) ([]domain.Carrier, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	carriers, ok := m.routes[routeKey{from, to}]
	if !ok || len(carriers) == 0 {
		return nil, false, nil
	}
	return slices.Clone(carriers), true, nil
}

func (m *MemoryCarrierRepository) DefaultCarriers(ctx context.Context) ([]domain.Carrier, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(m.defaults), nil
}

func toCarriers(seeds []CarrierSeed) []domain.Carrier {
	out := make([]domain.Carrier, 0, len(seeds))
	for _, c := range seeds {
		out = append(out, domain.Carrier{Name: c.Name, TrucksPerDay: float64(c.TrucksPerDay)})
	}
	return out
}
