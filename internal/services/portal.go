package services

import (
	"context"
	"sync"

	"carrier-search-portal/internal/domain"
	"carrier-search-portal/internal/ports"
	"carrier-search-portal/internal/services/mapgateway"
	"carrier-search-portal/internal/storage"
)

// RouteMapContainer names the single map surface the portal draws on.
const RouteMapContainer = "route-map"

// Portal ties the search, history, settings and map screens together.
type Portal struct {
	Search      *SearchOrchestrator
	History     *storage.History
	Preferences *storage.Preferences
	Maps        *mapgateway.Gateway

	mapMu    sync.Mutex
	routeMap ports.MapCanvas
}

func NewPortal(
	searcher ports.CarrierSearcher,
	history *storage.History,
	prefs *storage.Preferences,
	maps *mapgateway.Gateway,
) *Portal {
	return &Portal{
		Search:      NewSearchOrchestrator(searcher, history),
		History:     history,
		Preferences: prefs,
		Maps:        maps,
	}
}

// SearchFromHistory re-runs the search stored under id; ok is false when no entry matches.
func (p *Portal) SearchFromHistory(ctx context.Context, id int64) (SearchState, bool) {
	for _, e := range p.History.List(ctx) {
		if e.ID == id {
			return p.Search.Submit(ctx, e.From, e.To), true
		}
	}
	return p.Search.State(), false
}

// RouteMap waits for the map SDK and draws the routes between from and to on
// the portal map. Only the primary route is drawn when alternatives are
// turned off in the preferences.
func (p *Portal) RouteMap(ctx context.Context, from, to string) ([]domain.RouteOverlay, error) {
	if err := p.Maps.WaitForReady(ctx); err != nil {
		return nil, err
	}

	p.mapMu.Lock()
	defer p.mapMu.Unlock()

	prefs := p.Preferences.Get(ctx)
	m, err := p.mapCanvas(prefs)
	if err != nil {
		return nil, err
	}

	var opts []mapgateway.RenderOption
	if !prefs.ShowAlternativeRoutes {
		opts = append(opts, mapgateway.PrimaryRouteOnly())
	}
	return p.Maps.RenderRoutes(ctx, m, from, to, opts...)
}

// mapCanvas returns the portal map, rebuilding it when the preferred map type changed.
// Callers hold mapMu.
func (p *Portal) mapCanvas(prefs domain.UserPreferences) (ports.MapCanvas, error) {
	if p.routeMap != nil && p.routeMap.Options().MapTypeID == prefs.MapType {
		return p.routeMap, nil
	}

	m, err := p.Maps.CreateMap(RouteMapContainer, domain.WithMapType(prefs.MapType))
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, &domain.Error{Kind: domain.KindSDKLoad, Message: domain.MsgSDKLoad}
	}
	p.Maps.Forget(p.routeMap)
	p.routeMap = m
	return m, nil
}

// SuggestPlaces returns autocomplete suggestions for a city field.
func (p *Portal) SuggestPlaces(ctx context.Context, field, text string) ([]domain.Place, error) {
	if err := p.Maps.WaitForReady(ctx); err != nil {
		return nil, err
	}

	h, err := p.Maps.CreateAutocomplete(field, nil)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, &domain.Error{Kind: domain.KindSDKLoad, Message: domain.MsgSDKLoad}
	}
	defer h.Close()

	return h.Suggest(ctx, text)
}
