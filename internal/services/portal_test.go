package services

import (
	"context"
	"testing"
	"time"

	"carrier-search-portal/internal/adapters/canvas"
	"carrier-search-portal/internal/adapters/kv"
	"carrier-search-portal/internal/domain"
	"carrier-search-portal/internal/ports"
	"carrier-search-portal/internal/services/mapgateway"
	"carrier-search-portal/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAutocomplete struct{ input string }

func (a *stubAutocomplete) Input() string { return a.input }
func (a *stubAutocomplete) Suggest(_ context.Context, text string) ([]domain.Place, error) {
	return []domain.Place{{Name: text, FormattedAddress: text + ", USA"}}, nil
}
func (a *stubAutocomplete) Choose(domain.Place)                        {}
func (a *stubAutocomplete) AddPlaceListener(func(domain.Place)) func() { return func() {} }

type stubPlaces struct{}

func (stubPlaces) NewAutocomplete(input string, _ domain.AutocompleteOptions) (ports.Autocomplete, error) {
	return &stubAutocomplete{input: input}, nil
}

type stubDirections struct{}

func (stubDirections) Route(context.Context, domain.DirectionsRequest) (domain.DirectionsResult, error) {
	r := domain.DirectionsRoute{Path: []domain.Coordinates{{Lon: -74, Lat: 40.7}, {Lon: -77, Lat: 38.9}}}
	return domain.DirectionsResult{Status: domain.DirectionsStatusOK, Routes: []domain.DirectionsRoute{r, r, r}}, nil
}

type stubSDK struct{ loaded bool }

func (s stubSDK) Maps() ports.MapFactory {
	if !s.loaded {
		return nil
	}
	return canvas.NewFactory()
}

func (s stubSDK) Places() ports.PlacesService {
	if !s.loaded {
		return nil
	}
	return stubPlaces{}
}

func (s stubSDK) Directions() ports.DirectionsService {
	if !s.loaded {
		return nil
	}
	return stubDirections{}
}

func newTestPortal(t *testing.T, sdk ports.MapSDK) *Portal {
	t.Helper()
	store := storage.NewStore(kv.NewMemoryBackend())
	searcher := &stubSearcher{fn: func(context.Context, string, string) ([]domain.Carrier, error) {
		return threeCarriers(), nil
	}}
	gw := mapgateway.New(sdk, mapgateway.WithPollInterval(time.Millisecond), mapgateway.WithMaxAttempts(3))
	return NewPortal(searcher, storage.NewHistory(store), storage.NewPreferences(store), gw)
}

func TestPortal_RouteMapFollowsPreferences(t *testing.T) {
	ctx := context.Background()
	p := newTestPortal(t, stubSDK{loaded: true})

	drawn, err := p.RouteMap(ctx, "New York, NY, USA", "Washington, DC, USA")
	require.NoError(t, err)
	assert.Len(t, drawn, 3)

	off := false
	p.Preferences.Update(ctx, domain.PreferencesPatch{ShowAlternativeRoutes: &off})

	drawn, err = p.RouteMap(ctx, "New York, NY, USA", "Washington, DC, USA")
	require.NoError(t, err)
	assert.Len(t, drawn, 1)
	assert.Len(t, p.routeMap.Overlays(), 1)

	old := p.routeMap
	terrain := "terrain"
	p.Preferences.Update(ctx, domain.PreferencesPatch{MapType: &terrain})
	_, err = p.RouteMap(ctx, "New York, NY, USA", "Washington, DC, USA")
	require.NoError(t, err)
	assert.Equal(t, "terrain", p.routeMap.Options().MapTypeID)
	assert.NotSame(t, old, p.routeMap)
	assert.Empty(t, old.Overlays(), "the replaced map is cleared")
	assert.Len(t, p.routeMap.Overlays(), 1)
}

func TestPortal_RouteMapWithoutSDK(t *testing.T) {
	p := newTestPortal(t, stubSDK{})

	_, err := p.RouteMap(context.Background(), "A", "B")
	require.Error(t, err)
	assert.Equal(t, domain.KindSDKLoad, domain.KindOf(err))
}

func TestPortal_SearchFromHistory(t *testing.T) {
	ctx := context.Background()
	p := newTestPortal(t, stubSDK{loaded: true})

	p.Search.Submit(ctx, "New York, NY, USA", "Washington, DC, USA")
	entry := p.History.List(ctx)[0]
	p.Search.Clear()

	st, ok := p.SearchFromHistory(ctx, entry.ID)
	require.True(t, ok)
	assert.Len(t, st.Carriers, 3)
	assert.Equal(t, "New York, NY, USA", st.Route.From)

	_, ok = p.SearchFromHistory(ctx, -1)
	assert.False(t, ok)
}

func TestPortal_SuggestPlaces(t *testing.T) {
	p := newTestPortal(t, stubSDK{loaded: true})

	places, err := p.SuggestPlaces(context.Background(), "from-city", "Chicago")
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "Chicago, USA", places[0].FormattedAddress)
}
