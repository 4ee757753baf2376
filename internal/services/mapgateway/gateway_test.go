package mapgateway

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"carrier-search-portal/internal/adapters/canvas"
	"carrier-search-portal/internal/domain"
	"carrier-search-portal/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeAutocomplete struct {
	input     string
	mu        sync.Mutex
	listeners map[int]func(domain.Place)
	next      int
}

func (a *fakeAutocomplete) Input() string { return a.input }

func (a *fakeAutocomplete) Suggest(context.Context, string) ([]domain.Place, error) {
	return nil, nil
}

func (a *fakeAutocomplete) Choose(p domain.Place) {
	a.mu.Lock()
	fns := make([]func(domain.Place), 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	a.mu.Unlock()
	for _, fn := range fns {
		fn(p)
	}
}

func (a *fakeAutocomplete) AddPlaceListener(fn func(domain.Place)) func() {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.next
	a.next++
	a.listeners[id] = fn
	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.listeners, id)
	}
}

type fakePlaces struct{ opts domain.AutocompleteOptions }

func (p *fakePlaces) NewAutocomplete(input string, opts domain.AutocompleteOptions) (ports.Autocomplete, error) {
	p.opts = opts
	return &fakeAutocomplete{input: input, listeners: map[int]func(domain.Place){}}, nil
}

type fakeDirections struct {
	result domain.DirectionsResult
	last   domain.DirectionsRequest
}

func (d *fakeDirections) Route(_ context.Context, req domain.DirectionsRequest) (domain.DirectionsResult, error) {
	d.last = req
	return d.result, nil
}

type fakeSDK struct {
	loaded     atomic.Bool
	places     *fakePlaces
	directions *fakeDirections
}

func newFakeSDK(loaded bool) *fakeSDK {
	s := &fakeSDK{places: &fakePlaces{}, directions: &fakeDirections{}}
	s.loaded.Store(loaded)
	return s
}

func (s *fakeSDK) Maps() ports.MapFactory {
	if !s.loaded.Load() {
		return nil
	}
	return canvas.NewFactory()
}

func (s *fakeSDK) Places() ports.PlacesService {
	if !s.loaded.Load() {
		return nil
	}
	return s.places
}

func (s *fakeSDK) Directions() ports.DirectionsService {
	if !s.loaded.Load() {
		return nil
	}
	return s.directions
}

func routes(n int) []domain.DirectionsRoute {
	out := make([]domain.DirectionsRoute, n)
	for i := range out {
		out[i] = domain.DirectionsRoute{Summary: "route", Path: []domain.Coordinates{{Lon: -74, Lat: 40.7}, {Lon: -77, Lat: 38.9}}}
	}
	return out
}

func fastGateway(sdk ports.MapSDK, attempts int) *Gateway {
	return New(sdk, WithPollInterval(time.Millisecond), WithMaxAttempts(attempts))
}

func TestIsAvailable(t *testing.T) {
	assert.False(t, New(nil).IsAvailable())
	assert.False(t, New(newFakeSDK(false)).IsAvailable())
	assert.True(t, New(newFakeSDK(true)).IsAvailable())
}

func TestWaitForReady_AlreadyLoaded(t *testing.T) {
	g := fastGateway(newFakeSDK(true), 5)

	require.NoError(t, g.WaitForReady(context.Background()))
	assert.Equal(t, StateReady, g.State())
	assert.Zero(t, g.PollLoops())
}

func TestWaitForReady_SharedLoop(t *testing.T) {
	sdk := newFakeSDK(false)
	g := New(sdk, WithPollInterval(5*time.Millisecond), WithMaxAttempts(200))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = g.WaitForReady(context.Background())
		}()
	}

	require.Eventually(t, func() bool { return g.State() == StatePolling }, time.Second, time.Millisecond)
	sdk.loaded.Store(true)
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.EqualValues(t, 1, g.PollLoops())
	assert.Equal(t, StateReady, g.State())

	require.NoError(t, g.WaitForReady(context.Background()))
	assert.EqualValues(t, 1, g.PollLoops(), "ready is remembered")
}

func TestWaitForReady_GivesUp(t *testing.T) {
	g := fastGateway(newFakeSDK(false), 3)

	err := g.WaitForReady(context.Background())
	require.Error(t, err)
	assert.Equal(t, domain.KindSDKLoad, domain.KindOf(err))
	assert.Equal(t, domain.MsgSDKLoad, domain.UserMessage(err))
	assert.Equal(t, StateFailed, g.State())

	_ = g.WaitForReady(context.Background())
	assert.EqualValues(t, 2, g.PollLoops(), "a later wait after failure polls again")
}

// readyOnSecondCheck reports the maps capability missing on the first probe only.
type readyOnSecondCheck struct {
	*fakeSDK
	checks atomic.Int32
}

func (s *readyOnSecondCheck) Maps() ports.MapFactory {
	if s.checks.Add(1) == 1 {
		return nil
	}
	return s.fakeSDK.Maps()
}

func TestWaitForReady_FirstAttemptDoesNotWait(t *testing.T) {
	sdk := &readyOnSecondCheck{fakeSDK: newFakeSDK(true)}
	g := New(sdk, WithPollInterval(time.Hour), WithMaxAttempts(50))

	start := time.Now()
	require.NoError(t, g.WaitForReady(context.Background()))
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, StateReady, g.State())
	assert.EqualValues(t, 1, g.PollLoops())

	failing := New(newFakeSDK(false), WithPollInterval(time.Hour), WithMaxAttempts(1))
	start = time.Now()
	require.Error(t, failing.WaitForReady(context.Background()))
	assert.Less(t, time.Since(start), time.Second)
}

func TestWaitForReady_ContextCancelled(t *testing.T) {
	g := fastGateway(newFakeSDK(false), 20)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := g.WaitForReady(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	require.Eventually(t, func() bool { return g.State() == StateFailed }, time.Second, time.Millisecond)
}

func TestCreateAutocomplete(t *testing.T) {
	none, err := New(newFakeSDK(false)).CreateAutocomplete("from-city", func(string) {})
	require.NoError(t, err)
	assert.Nil(t, none)

	sdk := newFakeSDK(true)
	g := New(sdk)

	var chosen []string
	h, err := g.CreateAutocomplete("from-city", func(addr string) { chosen = append(chosen, addr) })
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, []string{"(cities)"}, sdk.places.opts.Types)
	assert.Equal(t, "us", sdk.places.opts.Country)

	h.Choose(domain.Place{Name: "New York"})
	h.Choose(domain.Place{Name: "New York", FormattedAddress: "New York, NY, USA"})
	assert.Equal(t, []string{"New York, NY, USA"}, chosen)

	h.Close()
	h.Close()
	h.Choose(domain.Place{Name: "Boston", FormattedAddress: "Boston, MA, USA"})
	assert.Len(t, chosen, 1)
}

func TestCreateMap(t *testing.T) {
	m, err := New(newFakeSDK(false)).CreateMap("route-map")
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = New(newFakeSDK(true)).CreateMap("route-map", domain.WithZoom(9), domain.WithMapType("terrain"))
	require.NoError(t, err)
	require.NotNil(t, m)

	opts := m.Options()
	assert.Equal(t, 9, opts.Zoom)
	assert.Equal(t, "terrain", opts.MapTypeID)
	assert.Equal(t, domain.DefaultMapCenter, opts.Center)
	assert.False(t, opts.StreetViewControl)
	assert.False(t, opts.FullscreenControl)
	assert.False(t, opts.MapTypeControl)
}

func TestRenderRoutes(t *testing.T) {
	ctx := context.Background()
	sdk := newFakeSDK(true)
	sdk.directions.result = domain.DirectionsResult{Status: "OK", Routes: routes(4)}
	g := New(sdk)

	m, err := g.CreateMap("route-map")
	require.NoError(t, err)

	drawn, err := g.RenderRoutes(ctx, m, "New York, NY, USA", "Washington, DC, USA")
	require.NoError(t, err)
	require.Len(t, drawn, 3)

	assert.Equal(t, "DRIVING", sdk.directions.last.TravelMode)
	assert.True(t, sdk.directions.last.ProvideRouteAlternatives)

	wantColors := []string{"#1976D2", "#388E3C", "#F57C00"}
	for i, o := range drawn {
		assert.Equal(t, wantColors[i], o.StrokeColor)
		assert.Equal(t, 0.8, o.StrokeOpacity)
		assert.Equal(t, 6, o.StrokeWeight)
		assert.Equal(t, i > 0, o.SuppressMarkers)
	}
	assert.Len(t, m.Overlays(), 3)

	_, err = g.RenderRoutes(ctx, m, "New York, NY, USA", "Washington, DC, USA")
	require.NoError(t, err)
	assert.Len(t, m.Overlays(), 3, "previous overlays are replaced")

	drawn, err = g.RenderRoutes(ctx, m, "New York, NY, USA", "Washington, DC, USA", PrimaryRouteOnly())
	require.NoError(t, err)
	assert.Len(t, drawn, 1)
	assert.Len(t, m.Overlays(), 1)
}

func TestRenderRoutes_NoOps(t *testing.T) {
	ctx := context.Background()
	sdk := newFakeSDK(true)
	sdk.directions.result = domain.DirectionsResult{Status: "OK", Routes: routes(1)}
	g := New(sdk)
	m, err := g.CreateMap("route-map")
	require.NoError(t, err)

	drawn, err := g.RenderRoutes(ctx, m, "", "Washington, DC, USA")
	require.NoError(t, err)
	assert.Nil(t, drawn)
	assert.Empty(t, sdk.directions.last.Origin, "no request for a missing endpoint")

	sdk.loaded.Store(false)
	drawn, err = g.RenderRoutes(ctx, m, "A", "B")
	require.NoError(t, err)
	assert.Nil(t, drawn)
}

func TestRenderRoutes_ProviderStatus(t *testing.T) {
	sdk := newFakeSDK(true)
	sdk.directions.result = domain.DirectionsResult{Status: "ZERO_RESULTS"}
	g := New(sdk)
	m, err := g.CreateMap("route-map")
	require.NoError(t, err)

	_, err = g.RenderRoutes(context.Background(), m, "Honolulu, HI, USA", "Chicago, IL, USA")
	require.Error(t, err)
	assert.Equal(t, domain.KindDirections, domain.KindOf(err))

	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "ZERO_RESULTS", de.Status)
	assert.Empty(t, m.Overlays())
}

func TestForget(t *testing.T) {
	ctx := context.Background()
	sdk := newFakeSDK(true)
	sdk.directions.result = domain.DirectionsResult{Status: "OK", Routes: routes(2)}
	g := New(sdk)

	m, err := g.CreateMap("route-map")
	require.NoError(t, err)
	_, err = g.RenderRoutes(ctx, m, "A", "B")
	require.NoError(t, err)
	require.Len(t, m.Overlays(), 2)

	g.Forget(m)
	assert.Empty(t, m.Overlays())
	g.mu.Lock()
	assert.Empty(t, g.overlays)
	g.mu.Unlock()

	g.Forget(nil)
}
