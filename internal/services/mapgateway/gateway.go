// Package mapgateway guards every use of the external map SDK: it waits for the
// SDK to finish loading, then builds maps, autocomplete widgets and route overlays.
package mapgateway

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"carrier-search-portal/internal/domain"
	"carrier-search-portal/internal/platform/logger"
	"carrier-search-portal/internal/platform/metrics"
	"carrier-search-portal/internal/ports"

	"golang.org/x/sync/singleflight"
)

type State int32

const (
	StateNotChecked State = iota
	StatePolling
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePolling:
		return "polling"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "not_checked"
	}
}

const (
	DefaultPollInterval = 100 * time.Millisecond
	DefaultMaxAttempts  = 50

	routeStrokeOpacity = 0.8
	routeStrokeWeight  = 6
)

type Option func(*Gateway)

func WithPollInterval(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.interval = d
		}
	}
}

func WithMaxAttempts(n int) Option {
	return func(g *Gateway) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

type Gateway struct {
	sdk         ports.MapSDK
	interval    time.Duration
	maxAttempts int

	group singleflight.Group
	state atomic.Int32
	loops atomic.Int64

	mu       sync.Mutex
	overlays map[ports.MapCanvas][]string
}

func New(sdk ports.MapSDK, opts ...Option) *Gateway {
	g := &Gateway{
		sdk:         sdk,
		interval:    DefaultPollInterval,
		maxAttempts: DefaultMaxAttempts,
		overlays:    make(map[ports.MapCanvas][]string),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gateway) State() State { return State(g.state.Load()) }

// PollLoops reports how many polling loops have been started.
func (g *Gateway) PollLoops() int64 { return g.loops.Load() }

// IsAvailable reports whether the map, places and directions capabilities are all loaded.
func (g *Gateway) IsAvailable() bool {
	if g.sdk == nil {
		return false
	}
	return g.sdk.Maps() != nil && g.sdk.Places() != nil && g.sdk.Directions() != nil
}

// WaitForReady returns nil once the SDK is available. Concurrent callers share
// one polling loop; a caller whose ctx ends stops waiting but the loop goes on.
func (g *Gateway) WaitForReady(ctx context.Context) error {
	if g.State() == StateReady {
		return nil
	}
	if g.IsAvailable() {
		g.state.Store(int32(StateReady))
		metrics.RecordSDKWait("ready")
		return nil
	}

	ch := g.group.DoChan("sdk", func() (any, error) {
		return nil, g.poll()
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			metrics.RecordSDKWait("failed")
			logger.Ctx(ctx).Error().Err(res.Err).Msg("map SDK did not load")
			return res.Err
		}
		metrics.RecordSDKWait("ready")
		return nil
	case <-ctx.Done():
		metrics.RecordSDKWait("cancelled")
		return ctx.Err()
	}
}

func (g *Gateway) poll() error {
	g.loops.Add(1)
	metrics.RecordSDKPollLoop()
	g.state.Store(int32(StatePolling))

	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	// The first attempt runs immediately; later ones wait one interval each.
	for attempt := 1; ; attempt++ {
		if g.IsAvailable() {
			g.state.Store(int32(StateReady))
			logger.Log.Debug().Int("attempts", attempt).Msg("map SDK ready")
			return nil
		}
		if attempt >= g.maxAttempts {
			break
		}
		<-ticker.C
	}

	g.state.Store(int32(StateFailed))
	return &domain.Error{Kind: domain.KindSDKLoad, Message: domain.MsgSDKLoad}
}

// AutocompleteHandle is an attached autocomplete widget. Close detaches the listener.
type AutocompleteHandle struct {
	ports.Autocomplete
	once   sync.Once
	remove func()
}

func (h *AutocompleteHandle) Close() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		if h.remove != nil {
			h.remove()
		}
	})
}

// CreateAutocomplete attaches a city autocomplete to input. onPlaceChosen gets the
// formatted address of each chosen place; placeholder selections are ignored.
// It returns nil while the SDK is unavailable.
func (g *Gateway) CreateAutocomplete(input string, onPlaceChosen func(formattedAddress string)) (*AutocompleteHandle, error) {
	if !g.IsAvailable() {
		return nil, nil
	}

	ac, err := g.sdk.Places().NewAutocomplete(input, domain.DefaultAutocompleteOptions())
	if err != nil {
		return nil, err
	}

	remove := ac.AddPlaceListener(func(p domain.Place) {
		if p.FormattedAddress == "" || onPlaceChosen == nil {
			return
		}
		onPlaceChosen(p.FormattedAddress)
	})
	return &AutocompleteHandle{Autocomplete: ac, remove: remove}, nil
}

// CreateMap builds a map in container from the default options with opts applied.
// It returns nil while the SDK is unavailable.
func (g *Gateway) CreateMap(container string, opts ...domain.MapOption) (ports.MapCanvas, error) {
	if !g.IsAvailable() {
		return nil, nil
	}

	o := domain.DefaultMapOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return g.sdk.Maps().NewMap(container, o)
}

type renderConfig struct{ maxRoutes int }

type RenderOption func(*renderConfig)

// PrimaryRouteOnly draws only the first returned route.
func PrimaryRouteOnly() RenderOption {
	return func(c *renderConfig) { c.maxRoutes = 1 }
}

// RenderRoutes asks for driving directions from origin to destination and draws
// up to three routes on m, replacing what was drawn there before.
func (g *Gateway) RenderRoutes(
	ctx context.Context,
	m ports.MapCanvas,
	origin, destination string,
	opts ...RenderOption,
) ([]domain.RouteOverlay, error) {
	if m == nil || origin == "" || destination == "" || !g.IsAvailable() {
		return nil, nil
	}

	cfg := renderConfig{maxRoutes: domain.MaxRenderedRoutes}
	for _, opt := range opts {
		opt(&cfg)
	}

	l := logger.Ctx(ctx)
	res, err := g.sdk.Directions().Route(ctx, domain.DirectionsRequest{
		Origin:                   origin,
		Destination:              destination,
		TravelMode:               domain.TravelModeDriving,
		ProvideRouteAlternatives: true,
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordDirections(res.Status)

	if res.Status != domain.DirectionsStatusOK {
		l.Error().Str("status", res.Status).Str("origin", origin).Str("destination", destination).
			Msg("directions request failed")
		return nil, &domain.Error{Kind: domain.KindDirections, Message: domain.MsgRouteDisplay, Status: res.Status}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	for _, id := range g.overlays[m] {
		m.RemoveOverlay(id)
	}
	delete(g.overlays, m)

	routes := res.Routes
	if len(routes) > cfg.maxRoutes {
		routes = routes[:cfg.maxRoutes]
	}

	drawn := make([]domain.RouteOverlay, 0, len(routes))
	ids := make([]string, 0, len(routes))
	for i, r := range routes {
		o := domain.RouteOverlay{
			RouteIndex:      i,
			StrokeColor:     domain.RouteColor(i),
			StrokeOpacity:   routeStrokeOpacity,
			StrokeWeight:    routeStrokeWeight,
			SuppressMarkers: i > 0,
			Route:           r,
		}
		ids = append(ids, m.AddOverlay(o))
		drawn = append(drawn, o)
	}
	if len(ids) > 0 {
		g.overlays[m] = ids
	}

	l.Debug().Int("routes", len(drawn)).Str("origin", origin).Str("destination", destination).Msg("routes rendered")
	return drawn, nil
}

// Forget removes the overlays this gateway drew on m and stops tracking it.
// Call it before discarding a map.
func (g *Gateway) Forget(m ports.MapCanvas) {
	if m == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, id := range g.overlays[m] {
		m.RemoveOverlay(id)
	}
	delete(g.overlays, m)
}
