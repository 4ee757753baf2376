// Package canvas is a server-side map surface: it keeps the route overlays drawn
// on each map and renders them as a GeoJSON FeatureCollection.
package canvas

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"carrier-search-portal/internal/domain"
	"carrier-search-portal/internal/ports"
)

var ErrNoContainer = errors.New("canvas: container is required")

// Factory creates Maps. It satisfies ports.MapFactory.
type Factory struct{}

func NewFactory() *Factory { return &Factory{} }

func (f *Factory) NewMap(container string, opts domain.MapOptions) (ports.MapCanvas, error) {
	return New(container, opts)
}

type Map struct {
	container string
	opts      domain.MapOptions

	mu       sync.Mutex
	seq      int
	order    []string
	overlays map[string]domain.RouteOverlay
}

func New(container string, opts domain.MapOptions) (*Map, error) {
	container = strings.TrimSpace(container)
	if container == "" {
		return nil, ErrNoContainer
	}
	return &Map{
		container: container,
		opts:      opts,
		overlays:  make(map[string]domain.RouteOverlay),
	}, nil
}

func (m *Map) Container() string          { return m.container }
func (m *Map) Options() domain.MapOptions { return m.opts }

func (m *Map) AddOverlay(o domain.RouteOverlay) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	id := fmt.Sprintf("%s/route-%d", m.container, m.seq)
	m.overlays[id] = o
	m.order = append(m.order, id)
	return id
}

func (m *Map) RemoveOverlay(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.overlays[id]; !ok {
		return false
	}
	delete(m.overlays, id)
	m.order = slices.DeleteFunc(m.order, func(s string) bool { return s == id })
	return true
}

// Overlays returns the drawn overlays in drawing order.
func (m *Map) Overlays() []domain.RouteOverlay {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.RouteOverlay, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.overlays[id])
	}
	return out
}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string         `json:"type"`
	Geometry   lineString     `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type lineString struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"`
}

// GeoJSON renders the overlays as LineString features carrying their stroke style.
func (m *Map) GeoJSON() ([]byte, error) {
	return RenderGeoJSON(m.Overlays())
}

func RenderGeoJSON(overlays []domain.RouteOverlay) ([]byte, error) {
	fc := featureCollection{Type: "FeatureCollection", Features: make([]feature, 0, len(overlays))}
	for _, o := range overlays {
		coords := make([][]float64, 0, len(o.Route.Path))
		for _, c := range o.Route.Path {
			coords = append(coords, c.CoordsToList())
		}

		fc.Features = append(fc.Features, feature{
			Type:     "Feature",
			Geometry: lineString{Type: "LineString", Coordinates: coords},
			Properties: map[string]any{
				"route_index":      o.RouteIndex,
				"summary":          o.Route.Summary,
				"distance_meters":  o.Route.DistanceMeters,
				"duration_seconds": o.Route.DurationSeconds,
				"stroke":           o.StrokeColor,
				"stroke-opacity":   o.StrokeOpacity,
				"stroke-width":     o.StrokeWeight,
				"suppress_markers": o.SuppressMarkers,
			},
		})
	}

	b, err := json.Marshal(fc)
	if err != nil {
		return nil, fmt.Errorf("canvas: encode geojson: %w", err)
	}
	return b, nil
}
