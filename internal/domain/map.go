package domain

// DefaultMapCenter is New York City.
var DefaultMapCenter = Coordinates{Lon: -74.0060, Lat: 40.7128}

// RouteColors is the stroke palette for the primary and alternative routes.
var RouteColors = []string{"#1976D2", "#388E3C", "#F57C00"}

const (
	MaxRenderedRoutes  = 3
	TravelModeDriving  = "DRIVING"
	DirectionsStatusOK = "OK"
)

type MapOptions struct {
	Zoom              int         `json:"zoom"`
	Center            Coordinates `json:"center"`
	MapTypeID         string      `json:"mapTypeId,omitempty"`
	MapTypeControl    bool        `json:"mapTypeControl"`
	StreetViewControl bool        `json:"streetViewControl"`
	FullscreenControl bool        `json:"fullscreenControl"`
}

func DefaultMapOptions() MapOptions {
	return MapOptions{
		Zoom:   7,
		Center: DefaultMapCenter,
	}
}

// MapOption overrides one field of the default MapOptions.
type MapOption func(*MapOptions)

func WithZoom(z int) MapOption             { return func(o *MapOptions) { o.Zoom = z } }
func WithCenter(c Coordinates) MapOption   { return func(o *MapOptions) { o.Center = c } }
func WithMapType(id string) MapOption      { return func(o *MapOptions) { o.MapTypeID = id } }
func WithMapTypeControl(on bool) MapOption { return func(o *MapOptions) { o.MapTypeControl = on } }
func WithStreetViewControl(on bool) MapOption {
	return func(o *MapOptions) { o.StreetViewControl = on }
}
func WithFullscreenControl(on bool) MapOption {
	return func(o *MapOptions) { o.FullscreenControl = on }
}

type AutocompleteOptions struct {
	Types   []string
	Country string
}

func DefaultAutocompleteOptions() AutocompleteOptions {
	return AutocompleteOptions{Types: []string{"(cities)"}, Country: "us"}
}

// A place picked from autocomplete. Placeholder selections have no FormattedAddress.
type Place struct {
	Name             string       `json:"name"`
	FormattedAddress string       `json:"formatted_address,omitempty"`
	Location         *Coordinates `json:"location,omitempty"`
}

type DirectionsRequest struct {
	Origin                   string
	Destination              string
	TravelMode               string
	ProvideRouteAlternatives bool
}

type DirectionsRoute struct {
	Summary         string        `json:"summary"`
	DistanceMeters  int           `json:"distance_meters"`
	DurationSeconds int           `json:"duration_seconds"`
	Path            []Coordinates `json:"path"`
}

type DirectionsResult struct {
	Status string
	Routes []DirectionsRoute
}

// RouteOverlay is one drawn route on a map surface.
type RouteOverlay struct {
	RouteIndex      int             `json:"route_index"`
	StrokeColor     string          `json:"stroke_color"`
	StrokeOpacity   float64         `json:"stroke_opacity"`
	StrokeWeight    int             `json:"stroke_weight"`
	SuppressMarkers bool            `json:"suppress_markers"`
	Route           DirectionsRoute `json:"route"`
}

// RouteColor returns the palette colour for index, clamped to the last entry.
func RouteColor(index int) string {
	if index < 0 {
		index = 0
	}
	if index >= len(RouteColors) {
		return RouteColors[len(RouteColors)-1]
	}
	return RouteColors[index]
}
