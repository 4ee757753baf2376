package ors

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"

	"carrier-search-portal/internal/domain"
	"carrier-search-portal/internal/platform/logger"
	"carrier-search-portal/internal/platform/obs"
	"carrier-search-portal/internal/ports"
)

const suggestionLimit = 5

// Places implements ports.PlacesService.
type Places struct {
	client *Client
}

func NewPlaces(c *Client) *Places { return &Places{client: c} }

func (p *Places) NewAutocomplete(input string, opts domain.AutocompleteOptions) (ports.Autocomplete, error) {
	if strings.TrimSpace(input) == "" {
		return nil, fmt.Errorf("autocomplete: input is required")
	}
	return &Autocomplete{
		client:    p.client,
		input:     input,
		opts:      opts,
		listeners: make(map[int]func(domain.Place)),
	}, nil
}

// Autocomplete suggests places for one input field and notifies listeners
// when a place is chosen.
type Autocomplete struct {
	client *Client
	input  string
	opts   domain.AutocompleteOptions

	mu        sync.Mutex
	nextID    int
	listeners map[int]func(domain.Place)
}

func (a *Autocomplete) Input() string { return a.input }

// Suggest queries /geocode/autocomplete. Suggestions with coordinates are
// written to the geocode cache under their label.
func (a *Autocomplete) Suggest(ctx context.Context, text string) (_ []domain.Place, err error) {
	defer obs.Time(ctx, "ors.Suggest")(&err)

	c := a.client
	text = c.normalize(text)
	if text == "" {
		return []domain.Place{}, nil
	}

	endpoint := c.baseURL + "/geocode/autocomplete"
	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", text)
		q.Set("size", strconv.Itoa(suggestionLimit))
		if layers := layersFor(a.opts.Types); layers != "" {
			q.Set("layers", layers)
		}
		if a.opts.Country != "" {
			q.Set("boundary.country", strings.ToUpper(a.opts.Country))
		}
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("autocomplete %q: %w", text, err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode autocomplete response: %w", err)
	}

	places := make([]domain.Place, 0, len(decoded.Features))
	located := make(map[string]domain.Coordinates)
	for _, f := range decoded.Features {
		p := domain.Place{Name: f.Properties.Name, FormattedAddress: f.Properties.Label}
		if coords, ok := domain.CoordsFromList(f.Geometry.Coordinates); ok {
			p.Location = &coords
			if key := c.normalize(p.FormattedAddress); key != "" {
				located[key] = coords
			}
		}
		places = append(places, p)
	}

	if c.geocodeCache != nil && len(located) > 0 {
		if err := c.geocodeCache.PutMany(ctx, located); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Msg("geocode cache write failed")
		}
	}

	return places, nil
}

// Choose fires every place listener with p.
func (a *Autocomplete) Choose(p domain.Place) {
	a.mu.Lock()
	ids := slices.Sorted(maps.Keys(a.listeners))
	fns := make([]func(domain.Place), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, a.listeners[id])
	}
	a.mu.Unlock()

	for _, fn := range fns {
		fn(p)
	}
}

func (a *Autocomplete) AddPlaceListener(fn func(domain.Place)) (remove func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.nextID
	a.nextID++
	a.listeners[id] = fn

	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.listeners, id)
	}
}

// layersFor maps autocomplete type filters onto Pelias layers.
func layersFor(types []string) string {
	layers := make([]string, 0, len(types))
	for _, t := range types {
		switch t {
		case "(cities)":
			layers = append(layers, "locality")
		case "(regions)":
			layers = append(layers, "region", "county")
		case "address":
			layers = append(layers, "address")
		}
	}
	return strings.Join(layers, ",")
}
