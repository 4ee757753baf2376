package ors

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"

	"carrier-search-portal/internal/platform/logger"
	"carrier-search-portal/internal/ports"
)

// SDK is the OpenRouteService map environment. Its capabilities stay nil until
// Load has confirmed the API is reachable with the configured key.
type SDK struct {
	client     *Client
	maps       ports.MapFactory
	places     *Places
	directions *Directions
	loaded     atomic.Bool
}

func NewSDK(client *Client, maps ports.MapFactory) *SDK {
	return &SDK{
		client:     client,
		maps:       maps,
		places:     NewPlaces(client),
		directions: NewDirections(client),
	}
}

// Load probes the autocomplete endpoint once. On success every capability
// becomes available for the life of the SDK.
func (s *SDK) Load(ctx context.Context) error {
	if s.loaded.Load() {
		return nil
	}

	c := s.client
	endpoint := c.baseURL + "/geocode/autocomplete"
	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", "New York")
		q.Set("size", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return fmt.Errorf("load ors sdk: %w", err)
	}
	resp.Body.Close()

	s.loaded.Store(true)
	logger.Ctx(ctx).Info().Str("base_url", c.baseURL).Msg("map SDK loaded")
	return nil
}

func (s *SDK) Loaded() bool { return s.loaded.Load() }

func (s *SDK) Maps() ports.MapFactory {
	if !s.loaded.Load() || s.maps == nil {
		return nil
	}
	return s.maps
}

func (s *SDK) Places() ports.PlacesService {
	if !s.loaded.Load() {
		return nil
	}
	return s.places
}

func (s *SDK) Directions() ports.DirectionsService {
	if !s.loaded.Load() {
		return nil
	}
	return s.directions
}
