package ors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"carrier-search-portal/internal/domain"
	"carrier-search-portal/internal/platform/logger"
	"carrier-search-portal/internal/platform/obs"
)

// errNoGeocodeResult marks an address the geocoder could not place.
var errNoGeocodeResult = errors.New("no geocode result")

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Name  string `json:"name"`
			Label string `json:"label"`
		} `json:"properties"`
	} `json:"features"`
}

// resolve returns coordinates for every address, keyed by normalized address.
// Cache hits skip the network; fresh results are written back to the cache.
func (c *Client) resolve(ctx context.Context, addresses []string) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.resolve")(&err)

	needed := make([]string, 0, len(addresses))
	for _, a := range addresses {
		if n := c.normalize(a); n != "" {
			needed = append(needed, n)
		}
	}

	hits := make(map[string]domain.Coordinates)
	// Resolve coordinates via cache before calling ORS geocoding.
	if c.geocodeCache != nil {
		cached, err := c.geocodeCache.GetMany(ctx, needed)
		if err != nil {
			logger.Ctx(ctx).Warn().Err(err).Msg("geocode cache read failed")
		} else {
			hits = cached
		}
	}

	misses := make([]string, 0, len(needed))
	for _, a := range needed {
		if _, ok := hits[a]; !ok {
			misses = append(misses, a)
		}
	}

	fresh := make(map[string]domain.Coordinates)
	if len(misses) > 0 {
		fresh, err = c.geocodeMany(ctx, misses)
		if err != nil {
			return nil, fmt.Errorf("retrieving coordinates: %w", err)
		}
	}

	if c.geocodeCache != nil && len(fresh) > 0 {
		if err := c.geocodeCache.PutMany(ctx, fresh); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Msg("geocode cache write failed")
		}
	}

	out := make(map[string]domain.Coordinates, len(hits)+len(fresh))
	for k, v := range hits {
		out[k] = v
	}
	for k, v := range fresh {
		out[k] = v
	}
	return out, nil
}

// geocodeMany resolves addresses individually using OpenRouteService (/geocode/search).
// Calls are deduplicated and may be retried via doWithRetry.
func (c *Client) geocodeMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.geocodeMany")(&err)

	endpoint := c.baseURL + "/geocode/search"

	seen := make(map[string]struct{}, len(addresses))
	out := make(map[string]domain.Coordinates)
	for _, a := range addresses {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}

		coords, err := c.geocodeOne(ctx, endpoint, a)
		if err != nil {
			return nil, err
		}
		out[a] = coords
	}

	return out, nil
}

func (c *Client) geocodeOne(ctx context.Context, endpoint, address string) (domain.Coordinates, error) {
	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", address)
		q.Set("boundary.country", "US")
		q.Set("size", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, fmt.Errorf("%w for %q", errNoGeocodeResult, address)
	}

	coords, ok := domain.CoordsFromList(decoded.Features[0].Geometry.Coordinates)
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("invalid coordinate format for %q", address)
	}
	return coords, nil
}
