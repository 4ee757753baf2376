package ors

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"carrier-search-portal/internal/adapters/canvas"
	"carrier-search-portal/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type memoryGeocodeCache struct {
	mu sync.Mutex
	m  map[string]domain.Coordinates
}

func newMemoryGeocodeCache() *memoryGeocodeCache {
	return &memoryGeocodeCache{m: map[string]domain.Coordinates{}}
}

func (c *memoryGeocodeCache) GetMany(_ context.Context, addresses []string) (map[string]domain.Coordinates, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := map[string]domain.Coordinates{}
	for _, a := range addresses {
		if v, ok := c.m[a]; ok {
			out[a] = v
		}
	}
	return out, nil
}

func (c *memoryGeocodeCache) PutMany(_ context.Context, results map[string]domain.Coordinates) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range results {
		c.m[k] = v
	}
	return nil
}

var cityCoords = map[string][]float64{
	"New York, NY, USA":   {-74.0060, 40.7128},
	"Washington, DC, USA": {-77.0369, 38.9072},
}

type fakeORS struct {
	geocodes    atomic.Int32
	directions  atomic.Int32
	dirStatus   int
	lastDirBody directionsRequest
	mu          sync.Mutex
}

func (f *fakeORS) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /geocode/search", func(w http.ResponseWriter, r *http.Request) {
		f.geocodes.Add(1)
		assert.Equal(t, "US", r.URL.Query().Get("boundary.country"))
		coords, ok := cityCoords[r.URL.Query().Get("text")]
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			_, _ = w.Write([]byte(`{"features":[]}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"features": []any{map[string]any{"geometry": map[string]any{"coordinates": coords}}},
		})
	})

	mux.HandleFunc("GET /geocode/autocomplete", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "test-key" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"features":[
			{"geometry":{"coordinates":[-74.006,40.7128]},"properties":{"name":"New York","label":"New York, NY, USA"}},
			{"geometry":{"coordinates":[-73.9442,40.6782]},"properties":{"name":"Brooklyn","label":"Brooklyn, NY, USA"}}
		]}`))
	})

	mux.HandleFunc("POST /v2/directions/driving-car/geojson", func(w http.ResponseWriter, r *http.Request) {
		f.directions.Add(1)
		if f.dirStatus != 0 {
			w.WriteHeader(f.dirStatus)
			return
		}

		var body directionsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.mu.Lock()
		f.lastDirBody = body
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write([]byte(`{"type":"FeatureCollection","features":[
			{"geometry":{"type":"LineString","coordinates":[[-74.006,40.7128],[-75.1652,39.9526],[-77.0369,38.9072]]},
			 "properties":{"summary":{"distance":364512.3,"duration":14820.6}}},
			{"geometry":{"type":"LineString","coordinates":[[-74.006,40.7128],[-77.0369,38.9072]]},
			 "properties":{"summary":{"distance":380100,"duration":15600}}}
		]}`))
	})

	return mux
}

func newTestSDK(t *testing.T, f *fakeORS) (*SDK, *memoryGeocodeCache) {
	t.Helper()

	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)

	gc := newMemoryGeocodeCache()
	c, err := NewClient("test-key",
		WithBaseURL(srv.URL),
		WithHTTPClient(srv.Client()),
		WithRateLimit(rate.Inf, 1),
		WithRetry(2, time.Millisecond),
		WithGeocodeCache(gc),
	)
	require.NoError(t, err)
	return NewSDK(c, canvas.NewFactory()), gc
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient("  ")
	assert.Error(t, err)
}

func TestSDK_LoadGatesCapabilities(t *testing.T) {
	sdk, _ := newTestSDK(t, &fakeORS{})

	assert.Nil(t, sdk.Maps())
	assert.Nil(t, sdk.Places())
	assert.Nil(t, sdk.Directions())

	require.NoError(t, sdk.Load(context.Background()))
	assert.True(t, sdk.Loaded())
	assert.NotNil(t, sdk.Maps())
	assert.NotNil(t, sdk.Places())
	assert.NotNil(t, sdk.Directions())
}

func TestSDK_LoadRejectedKey(t *testing.T) {
	srv := httptest.NewServer((&fakeORS{}).handler(t))
	t.Cleanup(srv.Close)

	c, err := NewClient("wrong-key", WithBaseURL(srv.URL), WithRateLimit(rate.Inf, 1), WithRetry(1, time.Millisecond))
	require.NoError(t, err)
	sdk := NewSDK(c, canvas.NewFactory())

	assert.Error(t, sdk.Load(context.Background()))
	assert.Nil(t, sdk.Places())
}

func TestDirections_Route(t *testing.T) {
	f := &fakeORS{}
	sdk, gc := newTestSDK(t, f)
	ctx := context.Background()
	req := domain.DirectionsRequest{
		Origin:                   "New York, NY, USA",
		Destination:              "Washington,  DC, USA",
		TravelMode:               domain.TravelModeDriving,
		ProvideRouteAlternatives: true,
	}

	res, err := NewDirections(sdk.client).Route(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, domain.DirectionsStatusOK, res.Status)
	require.Len(t, res.Routes, 2)
	assert.Equal(t, 364512, res.Routes[0].DistanceMeters)
	assert.Equal(t, 14821, res.Routes[0].DurationSeconds)
	assert.Len(t, res.Routes[0].Path, 3)

	f.mu.Lock()
	body := f.lastDirBody
	f.mu.Unlock()
	require.NotNil(t, body.AlternativeRoutes)
	assert.Equal(t, 3, body.AlternativeRoutes.TargetCount)
	assert.Equal(t, []float64{-74.0060, 40.7128}, body.Coordinates[0])

	assert.EqualValues(t, 2, f.geocodes.Load())
	assert.Contains(t, gc.m, "Washington, DC, USA")

	_, err = NewDirections(sdk.client).Route(ctx, req)
	require.NoError(t, err)
	assert.EqualValues(t, 2, f.geocodes.Load(), "second route uses cached coordinates")
}

func TestDirections_StatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		httpStatus int
		origin     string
		want       string
	}{
		{"rate limited", http.StatusTooManyRequests, "New York, NY, USA", StatusOverQueryLimit},
		{"bad key", http.StatusForbidden, "New York, NY, USA", StatusRequestDenied},
		{"no route", http.StatusNotFound, "New York, NY, USA", StatusZeroResults},
		{"server error", http.StatusBadGateway, "New York, NY, USA", StatusUnknownError},
		{"unknown place", 0, "Atlantis", StatusZeroResults},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := &fakeORS{dirStatus: tc.httpStatus}
			sdk, _ := newTestSDK(t, f)

			res, err := NewDirections(sdk.client).Route(context.Background(), domain.DirectionsRequest{
				Origin:      tc.origin,
				Destination: "Washington, DC, USA",
				TravelMode:  domain.TravelModeDriving,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, res.Status)
			assert.Empty(t, res.Routes)
		})
	}
}

func TestDirections_RetriesTransientFailures(t *testing.T) {
	f := &fakeORS{dirStatus: http.StatusServiceUnavailable}
	sdk, _ := newTestSDK(t, f)

	_, err := NewDirections(sdk.client).Route(context.Background(), domain.DirectionsRequest{
		Origin:      "New York, NY, USA",
		Destination: "Washington, DC, USA",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, f.directions.Load())
}

func TestDirections_CancelledContext(t *testing.T) {
	sdk, _ := newTestSDK(t, &fakeORS{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDirections(sdk.client).Route(ctx, domain.DirectionsRequest{
		Origin:      "New York, NY, USA",
		Destination: "Washington, DC, USA",
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAutocomplete(t *testing.T) {
	sdk, gc := newTestSDK(t, &fakeORS{})
	require.NoError(t, sdk.Load(context.Background()))

	ac, err := sdk.Places().NewAutocomplete("from-city", domain.DefaultAutocompleteOptions())
	require.NoError(t, err)
	assert.Equal(t, "from-city", ac.Input())

	places, err := ac.Suggest(context.Background(), "new  york")
	require.NoError(t, err)
	require.Len(t, places, 2)
	assert.Equal(t, "New York, NY, USA", places[0].FormattedAddress)
	require.NotNil(t, places[0].Location)
	assert.Contains(t, gc.m, "Brooklyn, NY, USA")

	var got []string
	remove := ac.AddPlaceListener(func(p domain.Place) { got = append(got, p.FormattedAddress) })
	ac.Choose(places[0])
	remove()
	ac.Choose(places[1])
	assert.Equal(t, []string{"New York, NY, USA"}, got)

	empty, err := ac.Suggest(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestLayersFor(t *testing.T) {
	assert.Equal(t, "locality", layersFor([]string{"(cities)"}))
	assert.Equal(t, "", layersFor(nil))
}
