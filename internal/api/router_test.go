package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"carrier-search-portal/internal/adapters/repositories"
	"carrier-search-portal/internal/api/dto"
	"carrier-search-portal/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

var (
	nycToDC = []dto.CarrierResponse{
		{Name: "Knight-Swift Transport Services", TrucksPerDay: 10},
		{Name: "J.B. Hunt Transport Services Inc", TrucksPerDay: 7},
		{Name: "YRC Worldwide", TrucksPerDay: 5},
	}
	sfToLA = []dto.CarrierResponse{
		{Name: "XPO Logistics", TrucksPerDay: 9},
		{Name: "Schneider", TrucksPerDay: 6},
		{Name: "Landstar Systems", TrucksPerDay: 2},
	}
	defaults = []dto.CarrierResponse{
		{Name: "UPS Inc.", TrucksPerDay: 11},
		{Name: "FedEx Corp", TrucksPerDay: 9},
	}
)

func newTestRouter(t *testing.T, cfg RouterConfig) http.Handler {
	t.Helper()
	repo, err := repositories.NewMemoryCarrierRepository(repositories.BuiltinCatalog())
	require.NoError(t, err)
	if cfg.CORSOrigins == nil {
		cfg.CORSOrigins = []string{"*"}
	}
	return NewRouter(services.NewCarrierCatalog(repo), cfg)
}

func postSearch(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func searchBody(from, to string) string {
	b, _ := json.Marshal(map[string]string{"from_city": from, "to_city": to})
	return string(b)
}

func TestSearch_Routes(t *testing.T) {
	h := newTestRouter(t, RouterConfig{})

	cases := []struct {
		from, to string
		want     []dto.CarrierResponse
	}{
		{"New York", "Washington DC", nycToDC},
		{"nueva york", "washington dc", nycToDC},
		{"ny", "washington dc", nycToDC},
		{"   NY   ", "Washington DC", nycToDC},
		{"NEW YORK", "WASHINGTON dc", nycToDC},
		{"   nEw   YoRk ", "  WASHINGTON dc   ", nycToDC},
		{"San Francisco", "Los Angeles", sfToLA},
		{"san francisco", "la", sfToLA},
		{"SF", "Los Angeles", sfToLA},
		{"sf", "LA", sfToLA},
		{"  SF  ", " los angeles ", sfToLA},
		{"Chicago", "Miami", defaults},
		{"Bogotá", "Medellín", defaults},
		{"Paris", "London", defaults},
		{"Washington DC", "New York", defaults},
		{"", "", defaults},
	}

	for _, tc := range cases {
		t.Run(tc.from+"->"+tc.to, func(t *testing.T) {
			rec := postSearch(t, h, searchBody(tc.from, tc.to))
			require.Equal(t, http.StatusOK, rec.Code)

			var got []dto.CarrierResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSearch_BadRequests(t *testing.T) {
	h := newTestRouter(t, RouterConfig{})

	rec := postSearch(t, h, `{"from_city":"New York"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	assert.Equal(t, []string{"to_city"}, e.Fields)

	rec = postSearch(t, h, `{"from_city":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postSearch(t, h, `{"from_city":1,"to_city":"la"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postSearch(t, h, `{"from_city":"a","to_city":"b"}{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearch_MethodNotAllowed(t *testing.T) {
	h := newTestRouter(t, RouterConfig{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRootAndHealth(t *testing.T) {
	h := newTestRouter(t, RouterConfig{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"Carrier search API is running"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCORS(t *testing.T) {
	h := newTestRouter(t, RouterConfig{CORSOrigins: []string{"http://localhost:5173", "*.genlogs.io"}})

	req := httptest.NewRequest(http.MethodOptions, "/search", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")

	req = httptest.NewRequest(http.MethodPost, "/search", bytes.NewBufferString(searchBody("sf", "la")))
	req.Header.Set("Origin", "https://app.genlogs.io")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://app.genlogs.io", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodPost, "/search", bytes.NewBufferString(searchBody("sf", "la")))
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestIsOriginAllowed(t *testing.T) {
	assert.True(t, isOriginAllowed("https://a.example.com", []string{"*.example.com"}))
	assert.False(t, isOriginAllowed("https://example.com", []string{"*.example.com"}))
	assert.False(t, isOriginAllowed("", []string{"*"}))
	assert.True(t, isOriginAllowed("http://x", []string{"*"}))
}

func TestSearch_RateLimited(t *testing.T) {
	h := newTestRouter(t, RouterConfig{SearchRate: rate.Every(time.Hour), SearchBurst: 1})

	assert.Equal(t, http.StatusOK, postSearch(t, h, searchBody("sf", "la")).Code)

	rec := postSearch(t, h, searchBody("sf", "la"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}
