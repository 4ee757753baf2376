// Package ors implements the map SDK environment on top of OpenRouteService:
// place autocomplete, geocoding and driving directions with alternatives.
package ors

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"carrier-search-portal/internal/ports"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.openrouteservice.org"

	defaultProfile      = "driving-car"
	defaultRatePerSec   = 2
	defaultRateBurst    = 4
	defaultMaxAttempts  = 4
	defaultRetryBackoff = 200 * time.Millisecond
)

// Client talks to the OpenRouteService HTTP API.
//
// It coordinates:
//   - Address normalization
//   - Persistent geocode caching
//   - Client-side rate limiting
//   - External API calls with retry/backoff
//
// The client is safe for concurrent use.
type Client struct {
	session      *http.Client
	apiKey       string
	baseURL      string
	profile      string
	limiter      *rate.Limiter
	maxAttempts  int
	backoff      time.Duration
	geocodeCache ports.GeocodeCache
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.session = hc
		}
	}
}

func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		if u = strings.TrimRight(strings.TrimSpace(u), "/"); u != "" {
			c.baseURL = u
		}
	}
}

// WithRateLimit caps outgoing requests; rate.Inf disables the limiter.
func WithRateLimit(r rate.Limit, burst int) ClientOption {
	return func(c *Client) { c.limiter = rate.NewLimiter(r, burst) }
}

func WithRetry(maxAttempts int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		if maxAttempts > 0 {
			c.maxAttempts = maxAttempts
		}
		if backoff > 0 {
			c.backoff = backoff
		}
	}
}

// WithGeocodeCache stores resolved coordinates so repeated directions skip geocoding.
func WithGeocodeCache(gc ports.GeocodeCache) ClientOption {
	return func(c *Client) { c.geocodeCache = gc }
}

func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("ORS api key is empty")
	}

	c := &Client{
		session:     &http.Client{Timeout: 10 * time.Second},
		apiKey:      apiKey,
		baseURL:     DefaultBaseURL,
		profile:     defaultProfile,
		limiter:     rate.NewLimiter(defaultRatePerSec, defaultRateBurst),
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// normalize ensures consistent cache keys by collapsing whitespace.
func (c *Client) normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
