// Package carrierapi is the HTTP client for the carrier search API.
package carrierapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"carrier-search-portal/internal/domain"
	"carrier-search-portal/internal/platform/logger"
	"carrier-search-portal/internal/platform/obs"
	"carrier-search-portal/internal/services"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type searchRequest struct {
	FromCity string `json:"from_city"`
	ToCity   string `json:"to_city"`
}

type HealthStatus struct {
	Status string `json:"status"`
}

// Client issues single-attempt calls to the search API. It enforces no timeout
// of its own; callers bound requests through their context.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// Search posts the normalized route to /search and returns the decoded carrier list.
// Inputs are expected to be non-empty; the client does not re-validate them.
func (c *Client) Search(ctx context.Context, from, to string) (_ []domain.Carrier, err error) {
	defer obs.Time(ctx, "carrierapi.Search")(&err)

	payload, err := json.Marshal(searchRequest{
		FromCity: services.NormalizeCity(from),
		ToCity:   services.NormalizeCity(to),
	})
	if err != nil {
		return nil, fmt.Errorf("carrier search: marshal request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/search", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var carriers []domain.Carrier
	if err := json.NewDecoder(resp.Body).Decode(&carriers); err != nil {
		return nil, &domain.Error{
			Kind:    domain.KindAPI,
			Message: "API error: invalid response body",
			Status:  strconv.Itoa(resp.StatusCode),
			Err:     err,
		}
	}
	if carriers == nil {
		carriers = []domain.Carrier{}
	}

	return carriers, nil
}

// Health calls GET /health; any non-2xx answer is a failure.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return HealthStatus{}, err
	}

	resp, err := c.do(req)
	if err != nil {
		return HealthStatus{}, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return HealthStatus{}, err
	}

	var status HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return HealthStatus{}, fmt.Errorf("health check: decode response: %w", err)
	}
	return status, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	reqID := middleware.GetReqID(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	req.Header.Set(middleware.RequestIDHeader, reqID)

	return req, nil
}

// do maps transport failures to NetworkError. A context ended by the caller is
// returned as-is so superseded requests are not reported to the user.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err == nil {
		return resp, nil
	}

	if ctxErr := req.Context().Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return nil, ctxErr
	}

	logger.Ctx(req.Context()).Error().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Err(err).
		Msg("carrier api request failed")

	return nil, domain.NewError(domain.KindNetwork, domain.MsgNetworkError, err)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	return &domain.Error{
		Kind:    domain.KindAPI,
		Message: fmt.Sprintf("API error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		Status:  strconv.Itoa(resp.StatusCode),
	}
}
