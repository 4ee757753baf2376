package ors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"

	"carrier-search-portal/internal/domain"
	"carrier-search-portal/internal/platform/logger"
	"carrier-search-portal/internal/platform/obs"
)

// Provider status strings reported in DirectionsResult.Status.
const (
	StatusZeroResults     = "ZERO_RESULTS"
	StatusOverQueryLimit  = "OVER_QUERY_LIMIT"
	StatusRequestDenied   = "REQUEST_DENIED"
	StatusInvalidRequest  = "INVALID_REQUEST"
	StatusUnknownError    = "UNKNOWN_ERROR"
	maxAlternativeRoutes  = 3
	alternativeWeightCap  = 1.4
	alternativeShareLimit = 0.6
)

type alternativeRoutes struct {
	TargetCount  int     `json:"target_count"`
	WeightFactor float64 `json:"weight_factor"`
	ShareFactor  float64 `json:"share_factor"`
}

type directionsRequest struct {
	Coordinates       [][]float64        `json:"coordinates"`
	AlternativeRoutes *alternativeRoutes `json:"alternative_routes,omitempty"`
	Instructions      bool               `json:"instructions"`
}

type directionsResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Summary struct {
				Distance float64 `json:"distance"`
				Duration float64 `json:"duration"`
			} `json:"summary"`
		} `json:"properties"`
	} `json:"features"`
}

// Directions implements ports.DirectionsService.
type Directions struct {
	client *Client
}

func NewDirections(c *Client) *Directions { return &Directions{client: c} }

// Route requests driving directions. Provider failures are reported through
// the result status; err is only returned when ctx ends.
func (d *Directions) Route(ctx context.Context, req domain.DirectionsRequest) (_ domain.DirectionsResult, err error) {
	defer obs.Time(ctx, "ors.Route")(&err)

	res, err := d.route(ctx, req)
	if err == nil {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return domain.DirectionsResult{}, ctxErr
	}

	status := statusFor(err)
	logger.Ctx(ctx).Warn().Err(err).Str("status", status).Msg("ors directions failed")
	return domain.DirectionsResult{Status: status}, nil
}

func (d *Directions) route(ctx context.Context, req domain.DirectionsRequest) (domain.DirectionsResult, error) {
	c := d.client
	origin := c.normalize(req.Origin)
	destination := c.normalize(req.Destination)
	if origin == "" || destination == "" {
		return domain.DirectionsResult{}, &httpStatusError{Code: http.StatusBadRequest, Body: "origin and destination are required"}
	}
	if req.TravelMode != "" && req.TravelMode != domain.TravelModeDriving {
		return domain.DirectionsResult{}, &httpStatusError{Code: http.StatusBadRequest, Body: "unsupported travel mode " + req.TravelMode}
	}

	coords, err := c.resolve(ctx, []string{origin, destination})
	if err != nil {
		return domain.DirectionsResult{}, err
	}

	body := directionsRequest{
		Coordinates: [][]float64{coords[origin].CoordsToList(), coords[destination].CoordsToList()},
	}
	if req.ProvideRouteAlternatives {
		body.AlternativeRoutes = &alternativeRoutes{
			TargetCount:  maxAlternativeRoutes,
			WeightFactor: alternativeWeightCap,
			ShareFactor:  alternativeShareLimit,
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return domain.DirectionsResult{}, fmt.Errorf("encode directions request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/directions/%s/geojson", c.baseURL, c.profile)
	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return domain.DirectionsResult{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.DirectionsResult{}, fmt.Errorf("decode directions response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.DirectionsResult{Status: StatusZeroResults}, nil
	}

	routes := make([]domain.DirectionsRoute, 0, len(decoded.Features))
	for _, f := range decoded.Features {
		path := make([]domain.Coordinates, 0, len(f.Geometry.Coordinates))
		for _, p := range f.Geometry.Coordinates {
			if pt, ok := domain.CoordsFromList(p); ok {
				path = append(path, pt)
			}
		}

		distance := int(math.Round(f.Properties.Summary.Distance))
		duration := int(math.Round(f.Properties.Summary.Duration))
		routes = append(routes, domain.DirectionsRoute{
			Summary:         fmt.Sprintf("%.1f km, %d min", float64(distance)/1000, duration/60),
			DistanceMeters:  distance,
			DurationSeconds: duration,
			Path:            path,
		})
	}

	return domain.DirectionsResult{Status: domain.DirectionsStatusOK, Routes: routes}, nil
}

func statusFor(err error) string {
	if errors.Is(err, errNoGeocodeResult) {
		return StatusZeroResults
	}

	var he *httpStatusError
	if errors.As(err, &he) {
		switch {
		case he.Code == http.StatusTooManyRequests:
			return StatusOverQueryLimit
		case he.Code == http.StatusUnauthorized || he.Code == http.StatusForbidden:
			return StatusRequestDenied
		case he.Code == http.StatusNotFound:
			return StatusZeroResults
		case he.Code == http.StatusBadRequest:
			return StatusInvalidRequest
		}
	}
	return StatusUnknownError
}
