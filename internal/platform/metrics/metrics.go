package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	carrierSearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_carrier_searches_total",
			Help: "Carrier searches submitted from the portal, by outcome",
		},
		[]string{"outcome"},
	)

	carrierSearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "portal_carrier_search_duration_seconds",
			Help:    "Round trip of a portal carrier search",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
	)

	apiSearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carrier_api_search_requests_total",
			Help: "Search requests served by the carrier API, by route match",
		},
		[]string{"match"},
	)

	sdkWaitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_map_sdk_waits_total",
			Help: "Map SDK readiness waits, by outcome",
		},
		[]string{"outcome"},
	)

	sdkPollLoopsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "portal_map_sdk_poll_loops_total",
			Help: "Polling loops started while waiting for the map SDK",
		},
	)

	storageFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_storage_failures_total",
			Help: "Swallowed persistent storage failures, by operation",
		},
		[]string{"op"},
	)

	directionsRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_directions_requests_total",
			Help: "Directions requests issued to the map provider, by status",
		},
		[]string{"status"},
	)
)

func RecordCarrierSearch(outcome string, d time.Duration) {
	carrierSearchesTotal.WithLabelValues(outcome).Inc()
	carrierSearchDuration.Observe(d.Seconds())
}

func RecordAPISearch(matched bool) {
	match := "default"
	if matched {
		match = "route"
	}
	apiSearchRequestsTotal.WithLabelValues(match).Inc()
}

func RecordSDKWait(outcome string) {
	sdkWaitsTotal.WithLabelValues(outcome).Inc()
}

func RecordSDKPollLoop() {
	sdkPollLoopsTotal.Inc()
}

func RecordStorageFailure(op string) {
	storageFailuresTotal.WithLabelValues(op).Inc()
}

func RecordDirections(status string) {
	directionsRequestsTotal.WithLabelValues(status).Inc()
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
