package services

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"time"

	"carrier-search-portal/internal/domain"
	"carrier-search-portal/internal/platform/logger"
	"carrier-search-portal/internal/platform/metrics"
	"carrier-search-portal/internal/ports"
)

// SearchState is what the portal renders: the carrier list, the loading flag,
// the last user-facing error and the route the list belongs to.
type SearchState struct {
	Carriers  []domain.Carrier  `json:"carriers"`
	IsLoading bool              `json:"is_loading"`
	Error     string            `json:"error"`
	ErrorKind string            `json:"error_kind"`
	Route     *domain.RoutePair `json:"route"`
}

// MarshalJSON writes an empty error and error kind as null.
func (s SearchState) MarshalJSON() ([]byte, error) {
	type state SearchState
	return json.Marshal(struct {
		state
		Error     *string `json:"error"`
		ErrorKind *string `json:"error_kind"`
	}{
		state:     state(s),
		Error:     nullable(s.Error),
		ErrorKind: nullable(s.ErrorKind),
	})
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s SearchState) clone() SearchState {
	out := s
	out.Carriers = slices.Clone(s.Carriers)
	if out.Carriers == nil {
		out.Carriers = []domain.Carrier{}
	}
	if s.Route != nil {
		r := *s.Route
		out.Route = &r
	}
	return out
}

// SearchOrchestrator drives one portal session: it calls the searcher, records
// successful searches and keeps the rendered state. Every submit takes a
// sequence token; completions older than the latest submit are dropped.
type SearchOrchestrator struct {
	searcher ports.CarrierSearcher
	history  ports.SearchRecorder

	mu    sync.Mutex
	seq   uint64
	state SearchState
}

func NewSearchOrchestrator(searcher ports.CarrierSearcher, history ports.SearchRecorder) *SearchOrchestrator {
	return &SearchOrchestrator{
		searcher: searcher,
		history:  history,
		state:    SearchState{Carriers: []domain.Carrier{}},
	}
}

// State returns a copy of the current state.
func (o *SearchOrchestrator) State() SearchState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.clone()
}

// Submit searches carriers for from -> to and returns the state once this
// request has settled (or been superseded).
func (o *SearchOrchestrator) Submit(ctx context.Context, from, to string) SearchState {
	l := logger.Ctx(ctx)

	o.mu.Lock()
	if from == "" || to == "" {
		o.state.Error = domain.MsgCityRequired
		o.state.ErrorKind = domain.KindValidation.String()
		st := o.state.clone()
		o.mu.Unlock()

		l.Warn().Str("from", from).Str("to", to).Msg("search rejected: missing city")
		return st
	}

	o.seq++
	token := o.seq
	o.state.IsLoading = true
	o.state.Error = ""
	o.state.ErrorKind = ""
	o.state.Carriers = []domain.Carrier{}
	o.mu.Unlock()

	start := time.Now()
	carriers, err := o.searcher.Search(ctx, from, to)
	dur := time.Since(start)

	o.mu.Lock()
	if token != o.seq {
		st := o.state.clone()
		o.mu.Unlock()

		metrics.RecordCarrierSearch("superseded", dur)
		l.Debug().Uint64("token", token).Msg("dropping superseded search result")
		return st
	}

	o.state.IsLoading = false
	if err != nil {
		o.state.Error = domain.UserMessage(err)
		o.state.ErrorKind = domain.KindOf(err).String()
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			o.state.ErrorKind = domain.KindNetwork.String()
			o.state.Error = domain.MsgNetworkError
		}
		st := o.state.clone()
		o.mu.Unlock()

		metrics.RecordCarrierSearch("error", dur)
		l.Error().Err(err).Str("from", from).Str("to", to).Msg("search failed")
		return st
	}

	if carriers == nil {
		carriers = []domain.Carrier{}
	}
	o.state.Carriers = carriers
	o.state.Route = &domain.RoutePair{From: from, To: to}
	st := o.state.clone()
	o.mu.Unlock()

	if o.history != nil {
		o.history.Record(ctx, from, to, len(carriers))
	}

	metrics.RecordCarrierSearch("success", dur)
	l.Info().
		Int("count", len(carriers)).
		Str("from", from).
		Str("to", to).
		Msgf("Found %d carriers for %s to %s", len(carriers), from, to)

	return st
}

// Clear drops the results, route and error. A search still in flight is
// superseded so its result will not reappear.
func (o *SearchOrchestrator) Clear() SearchState {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.seq++
	o.state = SearchState{Carriers: []domain.Carrier{}}
	return o.state.clone()
}

// Retry resubmits the last successful route; without one it is a no-op.
func (o *SearchOrchestrator) Retry(ctx context.Context) SearchState {
	o.mu.Lock()
	route := o.state.Route
	var last domain.RoutePair
	if route != nil {
		last = *route
	}
	o.mu.Unlock()

	if route == nil || !last.Complete() {
		return o.State()
	}
	return o.Submit(ctx, last.From, last.To)
}
