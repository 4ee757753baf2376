// Package portal serves the carrier search portal over HTTP: search state,
// history, preferences, route maps and place suggestions.
package portal

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"carrier-search-portal/internal/adapters/canvas"
	"carrier-search-portal/internal/api/handlers"
	"carrier-search-portal/internal/domain"
	"carrier-search-portal/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	Portal     *services.Portal
	CarrierAPI HealthCheck
	validate   *validator.Validate
}

func NewHandler(p *services.Portal, carrierAPI HealthCheck) *Handler {
	return &Handler{Portal: p, CarrierAPI: carrierAPI, validate: validator.New()}
}

type searchRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// preferencesRequest mirrors domain.PreferencesPatch with validation rules.
type preferencesRequest struct {
	Theme                 *string `json:"theme" validate:"omitempty,oneof=light dark"`
	MapType               *string `json:"mapType" validate:"omitempty,oneof=roadmap satellite hybrid terrain"`
	ShowAlternativeRoutes *bool   `json:"showAlternativeRoutes"`
}

type healthResponse struct {
	Status     string `json:"status"`
	CarrierAPI string `json:"carrier_api"`
	MapSDK     string `json:"map_sdk"`
	Storage    string `json:"storage"`
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := handlers.DecodeJSON(w, r, &req); err != nil {
		handlers.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	st := h.Portal.Search.Submit(r.Context(), req.From, req.To)
	status := http.StatusOK
	if st.ErrorKind == domain.KindValidation.String() {
		status = http.StatusUnprocessableEntity
	}
	handlers.WriteJSON(w, r, status, st)
}

func (h *Handler) Retry(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, r, http.StatusOK, h.Portal.Search.Retry(r.Context()))
}

func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, r, http.StatusOK, h.Portal.Search.Clear())
}

func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, r, http.StatusOK, h.Portal.Search.State())
}

func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, r, http.StatusOK, h.Portal.History.List(r.Context()))
}

func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if !h.Portal.History.Clear(r.Context()) {
		handlers.WriteError(w, r, http.StatusServiceUnavailable, "history storage unavailable")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SearchFromHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		handlers.WriteError(w, r, http.StatusBadRequest, "invalid history id")
		return
	}

	st, ok := h.Portal.SearchFromHistory(r.Context(), id)
	if !ok {
		handlers.WriteError(w, r, http.StatusNotFound, "history entry not found")
		return
	}
	handlers.WriteJSON(w, r, http.StatusOK, st)
}

func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, r, http.StatusOK, h.Portal.Preferences.Get(r.Context()))
}

func (h *Handler) PatchPreferences(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if err := handlers.DecodeJSON(w, r, &req); err != nil {
		handlers.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		handlers.WriteError(w, r, http.StatusBadRequest, "invalid preferences: "+err.Error())
		return
	}

	patch := domain.PreferencesPatch{MapType: req.MapType, ShowAlternativeRoutes: req.ShowAlternativeRoutes}
	if req.Theme != nil {
		t := domain.Theme(*req.Theme)
		patch.Theme = &t
	}

	handlers.WriteJSON(w, r, http.StatusOK, h.Portal.Preferences.Update(r.Context(), patch))
}

// Route renders the routes between from and to as GeoJSON.
func (h *Handler) Route(w http.ResponseWriter, r *http.Request) {
	from := strings.TrimSpace(r.URL.Query().Get("from"))
	to := strings.TrimSpace(r.URL.Query().Get("to"))
	if from == "" || to == "" {
		handlers.WriteError(w, r, http.StatusBadRequest, domain.MsgCityRequired)
		return
	}

	overlays, err := h.Portal.RouteMap(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	body, err := canvas.RenderGeoJSON(overlays)
	if err != nil {
		handlers.WriteError(w, r, http.StatusInternalServerError, domain.MsgRouteDisplay)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// Places returns autocomplete suggestions for q.
func (h *Handler) Places(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	field := r.URL.Query().Get("field")
	if field == "" {
		field = "from-city"
	}

	places, err := h.Portal.SuggestPlaces(r.Context(), field, q)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	handlers.WriteJSON(w, r, http.StatusOK, places)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	res := healthResponse{
		Status:     "ok",
		CarrierAPI: "ok",
		MapSDK:     h.Portal.Maps.State().String(),
		Storage:    "ok",
	}

	if h.CarrierAPI != nil {
		if err := h.CarrierAPI(r.Context()); err != nil {
			res.Status = "degraded"
			res.CarrierAPI = "unreachable"
		}
	}
	if !h.Portal.History.Available(r.Context()) {
		res.Status = "degraded"
		res.Storage = "unavailable"
	}

	handlers.WriteJSON(w, r, http.StatusOK, res)
}

func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		handlers.WriteError(w, r, http.StatusGatewayTimeout, domain.MsgNetworkError)
		return
	}

	status := http.StatusBadGateway
	switch domain.KindOf(err) {
	case domain.KindSDKLoad:
		status = http.StatusServiceUnavailable
	case domain.KindValidation:
		status = http.StatusBadRequest
	}
	handlers.WriteError(w, r, status, domain.UserMessage(err))
}
