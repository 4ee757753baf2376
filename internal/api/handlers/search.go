package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"carrier-search-portal/internal/api/dto"
	"carrier-search-portal/internal/domain"
	"carrier-search-portal/internal/platform/logger"
	"carrier-search-portal/internal/platform/metrics"

	"github.com/go-playground/validator/v10"
)

// CarrierFinder resolves carriers for a free-form city pair.
type CarrierFinder interface {
	Find(ctx context.Context, from, to string) ([]domain.Carrier, bool, error)
}

type SearchHandler struct {
	Catalog  CarrierFinder
	validate *validator.Validate
}

func NewSearchHandler(catalog CarrierFinder) *SearchHandler {
	return &SearchHandler{Catalog: catalog, validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Search returns the carriers operating from from_city to to_city.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req dto.SearchRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		fields := []string{}
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields = append(fields, jsonField(fe.Field()))
			}
		}
		WriteJSON(w, r, http.StatusBadRequest, dto.ErrorResponse{Error: "from_city and to_city are required", Fields: fields})
		return
	}

	l := logger.Ctx(r.Context())
	carriers, matched, err := h.Catalog.Find(r.Context(), *req.FromCity, *req.ToCity)
	if err != nil {
		l.Error().Err(err).Msg("carrier lookup failed")
		WriteError(w, r, http.StatusInternalServerError, "failed to look up carriers")
		return
	}
	metrics.RecordAPISearch(matched)

	l.Info().
		Str("from_city", *req.FromCity).
		Str("to_city", *req.ToCity).
		Bool("route_match", matched).
		Int("carriers", len(carriers)).
		Msg("carrier search")

	WriteJSON(w, r, http.StatusOK, dto.ToCarrierResponses(carriers))
}

func jsonField(goField string) string {
	switch goField {
	case "FromCity":
		return "from_city"
	case "ToCity":
		return "to_city"
	default:
		return strings.ToLower(goField)
	}
}
