package dto

import "carrier-search-portal/internal/domain"

// SearchRequest is the body of POST /search. Both fields must be present;
// empty strings are accepted and fall back to the default carriers.
type SearchRequest struct {
	FromCity *string `json:"from_city" validate:"required"`
	ToCity   *string `json:"to_city" validate:"required"`
}

type CarrierResponse struct {
	Name         string `json:"name"`
	TrucksPerDay int    `json:"trucks_per_day"`
}

func ToCarrierResponses(cs []domain.Carrier) []CarrierResponse {
	out := make([]CarrierResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, CarrierResponse{Name: c.Name, TrucksPerDay: int(c.TrucksPerDay)})
	}
	return out
}

type StatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse carries a message and, for validation failures, the offending fields.
type ErrorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}
