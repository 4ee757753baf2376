package handlers

import (
	"net/http"

	"carrier-search-portal/internal/api/dto"
)

// Health provides a minimal liveness check endpoint.
func Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, r, http.StatusOK, dto.StatusResponse{Status: "ok"})
}

// Root reports that the API is up.
func Root(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, r, http.StatusOK, dto.StatusResponse{Status: "Carrier search API is running"})
}
