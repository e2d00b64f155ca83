package server

import (
	"encoding/json"
	"net/http"

	"github.com/tjfontaine/interview-gateway/internal/domain"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteJSON writes v as the JSON response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError writes an {error, details} envelope.
func WriteError(w http.ResponseWriter, status int, message, details string) {
	WriteJSON(w, status, ErrorResponse{Error: message, Details: details})
}

// WriteAPIError writes err with the status derived from its type.
func WriteAPIError(w http.ResponseWriter, err *domain.APIError) {
	WriteError(w, err.HTTPStatusCode(), err.Message, err.Details)
}
