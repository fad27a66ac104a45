package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/isdelr/tripscribe-be/internal/services"
	"github.com/rs/zerolog/log"
)

type errorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// writeError writes the uniform failure envelope.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: true, Message: message})
}

// statusFor maps a service-layer error onto the HTTP taxonomy.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrDuplicateEmail),
		errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrUnsupportedMedia),
		errors.Is(err, services.ErrReservedAsset):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// clientMessage returns the error text for taxonomy errors, which are safe
// to show, and the fallback for anything internal so storage detail never
// leaks to the client.
func clientMessage(err error, fallback string) string {
	if statusFor(err) != http.StatusInternalServerError {
		return err.Error()
	}
	return fallback
}
