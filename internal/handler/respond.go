// Package handler provides HTTP handlers for the Lancaster Identity API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prn-tf/lancaster-identity/internal/domain"
	"github.com/prn-tf/lancaster-identity/internal/service"
)

// messageResponse is the envelope for simple confirmation and error messages.
type messageResponse struct {
	Message string `json:"message"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeMessage writes a simple {"message": ...} response.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

// writeServiceError maps service and domain errors to HTTP responses.
func writeServiceError(w http.ResponseWriter, err error) {
	if ve, ok := service.IsValidationError(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, ve)
		return
	}
	if ce, ok := service.IsConflictError(err); ok {
		writeMessage(w, http.StatusConflict, ce.Error())
		return
	}

	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		writeMessage(w, http.StatusNotFound, "User not found")
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeMessage(w, http.StatusBadRequest, "Invalid Credentials")
	case errors.Is(err, domain.ErrSessionNotFound):
		writeMessage(w, http.StatusUnauthorized, "Authentication required")
	default:
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeJSON decodes a JSON request body.
func decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
