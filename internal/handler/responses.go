package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dumplingcollectibles/dumpling-price-automation/internal/domain"
)

// Standard response types for consistent API responses

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// DataResponse represents a response with data payload
type DataResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	buf := getBuffer()
	defer putBuffer(buf)

	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		// Headers already sent, nothing left to write
		slog.Error("Failed to encode JSON response", "error", err)
		return
	}

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write response buffer", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// User-facing messages for service errors
const (
	ErrMsgGenericServerError     = "Something went wrong"
	ErrMsgUnknownError           = "Unknown error"
	ErrMsgVariantNotFoundError   = "Variant not found"
	ErrMsgUserNotFoundError      = "User not found"
	ErrMsgOrderNotFoundError     = "Order not found"
	ErrMsgInsufficientStockError = "Not enough stock on hand"
	ErrMsgDuplicateOrderError    = "Order already processed"
	ErrMsgInvalidInputError      = "Invalid request. Please check your inputs."
	ErrMsgInvalidConditionError  = "Invalid card condition"
)

// mapServiceErrorToUserMessage maps domain errors to HTTP status codes and
// messages a caller can act on.
func mapServiceErrorToUserMessage(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, ErrMsgUnknownError
	}

	switch {
	case errors.Is(err, domain.ErrVariantNotFound):
		return http.StatusNotFound, ErrMsgVariantNotFoundError
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, ErrMsgUserNotFoundError
	case errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound, ErrMsgOrderNotFoundError
	case errors.Is(err, domain.ErrInsufficientInventory):
		return http.StatusConflict, ErrMsgInsufficientStockError
	case errors.Is(err, domain.ErrDuplicateOrder):
		return http.StatusConflict, ErrMsgDuplicateOrderError
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrMsgInvalidInputError
	case errors.Is(err, domain.ErrInvalidCondition):
		return http.StatusBadRequest, ErrMsgInvalidConditionError
	}

	return http.StatusInternalServerError, ErrMsgGenericServerError
}

// respondServiceError maps a service error and sends it
func respondServiceError(w http.ResponseWriter, err error) {
	status, message := mapServiceErrorToUserMessage(err)
	respondError(w, status, message)
}
