// Package httputil provides HTTP response helpers and middleware.
package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// errorResponse is the error envelope shared by all failure responses.
// Stack is only populated in development mode.
type errorResponse struct {
	Status  int    `json:"status"`
	Success bool   `json:"success"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
	Details any    `json:"details,omitempty"`
}

// JSON writes a JSON response.
func JSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// Text writes a plain text response.
func Text(w http.ResponseWriter, statusCode int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode)
	if _, err := w.Write([]byte(text)); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// Error writes a JSON failure envelope.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, errorResponse{Status: status, Message: message})
}

// ErrorWithStack writes a JSON failure envelope carrying the failure detail.
// Only call this in development mode; the detail must never reach production
// clients.
func ErrorWithStack(w http.ResponseWriter, status int, message, stack string) {
	JSON(w, status, errorResponse{Status: status, Message: message, Stack: stack})
}

// ValidationError writes a 400 response. If err is
// validator.ValidationErrors the response carries per-field details.
func ValidationError(w http.ResponseWriter, err error) {
	var details any
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fieldErrors := make([]map[string]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			fieldErrors = append(fieldErrors, map[string]string{
				"field":   e.Field(),
				"message": e.Tag(),
			})
		}
		details = fieldErrors
	} else {
		details = err.Error()
	}

	JSON(w, http.StatusBadRequest, errorResponse{
		Status:  http.StatusBadRequest,
		Message: "validation error",
		Details: details,
	})
}
