package identity

import "net/http"

// Error is a typed failure carrying the HTTP status class the transport
// layer should map it to. The service raises *Error values only for
// expected domain failures; anything else that bubbles out of its
// dependencies is an infrastructure failure and stays unclassified.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// StatusCode returns the HTTP status class of the failure.
func (e *Error) StatusCode() int { return e.Status }

// Domain failures.
var (
	ErrEmailExists     = &Error{Status: http.StatusBadRequest, Message: "Email already registered"}
	ErrUserNotFound    = &Error{Status: http.StatusNotFound, Message: "user not found"}
	ErrInvalidPassword = &Error{Status: http.StatusBadRequest, Message: "password must be between 6 and 100 characters"}
)
