package services

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when required form fields are blank
	ErrValidation = errors.New("validation failed")
	// ErrIncompleteCEP is returned when a postal code does not have 8 digits
	ErrIncompleteCEP = errors.New("incomplete cep")
	// ErrInvalidPayload is returned when the backend answers with an unexpected body
	ErrInvalidPayload = errors.New("invalid backend payload")
	// ErrSessionClosed is returned when a result arrives for a closed page session
	ErrSessionClosed = errors.New("page session closed")
	// ErrNoPendingDelete is returned by ConfirmDelete without a prior RequestDelete
	ErrNoPendingDelete = errors.New("no delete pending confirmation")
	// ErrCooldown is returned when report generation is requested during the cooldown
	ErrCooldown = errors.New("report generation cooling down")
	// ErrUnknownField is returned when a form field name is not recognised
	ErrUnknownField = errors.New("unknown form field")
)

// APIError is a non-2xx answer from the backend API
type APIError struct {
	StatusCode int
	Message    string
	// Err is the domain sentinel for the status, e.g. models.ErrPersonNotFound
	Err error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// StatusCode extracts the backend status from err, or 0 when err is not an APIError
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// userMessage returns the backend-provided message when there is one, else fallback
func userMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
