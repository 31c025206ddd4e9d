package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies client errors.
type ErrorKind string

const (
	// ErrorKindValidation covers malformed filters and out-of-range sizes;
	// these fail before any network call.
	ErrorKindValidation ErrorKind = "validation"

	// ErrorKindNoResults means the first search page returned zero records.
	ErrorKindNoResults ErrorKind = "no_results"

	// ErrorKindTransport covers network failures and non-2xx statuses.
	ErrorKindTransport ErrorKind = "transport"

	// ErrorKindAuth covers missing or rejected credentials.
	ErrorKindAuth ErrorKind = "auth"
)

// ErrNotFound is returned when a single-record lookup hits a 404.
var ErrNotFound = errors.New("record not found")

// APIError is an EPC API error with status and classification context.
type APIError struct {
	StatusCode int
	Kind       ErrorKind
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("EPC %s error (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("EPC %s error: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("EPC %s error: %s", e.Kind, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyStatus maps a non-2xx HTTP status to an error kind.
func classifyStatus(status int) ErrorKind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrorKindAuth
	default:
		return ErrorKindTransport
	}
}
