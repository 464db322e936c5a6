package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized matches any 401 APIError via errors.Is.
var ErrUnauthorized = errors.New("unauthorized")

// NetworkError means no response was received.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: no response: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError is a response with a non-2xx status.
type APIError struct {
	Status  int
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API returned status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("API returned status %d", e.Status)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// UserMessage turns an error from a blocking operation into the text shown
// next to the form.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status == http.StatusInternalServerError {
			return "Server error. Please try again later."
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fallback
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return "Network error. Please check your connection and try again."
	}
	return fallback
}
