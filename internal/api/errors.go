package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrServer       = errors.New("server error")
	ErrNetwork      = errors.New("network error")
	ErrTimeout      = errors.New("request timeout")
)

// Error is a failed API call. Status is zero when no response was received.
type Error struct {
	Status  int
	Message string
	Timeout bool
	err     error
}

func (e *Error) Error() string {
	switch {
	case e.Status == 0 && e.err != nil:
		return fmt.Sprintf("api: %s: %v", e.UserMessage(), e.err)
	case e.Message != "":
		return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
	default:
		return fmt.Sprintf("api: status %d", e.Status)
	}
}

func (e *Error) Unwrap() error { return e.err }

// Is matches the package sentinels by status class
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrServer:
		return e.Status >= http.StatusInternalServerError
	case ErrTimeout:
		return e.Timeout || e.Status == http.StatusRequestTimeout
	case ErrNetwork:
		return e.Status == 0 && !e.Timeout
	}
	return false
}

// ServerMessage is the message the server put in the envelope, if any
func (e *Error) ServerMessage() string { return e.Message }

// UserMessage is the text shown to the shopper
func (e *Error) UserMessage() string {
	switch {
	case e.Status == http.StatusUnauthorized:
		return "Session expired. Please login again."
	case e.Status == http.StatusForbidden:
		return "Access denied. You do not have permission to perform this action."
	case e.Status == http.StatusNotFound:
		return "Resource not found."
	case e.Status >= http.StatusInternalServerError:
		return "Internal server error. Please try again later."
	case e.Timeout || e.Status == http.StatusRequestTimeout:
		return "Request timeout. Please try again."
	case e.Status == 0:
		return "Network error. Please check your connection."
	case e.Message != "":
		return e.Message
	default:
		return "An unexpected error occurred"
	}
}

func (e *Error) retryable() bool {
	return e.Status == 0 || e.Status >= http.StatusInternalServerError || throttled(e.Status)
}

func throttled(status int) bool {
	return status == http.StatusRequestTimeout || status == http.StatusTooManyRequests
}
