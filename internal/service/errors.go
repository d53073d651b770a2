package service

import (
	"errors"
	"fmt"

	"github.com/feedscribe/feedscribe/internal/store"
)

// Common sentinel errors for the service layer
var (
	// ErrFeedNotFound indicates that the feed does not exist
	ErrFeedNotFound = errors.New("feed not found")

	// ErrFeedURLExists indicates a feed with the same URL is already registered
	ErrFeedURLExists = errors.New("a feed with this URL already exists")

	// ErrNoEntriesForDay indicates no translated entries exist for the
	// requested digest day
	ErrNoEntriesForDay = errors.New("no entries available for the requested day")
)

// ServiceError wraps errors from the service layer with operation context.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "refresh_feed", "create_feed")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError. Known store-level sentinel
// errors are mapped to their service-level equivalents and returned directly.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrFeedNotFound) || errors.Is(err, store.ErrFeedNotFound) {
		return ErrFeedNotFound
	}
	if errors.Is(err, ErrFeedURLExists) || errors.Is(err, store.ErrFeedURLExists) {
		return ErrFeedURLExists
	}

	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
