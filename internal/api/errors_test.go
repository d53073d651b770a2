package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/feedscribe/feedscribe/internal/domain"
	"github.com/feedscribe/feedscribe/internal/service"
	"github.com/feedscribe/feedscribe/internal/service/auth"
	"github.com/feedscribe/feedscribe/internal/store"
	"github.com/feedscribe/feedscribe/internal/taskmanager"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"invalid credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{"feed not found", service.ErrFeedNotFound, http.StatusNotFound},
		{"store feed not found", store.ErrFeedNotFound, http.StatusNotFound},
		{"entry not found", store.ErrEntryNotFound, http.StatusNotFound},
		{"digest not found", store.ErrDigestNotFound, http.StatusNotFound},
		{"feed url exists", service.ErrFeedURLExists, http.StatusConflict},
		{"duplicate", store.ErrDuplicate, http.StatusConflict},
		{"validation", domain.ErrValidation, http.StatusBadRequest},
		{"invalid id", domain.ErrInvalidID, http.StatusBadRequest},
		{"empty task name", taskmanager.ErrEmptyTaskName, http.StatusBadRequest},
		{"manager shutdown", taskmanager.ErrManagerShutdown, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestMapErrorToStatusCode_WrappedErrors(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("refreshing: %w", service.ErrFeedNotFound)
	assert.Equal(t, http.StatusNotFound, MapErrorToStatusCode(wrapped))

	serviceErr := service.NewServiceError("get_feed", "feed lookup failed", store.ErrFeedNotFound)
	assert.Equal(t, http.StatusNotFound, MapErrorToStatusCode(serviceErr))
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil error", nil, "An unexpected error occurred"},
		{"invalid token", auth.ErrInvalidToken, "Invalid token"},
		{"invalid credentials", auth.ErrInvalidCredentials, "Invalid credentials"},
		{"feed not found", service.ErrFeedNotFound, "Feed not found"},
		{"digest not found", store.ErrDigestNotFound, "Digest not found"},
		{"feed url exists", service.ErrFeedURLExists, "A feed with this URL already exists"},
		{"validation", domain.ErrValidation, "Invalid request data"},
		{"shutdown", taskmanager.ErrManagerShutdown, "Server is shutting down"},
		{
			"internal detail is not leaked",
			errors.New("pq: connection refused host=10.0.0.5"),
			"An unexpected error occurred",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, GetSafeErrorMessage(tc.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	t.Run("field and tag are extracted", func(t *testing.T) {
		t.Parallel()
		err := errors.New(
			"Key: 'CreateFeedRequest.FeedURL' Error:Field validation for 'FeedURL' failed on the 'url' tag",
		)
		assert.Equal(t, "Invalid FeedURL: invalid URL format", SanitizeValidationError(err))
	})

	t.Run("required tag", func(t *testing.T) {
		t.Parallel()
		err := errors.New(
			"Key: 'TokenRequest.Password' Error:Field validation for 'Password' failed on the 'required' tag",
		)
		assert.Equal(t, "Invalid Password: required field", SanitizeValidationError(err))
	})

	t.Run("unrecognized format", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("boom")))
	})
}
