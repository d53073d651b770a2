package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedscribe/feedscribe/internal/service/auth"
)

// fakeJWTService implements auth.JWTService with a canned validation result.
type fakeJWTService struct {
	claims      *auth.Claims
	validateErr error
}

func (f *fakeJWTService) GenerateToken(ctx context.Context) (string, error) {
	return "token", nil
}

func (f *fakeJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if f.validateErr != nil {
		return nil, f.validateErr
	}
	return f.claims, nil
}

func runAuthenticated(
	t *testing.T,
	jwtService auth.JWTService,
	authHeader string,
) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()

	var captured *http.Request
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		w.WriteHeader(http.StatusOK)
	})

	handler := NewAuthMiddleware(jwtService).Authenticate(next)

	req := httptest.NewRequest(http.MethodGet, "/feeds", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w, captured
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	t.Parallel()

	t.Run("valid token passes subject through", func(t *testing.T) {
		t.Parallel()

		svc := &fakeJWTService{claims: &auth.Claims{Subject: auth.AdminSubject}}
		w, captured := runAuthenticated(t, svc, "Bearer good-token")

		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, captured)

		subject, ok := GetSubject(captured)
		require.True(t, ok)
		assert.Equal(t, auth.AdminSubject, subject)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		t.Parallel()

		w, captured := runAuthenticated(t, &fakeJWTService{}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Nil(t, captured)
	})

	t.Run("malformed header is rejected", func(t *testing.T) {
		t.Parallel()

		w, _ := runAuthenticated(t, &fakeJWTService{}, "Basic dXNlcjpwYXNz")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()

		svc := &fakeJWTService{validateErr: auth.ErrExpiredToken}
		w, _ := runAuthenticated(t, svc, "Bearer stale-token")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Token expired")
	})

	t.Run("invalid token", func(t *testing.T) {
		t.Parallel()

		svc := &fakeJWTService{validateErr: auth.ErrInvalidToken}
		w, _ := runAuthenticated(t, svc, "Bearer bad-token")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid token")
	})

	t.Run("unexpected validation failure is an internal error", func(t *testing.T) {
		t.Parallel()

		svc := &fakeJWTService{validateErr: errors.New("key store unavailable")}
		w, _ := runAuthenticated(t, svc, "Bearer token")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "key store")
	})
}
