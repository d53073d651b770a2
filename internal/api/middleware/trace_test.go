package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedscribe/feedscribe/internal/api/shared"
)

func TestTraceMiddleware(t *testing.T) {
	t.Parallel()

	var traceID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := TraceMiddleware(next)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/feeds", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, traceID, shared.TraceIDLength*2)

	// A second request gets a fresh ID.
	first := traceID
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/feeds", nil))
	assert.NotEqual(t, first, traceID)
}
