package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripboard/internal/middleware"
)

func serveLogged(t *testing.T, h http.HandlerFunc, path string) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req = req.WithContext(context.WithValue(req.Context(), chimiddleware.RequestIDKey, "test-req-id"))
	rec := httptest.NewRecorder()
	middleware.NewSlogLogger(logger)(h).ServeHTTP(rec, req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

// TestSlogLogger_logsRequestFields verifies that one JSON line carries the
// method, path, status, size, duration and request ID.
func TestSlogLogger_logsRequestFields(t *testing.T) {
	entry := serveLogged(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}, "/healthz")

	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/healthz", entry["path"])
	assert.EqualValues(t, http.StatusOK, entry["status"])
	assert.EqualValues(t, 2, entry["bytes"])
	assert.Equal(t, "test-req-id", entry["request_id"])
	assert.NotNil(t, entry["duration_ms"])
	assert.NotContains(t, entry, "trips_dropped")
}

func TestSlogLogger_recordsDroppedTrips(t *testing.T) {
	entry := serveLogged(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Trips-Dropped", "3")
		w.WriteHeader(http.StatusOK)
	}, "/trips/overview")

	assert.Equal(t, "3", entry["trips_dropped"])
}

func TestSlogLogger_serverErrorAtErrorLevel(t *testing.T) {
	entry := serveLogged(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, "/trips")

	assert.Equal(t, "ERROR", entry["level"])
	assert.EqualValues(t, http.StatusInternalServerError, entry["status"])
}

func TestSlogLogger_implicitOK(t *testing.T) {
	entry := serveLogged(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{}"))
	}, "/trips")

	assert.EqualValues(t, http.StatusOK, entry["status"])
}
