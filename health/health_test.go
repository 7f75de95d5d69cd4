package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticChecker struct {
	name   string
	status Status
}

func (s staticChecker) Name() string { return s.name }

func (s staticChecker) Check(context.Context) ComponentHealth {
	return ComponentHealth{Status: s.status}
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func newTestServer(checkers ...Checker) http.Handler {
	s := NewServer(0, slog.New(slog.NewTextHandler(io.Discard, nil)))
	for _, c := range checkers {
		s.RegisterChecker(c)
	}
	return s.Routes()
}

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHealth_Aggregation(t *testing.T) {
	tests := []struct {
		name     string
		checkers []Checker
		want     Status
		code     int
	}{
		{"no checkers", nil, StatusHealthy, http.StatusOK},
		{"degraded", []Checker{staticChecker{"a", StatusHealthy}, staticChecker{"b", StatusDegraded}}, StatusDegraded, http.StatusOK},
		{"unhealthy wins", []Checker{staticChecker{"a", StatusDegraded}, staticChecker{"b", StatusUnhealthy}}, StatusUnhealthy, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := get(t, newTestServer(tt.checkers...), "/health")

			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, string(tt.want), body["status"])
			assert.Equal(t, Version, body["version"])
			assert.Len(t, body["components"], len(tt.checkers))
		})
	}
}

func TestLivenessAndReadiness(t *testing.T) {
	h := newTestServer(staticChecker{"store", StatusUnhealthy})

	rec, body := get(t, h, "/health/live")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alive", body["status"])

	rec, body = get(t, h, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not_ready", body["status"])
}

func TestPingChecker(t *testing.T) {
	ok := NewPingChecker("sessions", pingFunc(func(context.Context) error { return nil }))
	down := NewPingChecker("sessions", pingFunc(func(context.Context) error { return errors.New("database is locked") }))

	assert.Equal(t, "sessions", ok.Name())
	assert.Equal(t, StatusHealthy, ok.Check(context.Background()).Status)

	result := down.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, result.Status)
	assert.Contains(t, result.Message, "database is locked")
}

func TestHTTPChecker(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	assert.Equal(t, StatusHealthy, NewHTTPChecker("dispatcher", upstream.URL).Check(context.Background()).Status)
	assert.Equal(t, StatusDegraded, NewHTTPChecker("dispatcher", upstream.URL+"/broken").Check(context.Background()).Status)
}
