// Package health serves liveness, readiness and per-component health for the
// dispatcher service and the Temporal worker.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.temporal.io/sdk/client"
)

// Version is reported in the detailed health response
const Version = "1.0.0"

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

// ComponentHealth represents the health of a single component
type ComponentHealth struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// HealthResponse represents the overall health check response
type HealthResponse struct {
	Status     Status                     `json:"status"`
	Version    string                     `json:"version"`
	Timestamp  time.Time                  `json:"timestamp"`
	Components map[string]ComponentHealth `json:"components"`
}

// Checker interface for health checks
type Checker interface {
	Check(ctx context.Context) ComponentHealth
	Name() string
}

// Server manages health check endpoints
type Server struct {
	port     int
	logger   *slog.Logger
	checkers []Checker
	mu       sync.RWMutex
	server   *http.Server
}

// NewServer creates a health check server for port
func NewServer(port int, logger *slog.Logger) *Server {
	return &Server{
		port:     port,
		logger:   logger,
		checkers: make([]Checker, 0),
	}
}

// RegisterChecker adds a new health checker
func (s *Server) RegisterChecker(checker Checker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkers = append(s.checkers, checker)
}

// Register adds the health endpoints to an existing router
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.healthHandler)
	r.Get("/health/live", s.livenessHandler)
	r.Get("/health/ready", s.readinessHandler)
}

// Routes returns a router serving only the health endpoints
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return r
}

// Start serves Routes on the server's own port
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Health check server error", "error", err)
		}
	}()

	s.logger.Info("Health check server started", "port", s.port)
	return nil
}

// Shutdown gracefully shuts down the health check server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// healthHandler returns detailed health status
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	overallStatus, components := s.evaluate(ctx)

	response := HealthResponse{
		Status:     overallStatus,
		Version:    Version,
		Timestamp:  time.Now(),
		Components: components,
	}

	// Degraded still answers 200
	statusCode := http.StatusOK
	if overallStatus == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, statusCode, response)
}

// evaluate runs every checker; one unhealthy component makes the whole
// service unhealthy, a degraded one only degrades it
func (s *Server) evaluate(ctx context.Context) (Status, map[string]ComponentHealth) {
	s.mu.RLock()
	checkers := s.checkers
	s.mu.RUnlock()

	components := make(map[string]ComponentHealth, len(checkers))
	overallStatus := StatusHealthy
	for _, checker := range checkers {
		health := checker.Check(ctx)
		components[checker.Name()] = health

		if health.Status == StatusUnhealthy {
			overallStatus = StatusUnhealthy
		} else if health.Status == StatusDegraded && overallStatus == StatusHealthy {
			overallStatus = StatusDegraded
		}
	}
	return overallStatus, components
}

// livenessHandler returns basic liveness status (for Kubernetes)
func (s *Server) livenessHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// readinessHandler checks if the service is ready to handle requests
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	statusCode := http.StatusOK
	status := "ready"
	if overall, _ := s.evaluate(ctx); overall == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}
	writeJSON(w, statusCode, map[string]string{"status": status})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// TemporalChecker checks Temporal server connectivity
type TemporalChecker struct {
	client client.Client
}

// NewTemporalChecker creates a new Temporal health checker
func NewTemporalChecker(c client.Client) *TemporalChecker {
	return &TemporalChecker{client: c}
}

// Name returns the checker name
func (t *TemporalChecker) Name() string {
	return "temporal"
}

// Check performs the health check
func (t *TemporalChecker) Check(ctx context.Context) ComponentHealth {
	start := time.Now()

	// Try to check the system info
	_, err := t.client.CheckHealth(ctx, &client.CheckHealthRequest{})
	latency := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:  StatusUnhealthy,
			Message: fmt.Sprintf("Temporal connection failed: %v", err),
			Latency: latency.String(),
		}
	}

	return ComponentHealth{
		Status:  StatusHealthy,
		Message: "Connected to Temporal server",
		Latency: latency.String(),
	}
}

// HTTPChecker checks HTTP endpoint availability
type HTTPChecker struct {
	name   string
	url    string
	client *http.Client
}

// NewHTTPChecker creates a new HTTP health checker
func NewHTTPChecker(name, url string) *HTTPChecker {
	return &HTTPChecker{
		name: name,
		url:  url,
		client: &http.Client{
			Timeout: 3 * time.Second,
		},
	}
}

// Name returns the checker name
func (h *HTTPChecker) Name() string {
	return h.name
}

// Check performs the health check
func (h *HTTPChecker) Check(ctx context.Context) ComponentHealth {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return ComponentHealth{
			Status:  StatusUnhealthy,
			Message: fmt.Sprintf("Failed to create request: %v", err),
		}
	}

	resp, err := h.client.Do(req)
	latency := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:  StatusUnhealthy,
			Message: fmt.Sprintf("Request failed: %v", err),
			Latency: latency.String(),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return ComponentHealth{
			Status:  StatusHealthy,
			Message: fmt.Sprintf("HTTP %d", resp.StatusCode),
			Latency: latency.String(),
		}
	}

	return ComponentHealth{
		Status:  StatusDegraded,
		Message: fmt.Sprintf("HTTP %d", resp.StatusCode),
		Latency: latency.String(),
	}
}

// Pinger is anything that can verify its own connection
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingChecker reports a Pinger such as the session store
type PingChecker struct {
	name   string
	pinger Pinger
}

// NewPingChecker creates a checker named name
func NewPingChecker(name string, p Pinger) *PingChecker {
	return &PingChecker{name: name, pinger: p}
}

// Name returns the checker name
func (p *PingChecker) Name() string {
	return p.name
}

// Check pings once
func (p *PingChecker) Check(ctx context.Context) ComponentHealth {
	start := time.Now()
	err := p.pinger.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:  StatusUnhealthy,
			Message: fmt.Sprintf("Ping failed: %v", err),
			Latency: latency.String(),
		}
	}
	return ComponentHealth{
		Status:  StatusHealthy,
		Latency: latency.String(),
	}
}
