// Package health provides a lightweight HTTP server for health checks and run monitoring.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/stakebot/internal/models"
)

// Pinger defines the interface for checking casino connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger.
type PingerFunc func(ctx context.Context) error

// Ping implements Pinger.
func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// Stopper ends the run before its next bet on operator request.
type Stopper interface {
	RequestStop(detail string) bool
	IsTripped() bool
}

// StopResponse represents the JSON response for the /stop endpoint.
type StopResponse struct {
	Status string `json:"status"`
}

// StatsProvider exposes the latest tick of the running loop.
type StatsProvider interface {
	Latest() (models.Tick, bool)
}

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp,omitempty"`
	Version   string `json:"version,omitempty"`
	Commit    string `json:"commit,omitempty"`
}

// ReadyResponse represents the JSON response for readiness check endpoints.
type ReadyResponse struct {
	Status   string            `json:"status"`
	Service  string            `json:"service"`
	Checks   map[string]string `json:"checks,omitempty"`
	Duration string            `json:"duration,omitempty"`
}

// StatsResponse represents the JSON response for the /stats endpoint.
type StatsResponse struct {
	Status string       `json:"status"`
	Tick   *models.Tick `json:"tick,omitempty"`
}

// Server is a lightweight HTTP server for health and monitoring endpoints.
type Server struct {
	serviceName string
	version     string
	commit      string
	port        string
	server      *http.Server
	logger      *logrus.Logger
	casino      Pinger
	stats       StatsProvider
	stopper     Stopper
	feed        *Feed
	metrics     http.Handler
	mu          sync.RWMutex
	ready       bool
}

// Config holds the configuration for the health server.
type Config struct {
	ServiceName string
	Version     string
	Commit      string
	Port        string
	Logger      *logrus.Logger
	Casino      Pinger
	Stats       StatsProvider
	Stopper     Stopper
	Feed        *Feed
	Metrics     http.Handler
}

// NewServer creates a new health check server.
func NewServer(cfg Config) *Server {
	port := cfg.Port
	if port == "" {
		port = os.Getenv("HEALTH_PORT")
	}
	if port == "" {
		port = "8080"
	}

	return &Server{
		serviceName: cfg.ServiceName,
		version:     cfg.Version,
		commit:      cfg.Commit,
		port:        port,
		logger:      cfg.Logger,
		casino:      cfg.Casino,
		stats:       cfg.Stats,
		stopper:     cfg.Stopper,
		feed:        cfg.Feed,
		metrics:     cfg.Metrics,
		ready:       false,
	}
}

// SetReady marks the server as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// IsReady returns whether the server is ready.
func (s *Server) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Handler returns the routes served by the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.HandleFunc("/live", s.handleLive)
	mux.HandleFunc("/stats", s.handleStats)
	if s.stopper != nil {
		mux.HandleFunc("/stop", s.handleStop)
	}
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}
	if s.feed != nil {
		mux.Handle("/ws", s.feed)
	}
	return mux
}

// Start starts the health check server in the background.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         ":" + s.port,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{
				"port":    s.port,
				"service": s.serviceName,
			}).Info("Monitor server starting")
		}

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.WithError(err).Error("Monitor server error")
			}
		}
	}()

	// Wait for context cancellation
	go func() {
		<-ctx.Done()
		_ = s.Shutdown()
	}()

	return nil
}

// Shutdown gracefully shuts down the server and closes feed subscribers.
func (s *Server) Shutdown() error {
	if s.feed != nil {
		s.feed.Close()
	}
	if s.server == nil {
		return nil
	}

	if s.logger != nil {
		s.logger.Info("Monitor server shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// handleHealth handles the /health endpoint - basic liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   s.serviceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   s.version,
		Commit:    s.commit,
	})
}

// handleLive handles the /live endpoint - kubernetes liveness check.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Service: s.serviceName,
	})
}

// handleReady handles the /ready endpoint - checks casino connectivity.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	checks := make(map[string]string)
	allHealthy := true

	// Check if manually marked as not ready
	if !s.IsReady() {
		allHealthy = false
		checks["service"] = "not_ready"
	} else {
		checks["service"] = "ok"
	}

	if s.stopper != nil {
		if s.stopper.IsTripped() {
			allHealthy = false
			checks["guard"] = "tripped"
		} else {
			checks["guard"] = "armed"
		}
	}

	if s.casino != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := s.casino.Ping(ctx); err != nil {
			allHealthy = false
			checks["casino"] = fmt.Sprintf("error: %v", err)
		} else {
			checks["casino"] = "ok"
		}
	}

	response := ReadyResponse{
		Service:  s.serviceName,
		Checks:   checks,
		Duration: time.Since(start).String(),
	}

	if allHealthy {
		response.Status = "ok"
		writeJSON(w, http.StatusOK, response)
		return
	}
	response.Status = "not_ready"
	writeJSON(w, http.StatusServiceUnavailable, response)
}

// handleStats handles the /stats endpoint - latest run snapshot.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		writeJSON(w, http.StatusNotFound, StatsResponse{Status: "disabled"})
		return
	}

	tick, ok := s.stats.Latest()
	if !ok {
		writeJSON(w, http.StatusOK, StatsResponse{Status: "waiting"})
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse{Status: "ok", Tick: &tick})
}

// handleStop handles the /stop endpoint - stops the run before its next bet.
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, StopResponse{Status: "method_not_allowed"})
		return
	}

	if !s.stopper.RequestStop("stop requested from " + r.RemoteAddr) {
		writeJSON(w, http.StatusConflict, StopResponse{Status: "already_stopping"})
		return
	}

	if s.logger != nil {
		s.logger.WithField("remote_addr", r.RemoteAddr).Warn("Stop requested over monitor server")
	}
	writeJSON(w, http.StatusAccepted, StopResponse{Status: "stopping"})
}
