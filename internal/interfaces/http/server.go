// Package http serves the operational endpoints: liveness and Prometheus
// metrics. The scan pipeline itself is driven by the CLI, not HTTP.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/supplyradar/supplyradar/internal/metrics"
)

// Server exposes /health and /metrics while the monitor loop runs.
type Server struct {
	srv     *http.Server
	started time.Time
	version string
}

func NewServer(addr string, m *metrics.Metrics, version string) *Server {
	s := &Server{started: time.Now(), version: version}

	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)

	s.srv = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":         "ok",
		"version":        s.version,
		"uptime_seconds": int(time.Since(s.started).Seconds()),
	})
}

// Start serves until the listener fails. Run it in a goroutine.
func (s *Server) Start() error {
	log.Info().Str("addr", s.srv.Addr).Msg("monitor endpoints listening")
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }
