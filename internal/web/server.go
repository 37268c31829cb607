// Package web serves the operational HTTP surface: liveness, stored-state
// counters and Prometheus metrics.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mwantia/goshare/internal/service"
	"github.com/mwantia/goshare/pkg/db/store"
	"github.com/mwantia/goshare/pkg/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the health/metrics HTTP endpoint.
type Server struct {
	store store.Store
	stats *service.Stats
	log   log.LoggerService

	http *http.Server
}

func NewServer(listen string, s store.Store, stats *service.Stats, logger log.LoggerService) *Server {
	srv := &Server{
		store: s,
		stats: stats,
		log:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", srv.handleHealth)
	r.Get("/stats", srv.handleStats)
	r.Handle("/metrics", promhttp.Handler())

	srv.http = &http.Server{
		Addr:              listen,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv
}

// Start begins serving in the background until Shutdown.
func (s *Server) Start() {
	go func() {
		s.log.Info("Web server listening on '%s'", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("Web server failed: %v", err)
		}
	}()
}

// Shutdown drains in-flight requests within the context's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler exposes the router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	uptime := s.stats.Uptime().String()
	if err := s.store.Health(r.Context()); err != nil {
		s.log.Warn("Health check failed: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "unhealthy",
			"database": err.Error(),
			"uptime":   uptime,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"database": "ok",
		"uptime":   uptime,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.stats.Snapshot(r.Context())
	if err != nil {
		s.log.Warn("Stats snapshot failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users":           snapshot.Users,
		"files":           snapshot.Files,
		"batches":         snapshot.Batches,
		"pending_deletes": snapshot.PendingDeletes,
		"uptime":          snapshot.Uptime.String(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		fmt.Fprintf(w, `{"error":"encoding failed"}`)
	}
}
