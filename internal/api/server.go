// internal/api/server.go
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/SDRoan/Filebox-sub002/internal/config"
	"github.com/SDRoan/Filebox-sub002/internal/metrics"
	"github.com/SDRoan/Filebox-sub002/internal/organizer"
	"github.com/SDRoan/Filebox-sub002/internal/ratelimit"
)

// Server exposes the organization engine over HTTP. Authentication is
// the host platform's job; it forwards the already-authorized owner
// in the X-Owner-ID header.
type Server struct {
	config     *config.Config
	logger     *zap.Logger
	router     chi.Router
	httpServer *http.Server
	organizer  *organizer.Service
	limiter    *ratelimit.OwnerLimiter
	metrics    *metrics.Metrics
	startTime  time.Time
}

// NewServer wires the routes and the HTTP server.
func NewServer(cfg *config.Config, logger *zap.Logger, svc *organizer.Service) *Server {
	s := &Server{
		config:    cfg,
		logger:    logger,
		router:    chi.NewRouter(),
		organizer: svc,
		limiter:   ratelimit.NewOwnerLimiter(cfg.RateLimit),
		metrics:   metrics.Get(),
		startTime: time.Now(),
	}

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(s.loggingMiddleware)

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/ready", s.handleReady)
	s.router.Method("GET", "/metrics", s.metrics.Handler())

	s.router.Route("/api/organizer", func(r chi.Router) {
		r.Use(s.requireOwner)
		r.Get("/suggestions", s.handleGetSuggestions)
		r.Post("/events/move", s.handleMoveEvent)
		r.Get("/patterns", s.handleListPatterns)
		r.Get("/stats", s.handleGetStats)
		r.Post("/patterns/{patternID}/feedback", s.handleFeedback)
		r.Post("/patterns/{patternID}/dismiss", s.handleDismiss)
		r.Post("/folders/{folderID}/name", s.handleRenameFolder)
	})
}

// Start begins listening. Blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("starting organizer API",
		zap.Int("port", s.config.Server.Port))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	s.organizer.Close()
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"uptime": time.Since(s.startTime).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
