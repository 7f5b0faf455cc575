// Package server provides the HTTP server for the heroswap web UI.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ayusman/heroswap/internal/app"
	"github.com/ayusman/heroswap/internal/server/api"
	"github.com/ayusman/heroswap/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	App       *app.App
	Session   *app.Session // nil creates one
	Store     *store.Store
	Logger    *log.Logger
	FPS       int // stream rate cap; zero means 30
}

// Server represents the HTTP server for the heroswap application.
type Server struct {
	config Config
	router chi.Router
	hub    *FrameHub
	start  time.Time
	logger *log.Logger
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.Logger == nil {
		config.Logger = log.Default()
	}
	if config.Session == nil {
		config.Session = app.NewSession()
	}
	s := &Server{
		config: config,
		router: chi.NewRouter(),
		start:  time.Now(),
		logger: config.Logger,
	}
	if config.App != nil {
		s.hub = NewFrameHub(config.App, config.FPS, config.Logger)
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	r := s.router
	r.Use(middleware.Recoverer)

	r.Get("/api/health", s.handleHealth)

	if s.config.App != nil {
		scene := api.NewSceneHandler(s.config.App, s.config.Session, s.logger)
		r.Get("/api/status", scene.Status)
		r.Post("/api/upload", scene.Upload)
		r.Post("/api/paste", scene.Paste)
		r.Post("/api/replay", scene.Replay)
		r.Get("/api/export", scene.Export)

		r.Get("/api/frames", NewFramesHandler(s.hub, s.logger).ServeHTTP)
		r.Get("/api/stream", NewStreamHandler(s.hub).ServeHTTP)
	}

	if s.config.Store != nil && s.config.App != nil {
		templates := api.NewTemplateHandler(s.config.Store, s.config.App.Resolver(), s.logger)
		r.Route("/api/templates", templates.Routes)
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		r.Handle("/*", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health. ready reports whether the
// scene has loaded; clients counts open frame streams.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).Round(time.Second).String(),
		"ready":  s.config.App != nil && s.config.App.Status().Ready,
	}
	if s.hub != nil {
		response["clients"] = s.hub.Clients()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Warn("health response failed", "err", err)
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close stops the frame hub. Streaming clients are disconnected.
func (s *Server) Close() {
	if s.hub != nil {
		s.hub.Close()
	}
}
