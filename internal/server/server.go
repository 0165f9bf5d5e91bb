// Package server provides the HTTP control server for the Aura particle
// visualizer.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/ayusman/aura/internal/server/api"
	"github.com/ayusman/aura/internal/store"
)

// Visualizer is the part of the running app the server controls.
type Visualizer interface {
	StateSource
	api.ConfigStore
}

// Config holds the server configuration.
type Config struct {
	StaticDir  string
	Visualizer Visualizer
	Store      *store.Store
	Frames     *FrameBuffer
	// BroadcastInterval is the gesture WebSocket push period.
	BroadcastInterval time.Duration
}

// Server represents the HTTP server for the Aura application.
type Server struct {
	config  Config
	mux     *http.ServeMux
	start   time.Time
	gesture *GestureHandler

	mu   sync.Mutex
	http *http.Server
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Visualizer != nil {
		s.mux.Handle("/api/config", api.NewConfigHandler(s.config.Visualizer))

		s.gesture = NewGestureHandler(s.config.Visualizer, s.config.BroadcastInterval)
		s.mux.Handle("/api/gesture", s.gesture)
	}

	if s.config.Store != nil {
		sessions := api.NewSessionsHandler(s.config.Store)
		s.mux.Handle("/api/sessions", sessions)
		s.mux.Handle("/api/sessions/", sessions)
	}

	// Camera preview needs a buffer fed by the landmark source
	if s.config.Frames != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Frames))
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]any{
		"status": "ok",
		"uptime": uptime.String(),
	}
	if s.config.Visualizer != nil {
		response["tracking"] = s.config.Visualizer.State().Tracking()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address and blocks
// until Shutdown is called.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.mu.Lock()
	s.http = srv
	s.mu.Unlock()
	log.Printf("Control server listening on %s", addr)

	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the broadcast loop and gracefully closes the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.gesture != nil {
		s.gesture.Close()
	}
	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
