// Package server exposes generation and enrichment over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"spec-synth/internal/config"
	"spec-synth/internal/nlp"
)

// maxBodyBytes bounds request payloads, inline specifications included.
const maxBodyBytes = 8 << 20

type Server struct {
	cfg       *config.Config
	describer nlp.Describer
	router    *chi.Mux

	// HTTP server for graceful shutdown
	httpServer *http.Server
}

// New wires the routes. A nil describer serves undecorated documents.
func New(cfg *config.Config, describer nlp.Describer) *Server {
	s := &Server{
		cfg:       cfg,
		describer: describer,
		router:    chi.NewRouter(),
	}
	s.setupRoutes()
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	origins := s.cfg.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// CORS middleware for browser-based editors
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{RequestIDHeader, OperationsHeader, EnrichedHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	s.router.Use(RequestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestSize(maxBodyBytes))

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/docs", func(r chi.Router) {
		r.Post("/from-code", s.handleFromCode)
		r.Post("/enrich", s.handleEnrich)
		r.Post("/inputs", s.handleInputs)
	})
}

func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"nlp":    s.describer != nil,
	})
}

// ListenAndServe serves until Shutdown, which makes it return
// http.ErrServerClosed.
func (s *Server) ListenAndServe(addr string) error {
	s.httpServer.Addr = addr
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server. It is safe to call before
// ListenAndServe.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, errCode, message string, details ...string) {
	writeJSON(w, status, ErrorResponse{Error: errCode, Message: message, Details: details})
}
