// Package server exposes the murph API over HTTP: session submission,
// history, aggregate metrics, the feed, and the monthly leaderboard.
package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/murph/internal/storage"
	"github.com/go-chi/chi/v5"
	"tailscale.com/client/local"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db     *storage.DB
	log    *slog.Logger
	apiKey string
	lc     *local.Client
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:     db,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetTailscale enables tailnet identity resolution for requests. Without
// it, every request runs as the local dev user.
func (s *Server) SetTailscale(lc *local.Client) {
	s.lc = lc
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.identity)

		// Write endpoints (API key required)
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/murphs", s.handleSubmitMurph)
			r.Delete("/murphs/{id}", s.handleDeleteMurph)
		})

		// Read endpoints
		r.Get("/murphs", s.handleListMurphs)
		r.Get("/murphs/feed", s.handleFeed)
		r.Get("/metrics", s.handleMetrics)
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/me", s.handleMe)
	})
}

// identity resolves the requesting user: the Tailscale login when tsnet is
// active, the seeded dev user otherwise. Decided per request so New can run
// before SetTailscale.
func (s *Server) identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.lc != nil {
			TailscaleIdentity(s.lc, s.db, s.log)(next).ServeHTTP(w, r)
			return
		}
		DevIdentity(next).ServeHTTP(w, r)
	})
}
