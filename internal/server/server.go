// Package server exposes a built doc tree over a read-only JSON API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jward/doctree/internal/model"
	"github.com/jward/doctree/internal/store"
)

// BuildLister lists persisted builds, newest first.
type BuildLister interface {
	Builds() ([]*store.Build, error)
}

// Server is the HTTP lookup service over one doc tree. The tree must not
// be mutated while the server runs.
type Server struct {
	router chi.Router
	tree   *model.Tree
	builds BuildLister
	log    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithBuilds enables /api/builds.
func WithBuilds(b BuildLister) Option {
	return func(s *Server) { s.builds = b }
}

// WithLogger sets the request logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// New creates a server for tree.
func New(tree *model.Tree, opts ...Option) *Server {
	s := &Server{
		tree: tree,
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/docs", s.handleTopLevel)
		r.Get("/docs/{path}", s.handleDoc)
		r.Get("/docs/{path}/children", s.handleChildren)
		r.Get("/search", s.handleSearch)
		if s.builds != nil {
			r.Get("/builds", s.handleBuilds)
		}
	})

	s.router = r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("serving docs", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
