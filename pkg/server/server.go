// Package server exposes layout, rendering, search and collapse-state
// persistence over HTTP.
//
// Routes:
//
//	GET    /healthz
//	POST   /v1/layout                              scene JSON for a tree
//	POST   /v1/render?format=svg|json|dot|graph|minimap
//	POST   /v1/search                              name/title lookup
//	GET    /v1/trees/{treeID}/collapsed
//	PUT    /v1/trees/{treeID}/collapsed
//	DELETE /v1/trees/{treeID}/collapsed
//	POST   /v1/trees/{treeID}/collapsed/{personID}/toggle
//
// Layout and render requests carry the tree inline. When a request omits
// "collapsed", the set stored for the tree's identity is used.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/collapse"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/pipeline"
)

// Defaults for request handling.
const (
	DefaultMaxBodyBytes   = 8 << 20
	DefaultRequestTimeout = 30 * time.Second
)

// Server serves the HTTP API.
type Server struct {
	runner  *pipeline.Runner
	store   collapse.Store
	logger  *log.Logger
	maxBody int64
	timeout time.Duration
	router  chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxBodyBytes caps request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// WithRequestTimeout bounds each request.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New builds a server. A nil runner gets an uncached one; a nil store keeps
// collapse state in memory.
func New(runner *pipeline.Runner, store collapse.Store, opts ...Option) *Server {
	s := &Server{
		runner:  runner,
		store:   store,
		logger:  log.Default(),
		maxBody: DefaultMaxBodyBytes,
		timeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.runner == nil {
		s.runner = pipeline.NewRunner(nil, nil, s.logger)
	}
	if s.store == nil {
		s.store = collapse.NewMemoryStore()
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))
	r.Use(middleware.RequestSize(s.maxBody))

	r.Get("/healthz", s.health)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.layout)
		r.Post("/render", s.render)
		r.Post("/search", s.search)

		r.Route("/trees/{treeID}/collapsed", func(r chi.Router) {
			r.Get("/", s.getCollapsed)
			r.Put("/", s.putCollapsed)
			r.Delete("/", s.deleteCollapsed)
			r.Post("/{personID}/toggle", s.toggleCollapsed)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
