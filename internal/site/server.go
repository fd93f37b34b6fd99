// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package site serves a concept collection over HTTP: the filtered catalog
// view, full-text search against the index, the theme stylesheet, health,
// and Prometheus metrics.
package site

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pdiddy/concepts/internal/content"
	"github.com/pdiddy/concepts/internal/index"
	"github.com/pdiddy/concepts/internal/logger"
	"github.com/pdiddy/concepts/internal/theme"
	"github.com/pdiddy/concepts/pkg/types"
)

// Options configures a Server.
type Options struct {
	Collection *content.Collection

	// Index backs /api/search. Nil disables the endpoint.
	Index *index.Store

	Theme    theme.Tokens
	BasePath string
	Debounce time.Duration
	Logger   *logger.Logger

	// Registry receives the server's metrics. Nil uses a private registry.
	Registry *prometheus.Registry
}

// Server is the concepts HTTP server.
type Server struct {
	index    *index.Store
	theme    theme.Tokens
	basePath string
	debounce time.Duration
	log      *logger.Logger
	metrics  *metrics
	registry *prometheus.Registry
	router   chi.Router

	collection atomic.Pointer[content.Collection]
}

// New builds a Server and its routes.
func New(opts Options) *Server {
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	tokens := opts.Theme
	if tokens.Colors == nil {
		tokens = theme.Default()
	}

	s := &Server{
		index:    opts.Index,
		theme:    tokens,
		basePath: normalizeBasePath(opts.BasePath),
		debounce: opts.Debounce,
		log:      logger.OrNop(opts.Logger).With("component", "site"),
		metrics:  newMetrics(reg),
		registry: reg,
	}
	coll := opts.Collection
	if coll == nil {
		coll = content.NewCollection(nil, types.SchemaPermissive)
	}
	s.collection.Store(coll)
	s.metrics.concepts.Set(float64(coll.Len()))

	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(s.metrics.instrument)
	r.Use(middleware.Recoverer)

	mount := func(r chi.Router) {
		r.Get("/healthz", s.handleHealth)
		r.Get("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}).ServeHTTP)
		r.Get("/theme.css", s.handleThemeCSS)
		r.Get("/theme/tailwind.json", s.handleTailwind)
		r.Route("/api", func(r chi.Router) {
			r.Get("/concepts", s.handleConcepts)
			r.Get("/concepts/*", s.handleConcept)
			r.Get("/search", s.handleSearch)
		})
	}
	if s.basePath == "" {
		mount(r)
	} else {
		r.Route(s.basePath, mount)
	}
	return r
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Collection returns the collection currently served.
func (s *Server) Collection() *content.Collection {
	return s.collection.Load()
}

// Reload swaps the served collection. Requests already running keep the
// collection they started with.
func (s *Server) Reload(coll *content.Collection) {
	if coll == nil {
		return
	}
	s.collection.Store(coll)
	s.metrics.concepts.Set(float64(coll.Len()))
	s.metrics.reloadsTotal.Inc()
	s.log.Info("collection reloaded", "concepts", coll.Len())
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln, shutdownTimeout)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", ln.Addr().String(), "base_path", s.basePath)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}

func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}
