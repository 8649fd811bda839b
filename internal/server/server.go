// Package server implements the tagwatch HTTP API.
package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dwsmith1983/tagwatch/internal/server/handlers"
)

// Server is the tagwatch HTTP API server.
type Server struct {
	svc    handlers.Service
	router chi.Router
	addr   string
	logger *slog.Logger
	srv    *http.Server
}

// New creates a new HTTP server.
func New(addr string, svc handlers.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{svc: svc, addr: addr, logger: logger}

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(logger))
	r.Use(RecovererMiddleware(logger))
	r.Use(middleware.SetHeader("Content-Type", "application/json"))

	s.router = r
	s.registerRoutes(r)
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.router }

// Start begins serving HTTP requests and blocks until the server stops.
// ctx is the base context of every request.
func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}
	s.logger.Info("tagwatch server listening", "addr", s.addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}

// Unavailable answers every request with a 500 configuration error. It
// stands in for the router when the service could not be wired.
func Unavailable(err error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		handlers.WriteError(w, handlers.ErrorBody{
			Error:   handlers.MsgConfigError,
			Details: err.Error(),
		})
	})
}
