package server

import (
	"github.com/go-chi/chi/v5"

	"github.com/dwsmith1983/tagwatch/internal/server/handlers"
)

func (s *Server) registerRoutes(r chi.Router) {
	h := handlers.New(s.svc)
	h.SetLogger(s.logger)

	r.Get("/check-updates", h.CheckUpdates)
	r.Post("/manual-trigger", h.ManualTrigger)
	r.Get("/status", h.Status)

	r.NotFound(h.Discovery)
	r.MethodNotAllowed(h.Discovery)
}
