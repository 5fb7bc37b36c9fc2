// Package server exposes a running simulation over HTTP: read-only snapshot
// and metrics views, live task submission, and pause/resume/step control.
// Every handler goes through the Controller's tick boundary, so observers
// never see partial-tick state.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rtsched/rtsched/sched"
)

// Server is the rtsched observer/control API server.
type Server struct {
	router chi.Router
	ctrl   *sched.Controller
}

// New creates a Server with all routes registered.
func New(ctrl *sched.Controller) *Server {
	s := &Server{
		router: chi.NewRouter(),
		ctrl:   ctrl,
	}
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/snapshot", s.handleSnapshot)
		r.Get("/metrics", s.handleMetrics)
		r.Get("/log", s.handleLog)
		r.Post("/tasks", s.handleSubmitTask)
		r.Post("/control", s.handleControl)
	})
	return s
}

// Handler returns the server's root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}
