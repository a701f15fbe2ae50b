package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"evreserve/internal/http/handlers"
	authmw "evreserve/internal/http/middleware"
	"evreserve/internal/ws"
)

// RouterDeps collects handler dependencies.
type RouterDeps struct {
	Stations *handlers.StationsHandler
	Sessions *handlers.SessionsHandler
	Health   http.HandlerFunc
	Hub      *ws.Hub

	// JWTSecret enables the bearer-token routes when non-empty.
	JWTSecret string
}

// NewRouter wires HTTP routes and middleware.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/healthz", deps.Health)
	r.Handle("/metrics", promhttp.Handler())

	if deps.Hub != nil {
		r.Get("/ws/stations/{station_id}", deps.Hub.HandleStation)
	}

	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/stations", deps.Stations.List)
		api.Get("/stations/{station_id}", deps.Stations.Get)

		api.Post("/sessions", deps.Sessions.Reserve)
		api.Get("/sessions/user/{user_id}", deps.Sessions.ListByUser)
		api.Put("/sessions/{session_id}/start", deps.Sessions.Start)
		api.Put("/sessions/{session_id}/end", deps.Sessions.End)
		api.Delete("/sessions/{session_id}", deps.Sessions.Cancel)

		if deps.JWTSecret != "" {
			api.With(authmw.Auth(deps.JWTSecret)).Get("/sessions/me", deps.Sessions.Me)
		}
	})

	return r
}
