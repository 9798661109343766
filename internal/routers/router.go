package routers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"codesync/internal/api"
	"codesync/internal/genie"
	"codesync/internal/ice"
	"codesync/internal/metrics"
)

// New assembles the full HTTP surface: liveness, the client WebSocket, the
// room status and ICE config endpoints, Prometheus metrics, and the optional
// assistant proxy (mounted only when a provider is configured).
func New(h *api.Handlers, genieHandler *genie.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))
	r.Use(metrics.Middleware)

	r.Get("/", h.Health)
	r.Get("/keep-alive", h.KeepAlive)
	r.Handle("/metrics", metrics.Handler())

	r.Get("/ws", h.WS)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/webrtc/config", ice.Handler)
		r.Get("/room/{roomId}/status", h.RoomStatus)
	})

	if genieHandler != nil {
		r.With(middleware.Timeout(60 * time.Second)).Post("/genie", genieHandler.ServeHTTP)
	}

	return r
}
