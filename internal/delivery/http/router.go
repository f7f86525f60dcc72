package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the saga's HTTP surface: booking ingress, booking lookup
// and operational endpoints.
func NewRouter(h *HTTPHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/bookings", h.CreateBooking)
		r.Get("/bookings/{bookingUid}", h.GetBooking)
		r.Get("/sweeper/status", h.SweeperStatus)
	})

	return r
}
