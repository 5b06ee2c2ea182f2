package schedule

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers schedule routes. limit wraps the generation
// endpoint, which calls a metered service.
func RegisterRoutes(r chi.Router, h *Handler, limit func(http.Handler) http.Handler) {
	r.Route("/schedules", func(r chi.Router) {
		r.With(limit).Post("/", h.CreateSchedule)
	})
}
