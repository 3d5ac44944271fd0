package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robertarktes/wedding-invites-and-seating/internal/auth"
	"github.com/robertarktes/wedding-invites-and-seating/internal/observability"
	"github.com/robertarktes/wedding-invites-and-seating/internal/rateLimit"
)

func SetupRouter(h *Handlers, logger observability.Logger, rl *rateLimit.RateLimiter, authSvc *auth.Service) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(logger))
	r.Use(TracingMiddleware)
	r.Use(RateLimitMiddleware(rl))

	r.Get("/v1/invite/{guestId}", h.GetInvite)
	r.Post("/v1/invite/{guestId}/rsvp", h.SubmitRSVP)

	r.Route("/v1/admin", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(authSvc))

			r.Get("/guests", h.ListGuests)
			r.Post("/guests", h.CreateGuest)
			r.Get("/guests/{id}", h.GetGuest)
			r.Patch("/guests/{id}", h.UpdateGuest)
			r.Delete("/guests/{id}", h.DeleteGuest)
			r.Post("/guests/{id}/invite", h.SendInvite)

			r.Get("/seating", h.GetSeating)
			r.Put("/seating/details", h.UpdatePlanDetails)
			r.Post("/seating/tables", h.AddTable)
			r.Patch("/seating/tables/{tableId}", h.UpdateTable)
			r.Delete("/seating/tables/{tableId}", h.RemoveTable)
			r.Post("/seating/tables/{tableId}/position", h.MoveTable)
			r.Post("/seating/tables/{tableId}/guests", h.AssignGuest)
			r.Delete("/seating/tables/{tableId}/guests/{guestId}", h.UnassignGuest)
		})
	})

	r.Get("/v1/healthz", h.Healthz)
	r.Get("/v1/readyz", h.Readyz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}
