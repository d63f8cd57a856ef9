package handlers

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RegisterRoutes registers simulation and P&L routes on an /api/v1 router
func (h *Handler) RegisterRoutes(r chi.Router) {
	// Long-lived; must stay outside the timeout group
	r.Get("/simulate/ws", h.HandleWebSocket)

	r.Group(func(r chi.Router) {
		// Large batches (10000 runs x 50 years) take a while
		r.Use(middleware.Timeout(120 * time.Second))

		r.Route("/simulate", func(r chi.Router) {
			r.Get("/defaults", h.HandleDefaults)
			r.Get("/latest", h.HandleLatest)
			r.Post("/", h.HandleSimulate)
			r.Post("/compare", h.HandleCompare)
		})

		r.Route("/pnl", func(r chi.Router) {
			r.Get("/", h.HandleGetPnL)
			r.Post("/", h.HandlePostPnL)
		})
	})
}
