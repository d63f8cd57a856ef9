package handlers

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RegisterRoutes registers scenario routes on an /api/v1 router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/scenarios", func(r chi.Router) {
		r.Use(middleware.Timeout(120 * time.Second))

		r.Get("/", h.HandleList)
		r.Post("/", h.HandleSave)
		r.Get("/{name}", h.HandleGet)
		r.Delete("/{name}", h.HandleDelete)
		r.Post("/{name}/run", h.HandleRun)
	})
}
