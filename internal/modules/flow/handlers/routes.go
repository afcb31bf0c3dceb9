package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all option-chain flow routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/option-chain", func(r chi.Router) {
		r.Get("/expiries", h.HandleExpiries)
		r.Get("/summary", h.HandleSummary)
		r.Get("/target-projection", h.HandleTargetProjection)
		r.Get("/interpretations", h.HandleInterpretations)
	})
	r.Get("/health/nse", h.HandleHealth)
	r.Get("/index-data", h.HandleIndexData)
}
