// Package handlers provides the HTTP surface for option-chain flow
// operations.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"oiflow/internal/modules/flow"
)

// Handler handles option-chain flow HTTP requests
type Handler struct {
	service *flow.Service
	log     zerolog.Logger
}

// NewHandler creates a new flow handler
func NewHandler(service *flow.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "flow").Logger(),
	}
}

// HandleExpiries handles GET /api/option-chain/expiries
func (h *Handler) HandleExpiries(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Expiries(r.Context(), queryFromRequest(r))
	if err != nil {
		h.writeUpstreamError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// HandleSummary handles GET /api/option-chain/summary
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Summary(r.Context(), queryFromRequest(r))
	if err != nil {
		h.writeUpstreamError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// HandleTargetProjection handles GET /api/option-chain/target-projection
func (h *Handler) HandleTargetProjection(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.TargetProjection(r.Context(), queryFromRequest(r))
	if err != nil {
		h.writeUpstreamError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// HandleInterpretations handles GET /api/option-chain/interpretations
func (h *Handler) HandleInterpretations(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Interpretations(r.Context(), queryFromRequest(r))
	if err != nil {
		h.writeUpstreamError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// HandleHealth handles GET /api/health/nse
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Health(r.Context())
	if err != nil {
		h.writeUpstreamError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// HandleIndexData handles GET /api/index-data
// Optionally filters by comma-separated index names, e.g.
// names=NIFTY%2050,NIFTY%20BANK
func (h *Handler) HandleIndexData(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.IndexData(r.Context(), r.URL.Query().Get("names"))
	if err != nil {
		h.writeUpstreamError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// queryFromRequest reads the common option-chain query parameters. Defaults
// are applied by the service.
func queryFromRequest(r *http.Request) flow.Query {
	q := r.URL.Query()
	useSample, _ := strconv.ParseBool(q.Get("use_sample"))
	return flow.Query{
		Symbol:         q.Get("symbol"),
		Expiry:         q.Get("expiry"),
		InstrumentType: q.Get("instrument_type"),
		UseSample:      useSample,
	}
}

// writeUpstreamError maps any service failure to a bad-gateway response with
// the underlying cause attached for diagnostics.
func (h *Handler) writeUpstreamError(w http.ResponseWriter, err error) {
	h.log.Error().Err(err).Msg("Upstream request failed")
	h.writeJSON(w, http.StatusBadGateway, map[string]string{"detail": err.Error()})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
