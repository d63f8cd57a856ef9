// Package handlers provides HTTP handlers for scenario presets.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/assetsim/internal/domain"
	"github.com/aristath/assetsim/internal/modules/scenarios"
	"github.com/aristath/assetsim/internal/modules/simulation"
	"github.com/aristath/assetsim/internal/utils"
)

// Handler handles scenario HTTP requests
type Handler struct {
	repo    *scenarios.Repository
	service *simulation.Service
	log     zerolog.Logger
}

// NewHandler creates a new scenarios handler
func NewHandler(repo *scenarios.Repository, service *simulation.Service, log zerolog.Logger) *Handler {
	return &Handler{
		repo:    repo,
		service: service,
		log:     log.With().Str("handler", "scenarios").Logger(),
	}
}

// HandleList handles GET /api/v1/scenarios
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.List()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteResponse(w, r, http.StatusOK, list, h.log)
}

// HandleSave handles POST /api/v1/scenarios.
// The request is validated with the service defaults applied but stored as
// sent, so unset fields keep following the defaults.
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	var s scenarios.Scenario
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&s); err != nil {
		utils.WriteError(w, r, http.StatusBadRequest, "Invalid request body: "+err.Error(), h.log)
		return
	}

	if err := h.service.Normalize(s.Request).Validate(); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.repo.Save(&s); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.log.Info().Str("name", s.Name).Msg("Scenario saved")
	utils.WriteResponse(w, r, http.StatusOK, s, h.log)
}

// HandleGet handles GET /api/v1/scenarios/{name}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	s, err := h.repo.Get(chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteResponse(w, r, http.StatusOK, s, h.log)
}

// HandleDelete handles DELETE /api/v1/scenarios/{name}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.repo.Delete(name); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.log.Info().Str("name", name).Msg("Scenario deleted")
	w.WriteHeader(http.StatusNoContent)
}

// HandleRun handles POST /api/v1/scenarios/{name}/run.
// With ?compare=true both reinvestment modes are returned.
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	s, err := h.repo.Get(chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	compare, _ := strconv.ParseBool(r.URL.Query().Get("compare"))
	if compare {
		cmp, err := h.service.Compare(r.Context(), s.Request)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		utils.WriteResponse(w, r, http.StatusOK, cmp, h.log)
		return
	}

	report, err := h.service.Run(r.Context(), s.Request)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.log.Info().Str("name", s.Name).Str("id", report.ID).Msg("Scenario run completed")
	utils.WriteResponse(w, r, http.StatusOK, report, h.log)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, scenarios.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidParameters):
		status = http.StatusBadRequest
	default:
		h.log.Error().Err(err).Msg("Scenario request failed")
	}
	utils.WriteError(w, r, status, err.Error(), h.log)
}
