// Package handlers provides HTTP and websocket handlers for simulation
// batches and the P&L baseline.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/aristath/assetsim/internal/domain"
	"github.com/aristath/assetsim/internal/modules/pnl"
	"github.com/aristath/assetsim/internal/modules/simulation"
	"github.com/aristath/assetsim/internal/utils"
)

const maxBodyBytes = 1 << 20

// Handler handles simulation HTTP requests
type Handler struct {
	service        *simulation.Service
	originPatterns []string
	log            zerolog.Logger
}

// NewHandler creates a new simulation handler. originPatterns are the
// cross-origin hosts allowed to open the websocket.
func NewHandler(service *simulation.Service, originPatterns []string, log zerolog.Logger) *Handler {
	return &Handler{
		service:        service,
		originPatterns: originPatterns,
		log:            log.With().Str("handler", "simulation").Logger(),
	}
}

// PnLRequest is the body of POST /api/v1/pnl
type PnLRequest struct {
	Parameters *domain.SimulationParameters `json:"parameters,omitempty"`
	Inputs     pnl.Inputs                   `json:"inputs"`
}

// PnLResponse is the P&L of every asset with the inputs used
type PnLResponse struct {
	Inputs  pnl.Inputs                      `json:"inputs"`
	Results map[domain.AssetName]pnl.Result `json:"results"`
}

// HandleDefaults handles GET /api/v1/simulate/defaults
func (h *Handler) HandleDefaults(w http.ResponseWriter, r *http.Request) {
	utils.WriteResponse(w, r, http.StatusOK, h.service.Defaults(), h.log)
}

// HandleSimulate handles POST /api/v1/simulate
func (h *Handler) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	var request simulation.Request
	if !h.decode(w, r, &request) {
		return
	}

	timer := utils.NewTimer("simulate", h.log)
	report, err := h.service.Run(r.Context(), request)
	elapsed := timer.Stop(map[string]interface{}{"runs": request.Runs, "years": request.Years})
	if err != nil {
		h.writeServiceError(w, r, "Simulation failed", err)
		return
	}

	h.log.Info().
		Str("id", report.ID).
		Int("runs", report.Runs).
		Int("years", report.Years).
		Bool("reinvest", report.Parameters.Reinvest).
		Dur("elapsed", elapsed).
		Msg("Simulation completed")

	utils.WriteResponse(w, r, http.StatusOK, report, h.log)
}

// HandleCompare handles POST /api/v1/simulate/compare
func (h *Handler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	var request simulation.Request
	if !h.decode(w, r, &request) {
		return
	}

	cmp, err := h.service.Compare(r.Context(), request)
	if err != nil {
		h.writeServiceError(w, r, "Comparison failed", err)
		return
	}

	h.log.Info().
		Str("id", cmp.ID).
		Int("runs", cmp.Runs).
		Uint64("seed", cmp.Seed).
		Msg("Mode comparison completed")

	utils.WriteResponse(w, r, http.StatusOK, cmp, h.log)
}

// HandleLatest handles GET /api/v1/simulate/latest
func (h *Handler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Latest()
	if err != nil {
		h.writeServiceError(w, r, "No snapshot", err)
		return
	}
	utils.WriteResponse(w, r, http.StatusOK, report, h.log)
}

// HandleGetPnL handles GET /api/v1/pnl
func (h *Handler) HandleGetPnL(w http.ResponseWriter, r *http.Request) {
	h.respondPnL(w, r, domain.DefaultParameters(), pnl.DefaultInputs())
}

// HandlePostPnL handles POST /api/v1/pnl
func (h *Handler) HandlePostPnL(w http.ResponseWriter, r *http.Request) {
	request := PnLRequest{Inputs: pnl.DefaultInputs()}
	if !h.decode(w, r, &request) {
		return
	}

	params := domain.DefaultParameters()
	if request.Parameters != nil {
		params = request.Parameters.WithDefaults()
		if err := params.Validate(); err != nil {
			h.writeServiceError(w, r, "Invalid parameters", err)
			return
		}
	}
	h.respondPnL(w, r, params, request.Inputs)
}

func (h *Handler) respondPnL(w http.ResponseWriter, r *http.Request, params domain.SimulationParameters, inputs pnl.Inputs) {
	results, err := pnl.CalculateAll(params, inputs)
	if err != nil {
		h.writeServiceError(w, r, "P&L calculation failed", err)
		return
	}
	utils.WriteResponse(w, r, http.StatusOK, PnLResponse{Inputs: inputs, Results: results}, h.log)
}

// HandleWebSocket handles GET /api/v1/simulate/ws.
// The client sends simulation requests as JSON text messages; every
// request is answered with a report or {"error": ...}. The connection stays
// open until the client closes it.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "unexpected exit")
	conn.SetReadLimit(maxBodyBytes)

	ctx := r.Context()
	h.log.Debug().Str("remote", r.RemoteAddr).Msg("WebSocket client connected")

	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				h.log.Debug().Msg("WebSocket client disconnected")
				conn.Close(websocket.StatusNormalClosure, "")
			} else if ctx.Err() == nil {
				h.log.Warn().Err(err).Msg("WebSocket read failed")
			}
			return
		}

		if msgType != websocket.MessageText {
			err = wsjson.Write(ctx, conn, map[string]string{"error": "Only text messages are supported"})
		} else {
			var request simulation.Request
			if uerr := json.Unmarshal(data, &request); uerr != nil {
				err = wsjson.Write(ctx, conn, map[string]string{"error": "Invalid request: " + uerr.Error()})
			} else {
				err = h.answer(ctx, conn, request)
			}
		}
		if err != nil {
			h.log.Warn().Err(err).Msg("WebSocket write failed")
			return
		}
	}
}

func (h *Handler) answer(ctx context.Context, conn *websocket.Conn, request simulation.Request) error {
	report, err := h.service.Run(ctx, request)
	if err != nil {
		return wsjson.Write(ctx, conn, map[string]string{"error": err.Error()})
	}
	return wsjson.Write(ctx, conn, report)
}

// decode reads the JSON body into dst. An empty body leaves dst unchanged.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		utils.WriteError(w, r, http.StatusBadRequest, "Invalid request body: "+err.Error(), h.log)
		return false
	}
	return true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, prefix string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidParameters):
		status = http.StatusBadRequest
	case errors.Is(err, simulation.ErrNoSnapshot):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		status = http.StatusServiceUnavailable
	default:
		h.log.Error().Err(err).Msg(prefix)
	}
	utils.WriteError(w, r, status, prefix+": "+err.Error(), h.log)
}
