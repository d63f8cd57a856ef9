package server

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/assetsim/internal/database"
	"github.com/aristath/assetsim/internal/modules/simulation"
	"github.com/aristath/assetsim/internal/utils"
)

// SystemHandlers serves process and host status
type SystemHandlers struct {
	log        zerolog.Logger
	simulation *simulation.Service
	db         *database.DB
	startedAt  time.Time

	// overridable in tests
	systemStats func() (float64, float64)
}

// NewSystemHandlers creates system handlers. Both dependencies may be nil.
func NewSystemHandlers(log zerolog.Logger, service *simulation.Service, db *database.DB) *SystemHandlers {
	h := &SystemHandlers{
		log:        log.With().Str("handler", "system").Logger(),
		simulation: service,
		db:         db,
		startedAt:  time.Now(),
	}
	h.systemStats = h.getSystemStats
	return h
}

// SystemStatusResponse represents the system status
type SystemStatusResponse struct {
	Status         string  `json:"status"` // "healthy" or "degraded"
	UptimeSeconds  int64   `json:"uptime_seconds"`
	Goroutines     int     `json:"goroutines"`
	CPUPercent     float64 `json:"cpu_percent"`
	RAMPercent     float64 `json:"ram_percent"`
	DatabaseOK     bool    `json:"database_ok"`
	SnapshotID     string  `json:"snapshot_id,omitempty"`
	SnapshotAt     string  `json:"snapshot_at,omitempty"`
	SnapshotMillis int64   `json:"snapshot_elapsed_ms,omitempty"`
}

// HandleSystemStatus returns host load, process uptime and the state of the
// default snapshot
// GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, ramPercent := h.systemStats()

	response := SystemStatusResponse{
		Status:        "healthy",
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
		CPUPercent:    cpuPercent,
		RAMPercent:    ramPercent,
		DatabaseOK:    true,
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.HealthCheck(ctx); err != nil {
			h.log.Warn().Err(err).Msg("Database unreachable")
			response.DatabaseOK = false
			response.Status = "degraded"
		}
	}

	if h.simulation != nil {
		if latest, err := h.simulation.Latest(); err == nil {
			response.SnapshotID = latest.ID
			response.SnapshotAt = latest.GeneratedAt.Format(time.RFC3339)
			response.SnapshotMillis = latest.ElapsedMs
		} else {
			response.Status = "degraded"
		}
	}

	utils.WriteResponse(w, r, http.StatusOK, response, h.log)
}

// getSystemStats returns CPU and RAM usage percentages.
// The 100ms CPU window keeps the endpoint responsive.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
