package server

import (
	"context"
	"net/http"
	"time"

	"github.com/aristath/assetsim/internal/utils"
)

// HealthResponse is returned by /health
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Service  string `json:"service"`
	Database string `json:"database,omitempty"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:  "healthy",
		Version: s.version,
		Service: "assetsim",
	}

	status := http.StatusOK
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.db.QuickCheck(ctx); err != nil {
			s.log.Warn().Err(err).Msg("Database health check failed")
			response.Status = "unhealthy"
			response.Database = "unreachable"
			status = http.StatusServiceUnavailable
		} else {
			response.Database = "ok"
		}
	}

	s.writeJSON(w, status, response)
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	utils.WriteJSON(w, status, data, s.log)
}
