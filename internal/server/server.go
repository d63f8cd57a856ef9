// Package server provides the HTTP server and routing for assetsim.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/assetsim/internal/database"
	"github.com/aristath/assetsim/internal/modules/scenarios"
	scenarioshandlers "github.com/aristath/assetsim/internal/modules/scenarios/handlers"
	"github.com/aristath/assetsim/internal/modules/simulation"
	simulationhandlers "github.com/aristath/assetsim/internal/modules/simulation/handlers"
)

// Config holds server configuration
type Config struct {
	Log         zerolog.Logger
	Port        int
	DevMode     bool
	CORSOrigins []string
	Version     string
	Simulation  *simulation.Service
	Scenarios   *scenarios.Repository
	DB          *database.DB
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	db             *database.DB
	simulation     *simulation.Service
	scenarios      *scenarios.Repository
	corsOrigins    []string
	version        string
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	s := &Server{
		router:      chi.NewRouter(),
		log:         cfg.Log.With().Str("component", "server").Logger(),
		db:          cfg.DB,
		simulation:  cfg.Simulation,
		scenarios:   cfg.Scenarios,
		corsOrigins: origins,
		version:     version,
	}
	s.systemHandlers = NewSystemHandlers(s.log, cfg.Simulation, cfg.DB)

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	// No read or write timeout: both would also apply to hijacked websocket
	// connections. HTTP routes carry their own middleware.Timeout.
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/api/system/status", s.systemHandlers.HandleSystemStatus)

	s.router.Route("/api/v1", func(r chi.Router) {
		if s.simulation != nil {
			simulationhandlers.NewHandler(s.simulation, s.websocketOrigins(), s.log).RegisterRoutes(r)
		}
		if s.simulation != nil && s.scenarios != nil {
			scenarioshandlers.NewHandler(s.scenarios, s.simulation, s.log).RegisterRoutes(r)
		}
	})
}

// websocketOrigins maps the CORS configuration onto websocket origin
// patterns. A wildcard accepts any origin.
func (s *Server) websocketOrigins() []string {
	for _, origin := range s.corsOrigins {
		if origin == "*" {
			return []string{"*"}
		}
	}
	return s.corsOrigins
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.log.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration_ms", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("HTTP request")
		}()

		next.ServeHTTP(ww, r)
	})
}

// Handler exposes the router, mostly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
