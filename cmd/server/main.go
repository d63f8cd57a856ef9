// Package main is the entry point for the assetsim HTTP service.
//
// Startup order:
//  1. configuration from the environment (.env supported)
//  2. logger
//  3. scenarios database (migrated, presets seeded)
//  4. simulation service and the default snapshot
//  5. snapshot scheduler and HTTP server
//
// SIGINT/SIGTERM trigger a graceful shutdown.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/assetsim/internal/config"
	"github.com/aristath/assetsim/internal/database"
	"github.com/aristath/assetsim/internal/modules/charts"
	"github.com/aristath/assetsim/internal/modules/scenarios"
	"github.com/aristath/assetsim/internal/modules/simulation"
	"github.com/aristath/assetsim/internal/scheduler"
	"github.com/aristath/assetsim/internal/server"
	"github.com/aristath/assetsim/pkg/logger"
)

// snapshotTimeout bounds a single default snapshot refresh
const snapshotTimeout = 2 * time.Minute

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("data_dir", cfg.DataDir).
		Int("sim_runs", cfg.SimRuns).
		Int("sim_years", cfg.SimYears).
		Msg("Starting assetsim")

	db, err := database.New(database.Config{
		Path:    cfg.ScenariosDBPath(),
		Profile: database.ProfileStandard,
		Name:    "scenarios",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open scenarios database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate scenarios database")
	}

	repo := scenarios.NewRepository(db.Conn(), log)
	if created, err := repo.EnsurePresets(); err != nil {
		log.Error().Err(err).Msg("Failed to seed scenario presets")
	} else if created > 0 {
		log.Info().Int("count", created).Msg("Seeded scenario presets")
	}

	simService := simulation.NewService(
		charts.NewService(log),
		simulation.Config{
			Runs:  cfg.SimRuns,
			Years: cfg.SimYears,
			Seed:  cfg.SimSeed,
		},
		log,
	)

	sched := scheduler.New(log)
	snapshotJob := scheduler.NewSnapshotJob(simService, snapshotTimeout)

	// The first snapshot is computed before serving so /simulate/latest
	// answers right away.
	if err := sched.RunNow(snapshotJob); err != nil {
		log.Error().Err(err).Msg("Initial snapshot failed")
	}

	if cfg.SnapshotSchedule != "" {
		if err := sched.AddJob(cfg.SnapshotSchedule, snapshotJob); err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule snapshot refresh")
		}
		sched.Start()
	} else {
		log.Info().Msg("Snapshot refresh disabled")
	}

	srv := server.New(server.Config{
		Log:         log,
		Port:        cfg.Port,
		DevMode:     cfg.DevMode,
		CORSOrigins: cfg.CORSOrigins,
		Version:     getEnv("VERSION", "dev"),
		Simulation:  simService,
		Scenarios:   repo,
		DB:          db,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	if cfg.SnapshotSchedule != "" {
		sched.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
