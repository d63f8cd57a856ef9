// Package simulation orchestrates simulation batches: it validates
// requests, runs the engine, summarizes the runs and attaches chart data.
// It also keeps the latest light-mode snapshot of the default parameters.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/assetsim/internal/domain"
	"github.com/aristath/assetsim/internal/modules/charts"
	"github.com/aristath/assetsim/internal/modules/engine"
	"github.com/aristath/assetsim/internal/modules/pnl"
	"github.com/aristath/assetsim/internal/modules/statistics"
)

// Batch sizes
const (
	DefaultRuns  = 200
	DefaultYears = 5
	// Light mode is used for automatic runs (startup, scheduled refresh)
	LightRuns  = 100
	LightYears = 5

	MaxRuns  = 10000
	MaxYears = 50

	// MaxDraws bounds the estimated random draws of one request, both modes
	// included for a comparison. The engine cannot be interrupted, so large
	// reinvesting batches are rejected up front.
	MaxDraws = 2e9
)

// ErrNoSnapshot is returned when no default snapshot has been computed yet
var ErrNoSnapshot = errors.New("no simulation snapshot available")

// Config holds the service defaults
type Config struct {
	Runs  int    // runs when a request leaves it unset
	Years int    // years when a request leaves it unset
	Seed  uint64 // 0 draws from the entropy-seeded source
}

// Request describes one simulation batch. Zero values fall back to the
// service defaults.
type Request struct {
	Parameters domain.SimulationParameters `json:"parameters"`
	Runs       int                         `json:"runs"`
	Years      int                         `json:"years"`
	Seed       *uint64                     `json:"seed,omitempty"`
	Selected   string                      `json:"selected,omitempty"` // revenue chart asset, empty for all
	PnLInputs  *pnl.Inputs                 `json:"pnl_inputs,omitempty"`
}

// Report is the result of one simulation batch
type Report struct {
	ID          string                                           `json:"id"`
	GeneratedAt time.Time                                        `json:"generated_at"`
	Parameters  domain.SimulationParameters                      `json:"parameters"`
	Runs        int                                              `json:"runs"`
	Years       int                                              `json:"years"`
	Seed        *uint64                                          `json:"seed,omitempty"`
	Statistics  map[domain.AssetName]*statistics.AssetStatistics `json:"statistics"`
	Charts      *charts.ChartData                                `json:"charts"`
	PnL         map[domain.AssetName]pnl.Result                  `json:"pnl,omitempty"`
	ElapsedMs   int64                                            `json:"elapsed_ms"`
}

// Comparison runs the same parameters without and with reinvestment
type Comparison struct {
	ID              string                          `json:"id"`
	GeneratedAt     time.Time                       `json:"generated_at"`
	Runs            int                             `json:"runs"`
	Years           int                             `json:"years"`
	Seed            uint64                          `json:"seed"`
	PnL             map[domain.AssetName]pnl.Result `json:"pnl"`
	WithoutReinvest *Report                         `json:"without_reinvest"`
	WithReinvest    *Report                         `json:"with_reinvest"`
}

// Defaults describes what a client can send
type Defaults struct {
	Parameters domain.SimulationParameters `json:"parameters"`
	PnLInputs  pnl.Inputs                  `json:"pnl_inputs"`
	Runs       int                         `json:"runs"`
	Years      int                         `json:"years"`
	LightRuns  int                         `json:"light_runs"`
	LightYears int                         `json:"light_years"`
	MaxRuns    int                         `json:"max_runs"`
	MaxYears   int                         `json:"max_years"`
	MaxDraws   float64                     `json:"max_draws"`
}

// Service runs simulation batches
type Service struct {
	charts *charts.Service
	cfg    Config
	log    zerolog.Logger

	// Latest default snapshot (protected by mu)
	mu     sync.RWMutex
	latest *Report
}

// NewService creates a new simulation service
func NewService(chartsService *charts.Service, cfg Config, log zerolog.Logger) *Service {
	if cfg.Runs <= 0 {
		cfg.Runs = DefaultRuns
	}
	if cfg.Years <= 0 {
		cfg.Years = DefaultYears
	}
	return &Service{
		charts: chartsService,
		cfg:    cfg,
		log:    log.With().Str("service", "simulation").Logger(),
	}
}

// Defaults returns the default parameters and batch sizes
func (s *Service) Defaults() Defaults {
	return Defaults{
		Parameters: domain.DefaultParameters(),
		PnLInputs:  pnl.DefaultInputs(),
		Runs:       s.cfg.Runs,
		Years:      s.cfg.Years,
		LightRuns:  LightRuns,
		LightYears: LightYears,
		MaxRuns:    MaxRuns,
		MaxYears:   MaxYears,
		MaxDraws:   MaxDraws,
	}
}

// Normalize fills unset fields of req from the service defaults.
func (s *Service) Normalize(req Request) Request {
	if req.Runs == 0 {
		req.Runs = s.cfg.Runs
	}
	if req.Years == 0 {
		req.Years = s.cfg.Years
	}
	if req.Seed == nil && s.cfg.Seed != 0 {
		seed := s.cfg.Seed
		req.Seed = &seed
	}
	req.Parameters = req.Parameters.WithDefaults()
	return req
}

// Validate checks batch sizes and parameters
func (r Request) Validate() error {
	if r.Runs < 1 || r.Runs > MaxRuns {
		return fmt.Errorf("%w: runs must be between 1 and %d, got %d", domain.ErrInvalidParameters, MaxRuns, r.Runs)
	}
	if r.Years < 1 || r.Years > MaxYears {
		return fmt.Errorf("%w: years must be between 1 and %d, got %d", domain.ErrInvalidParameters, MaxYears, r.Years)
	}
	if r.Selected != "" && r.Selected != charts.SelectAll && !domain.AssetName(r.Selected).IsValid() {
		return fmt.Errorf("%w: unknown asset %q", domain.ErrInvalidParameters, r.Selected)
	}
	if err := r.Parameters.Validate(); err != nil {
		return err
	}
	if r.PnLInputs != nil {
		if err := r.PnLInputs.Validate(); err != nil {
			return err
		}
	}
	return checkBudget(engine.EstimateDraws(r.simulatedParameters(), r.Runs, r.Years))
}

// simulatedParameters returns the parameters the engine will see, with
// profits derived from the P&L inputs when they are set.
func (r Request) simulatedParameters() domain.SimulationParameters {
	if r.PnLInputs == nil {
		return r.Parameters
	}
	results, err := pnl.CalculateAll(r.Parameters, *r.PnLInputs)
	if err != nil {
		return r.Parameters
	}
	return pnl.ApplyProfits(r.Parameters, results)
}

func checkBudget(draws float64) error {
	if draws > MaxDraws {
		return fmt.Errorf("%w: batch needs up to %.3g random draws, limit is %.3g; lower runs or years",
			domain.ErrInvalidParameters, draws, float64(MaxDraws))
	}
	return nil
}

// Run executes one simulation batch
func (s *Service) Run(ctx context.Context, req Request) (*Report, error) {
	req = s.Normalize(req)
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation request: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var baseline map[domain.AssetName]pnl.Result
	if req.PnLInputs != nil {
		var err error
		baseline, err = pnl.CalculateAll(req.Parameters, *req.PnLInputs)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate P&L: %w", err)
		}
		req.Parameters = pnl.ApplyProfits(req.Parameters, baseline)
	}

	report, err := s.run(req)
	if err != nil {
		return nil, err
	}
	report.PnL = baseline
	return report, nil
}

// Compare runs req without and with reinvestment from the same seed, so
// both modes see the same draw sequence. The reinvest flag of
// req.Parameters is ignored.
func (s *Service) Compare(ctx context.Context, req Request) (*Comparison, error) {
	req = s.Normalize(req)
	if req.Seed == nil {
		seed := rand.Uint64()
		req.Seed = &seed
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid comparison request: %w", err)
	}
	simulated := req.simulatedParameters()
	draws := engine.EstimateDraws(simulated.WithReinvest(false), req.Runs, req.Years) +
		engine.EstimateDraws(simulated.WithReinvest(true), req.Runs, req.Years)
	if err := checkBudget(draws); err != nil {
		return nil, fmt.Errorf("invalid comparison request: %w", err)
	}

	inputs := pnl.DefaultInputs()
	if req.PnLInputs != nil {
		inputs = *req.PnLInputs
	}
	baseline, err := pnl.CalculateAll(req.Parameters, inputs)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate P&L: %w", err)
	}
	if req.PnLInputs != nil {
		req.Parameters = pnl.ApplyProfits(req.Parameters, baseline)
	}

	cmp := &Comparison{
		ID:          uuid.New().String(),
		GeneratedAt: time.Now(),
		Runs:        req.Runs,
		Years:       req.Years,
		Seed:        *req.Seed,
		PnL:         baseline,
	}

	for _, reinvest := range []bool{false, true} {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		modeReq := req
		modeReq.Parameters = req.Parameters.WithReinvest(reinvest)
		report, err := s.run(modeReq)
		if err != nil {
			return nil, err
		}
		if reinvest {
			cmp.WithReinvest = report
		} else {
			cmp.WithoutReinvest = report
		}
	}

	return cmp, nil
}

// RefreshSnapshot recomputes the light-mode snapshot of the default
// parameters and makes it the latest one.
func (s *Service) RefreshSnapshot(ctx context.Context) (*Report, error) {
	report, err := s.Run(ctx, Request{
		Parameters: domain.DefaultParameters(),
		Runs:       LightRuns,
		Years:      LightYears,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to refresh snapshot: %w", err)
	}

	s.mu.Lock()
	s.latest = report
	s.mu.Unlock()

	s.log.Info().Str("id", report.ID).Int64("elapsed_ms", report.ElapsedMs).Msg("Default snapshot refreshed")
	return report, nil
}

// Latest returns the most recent default snapshot
func (s *Service) Latest() (*Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, ErrNoSnapshot
	}
	return s.latest, nil
}

// run assumes req is normalized and valid. Every batch gets its own
// random source.
func (s *Service) run(req Request) (*Report, error) {
	start := time.Now()

	var rng engine.RandomSource
	if req.Seed != nil {
		rng = engine.NewSeededSource(*req.Seed)
	} else {
		rng = engine.DefaultSource()
	}

	results := engine.New(rng).Simulate(req.Parameters, req.Runs, req.Years)
	stats := statistics.Summarize(results, req.Parameters, req.Runs, req.Years)

	chartData, err := s.charts.Build(stats, req.Years, req.Selected)
	if err != nil {
		return nil, fmt.Errorf("failed to build charts: %w", err)
	}

	report := &Report{
		ID:          uuid.New().String(),
		GeneratedAt: time.Now(),
		Parameters:  req.Parameters,
		Runs:        req.Runs,
		Years:       req.Years,
		Seed:        req.Seed,
		Statistics:  stats,
		Charts:      chartData,
		ElapsedMs:   time.Since(start).Milliseconds(),
	}

	s.log.Debug().
		Str("id", report.ID).
		Int("runs", req.Runs).
		Int("years", req.Years).
		Bool("reinvest", req.Parameters.Reinvest).
		Int64("elapsed_ms", report.ElapsedMs).
		Msg("Simulation batch completed")

	return report, nil
}
