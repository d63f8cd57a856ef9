// Package engine runs the Monte Carlo wealth-accumulation process for each
// asset class.
//
// Every run starts from the asset's initial units with no cash. Within a
// year each production cycle evaluates the units held at the start of the
// cycle: a unit is lost with the asset's loss probability, otherwise it earns
// the unit profit scaled by uniform noise. Lost units are removed once per
// cycle, after which the run buys back units greedily while it has cash and
// room under its capacity. At year end the year's revenue is banked, the same
// greedy purchase runs again, and wealth (units at purchase price plus cash)
// is recorded.
//
// Revenue only reaches cash at year end, so the post-cycle purchase can only
// spend cash carried over from earlier years. Both purchase points run, in
// this order, for every asset.
package engine

import (
	"github.com/aristath/assetsim/internal/domain"
)

// AssetResult collects every run of one asset. All slices are indexed by run.
type AssetResult struct {
	Asset               domain.AssetName `json:"asset"`
	InitialCapital      float64          `json:"initial_capital"`
	WealthTrajectories  [][]float64      `json:"wealth_trajectories"`  // years+1 snapshots, [0] = initial capital
	RevenueTrajectories [][]float64      `json:"revenue_trajectories"` // years totals
	UnitTrajectories    [][]int          `json:"unit_trajectories"`    // years+1 year-end unit counts
	FinalWealth         []float64        `json:"final_wealth"`
}

// Runs returns the number of recorded runs
func (r *AssetResult) Runs() int {
	return len(r.FinalWealth)
}

// cycleState is the state of a run right after a cycle's losses and top-up.
type cycleState struct {
	Asset domain.AssetName
	Run   int
	Year  int
	Cycle int // -1 for the year-end top-up
	Lost  int
	Units int
	Cash  float64
}

// Engine executes simulation batches. An Engine is not safe for concurrent
// use unless its RandomSource is.
type Engine struct {
	rng RandomSource

	// observe, when set, sees the run state after every cycle and every
	// year-end top-up.
	observe func(cycleState)
}

// New creates an engine drawing from rng. A nil rng uses DefaultSource.
func New(rng RandomSource) *Engine {
	if rng == nil {
		rng = DefaultSource()
	}
	return &Engine{rng: rng}
}

// Simulate runs nRuns independent runs of nYears for every asset in params.
// Assets are processed in domain.AllAssets order so that seeded sources
// give reproducible batches. Parameters are assumed to be validated.
func (e *Engine) Simulate(params domain.SimulationParameters, nRuns, nYears int) map[domain.AssetName]*AssetResult {
	results := make(map[domain.AssetName]*AssetResult, len(params.Assets))
	for _, name := range domain.AllAssets {
		cfg, ok := params.Assets[name]
		if !ok {
			continue
		}
		results[name] = e.simulateAsset(name, cfg, params.Reinvest, nRuns, nYears)
	}
	return results
}

func (e *Engine) simulateAsset(name domain.AssetName, cfg domain.AssetConfig, reinvest bool, nRuns, nYears int) *AssetResult {
	result := &AssetResult{
		Asset:               name,
		InitialCapital:      cfg.InitialCapital(),
		WealthTrajectories:  make([][]float64, 0, nRuns),
		RevenueTrajectories: make([][]float64, 0, nRuns),
		UnitTrajectories:    make([][]int, 0, nRuns),
		FinalWealth:         make([]float64, 0, nRuns),
	}
	capacity := cfg.Capacity(reinvest)

	for run := 0; run < nRuns; run++ {
		wealth, revenue, units := e.simulateRun(name, run, cfg, capacity, nYears)
		result.WealthTrajectories = append(result.WealthTrajectories, wealth)
		result.RevenueTrajectories = append(result.RevenueTrajectories, revenue)
		result.UnitTrajectories = append(result.UnitTrajectories, units)
		result.FinalWealth = append(result.FinalWealth, wealth[nYears])
	}

	return result
}

// runState is the mutable state of a single run
type runState struct {
	units int
	cash  float64
}

// topUp buys one unit at a time while cash covers the price and the
// capacity allows it.
func (s *runState) topUp(capacity int, price float64) {
	for s.units < capacity && s.cash >= price {
		s.units++
		s.cash -= price
	}
}

func (e *Engine) simulateRun(name domain.AssetName, run int, cfg domain.AssetConfig, capacity, nYears int) ([]float64, []float64, []int) {
	state := runState{units: cfg.UnitCount}

	wealth := make([]float64, 1, nYears+1)
	wealth[0] = cfg.InitialCapital()
	revenue := make([]float64, 0, nYears)
	units := make([]int, 1, nYears+1)
	units[0] = cfg.UnitCount

	for year := 0; year < nYears; year++ {
		yearRevenue := 0.0

		for cycle := 0; cycle < cfg.CyclesPerYear; cycle++ {
			lost := 0
			held := state.units
			for u := 0; u < held; u++ {
				if e.rng.Float64() < cfg.LossProbability {
					lost++
					continue
				}
				noise := (e.rng.Float64() - 0.5) * 2 * cfg.RevenueVariation
				yearRevenue += cfg.UnitProfit * (1 + noise)
			}

			state.units -= lost
			state.topUp(capacity, cfg.UnitPrice)
			e.emit(cycleState{Asset: name, Run: run, Year: year, Cycle: cycle, Lost: lost, Units: state.units, Cash: state.cash})
		}

		revenue = append(revenue, yearRevenue)
		state.cash += yearRevenue
		state.topUp(capacity, cfg.UnitPrice)
		e.emit(cycleState{Asset: name, Run: run, Year: year, Cycle: -1, Units: state.units, Cash: state.cash})

		wealth = append(wealth, float64(state.units)*cfg.UnitPrice+state.cash)
		units = append(units, state.units)
	}

	return wealth, revenue, units
}

func (e *Engine) emit(s cycleState) {
	if e.observe != nil {
		e.observe(s)
	}
}
