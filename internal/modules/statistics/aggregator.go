// Package statistics turns raw engine runs into the risk/return metrics and
// averaged trajectories consumed by the presentation layer.
package statistics

import (
	"github.com/aristath/assetsim/internal/domain"
	"github.com/aristath/assetsim/internal/modules/engine"
	"github.com/aristath/assetsim/pkg/formulas"
)

// MaxSampleTrajectories caps the raw revenue trajectories kept for display.
const MaxSampleTrajectories = 20

// Band holds per-year percentiles across runs.
type Band struct {
	P10 []float64 `json:"p10"`
	P50 []float64 `json:"p50"`
	P90 []float64 `json:"p90"`
}

// AssetStatistics is the read-only summary of one asset's batch.
// Returns and volatility are percentages.
type AssetStatistics struct {
	Asset                     domain.AssetName `json:"asset"`
	InitialCapital            float64          `json:"initial_capital"`
	MeanWealth                float64          `json:"mean_wealth"`
	MeanReturn                float64          `json:"mean_return"`
	Volatility                float64          `json:"volatility"`
	MeanWealthTrajectory      []float64        `json:"mean_wealth_trajectory"`
	MeanRevenueTrajectory     []float64        `json:"mean_revenue_trajectory"`
	SampleRevenueTrajectories [][]float64      `json:"sample_revenue_trajectories"`

	ReturnP10          float64   `json:"return_p10"`
	ReturnP90          float64   `json:"return_p90"`
	WealthBands        Band      `json:"wealth_bands"`
	RevenueBands       Band      `json:"revenue_bands"`
	UnitBands          Band      `json:"unit_bands"`
	MeanUnitTrajectory []float64 `json:"mean_unit_trajectory"`
	UnitsFinalMean     float64   `json:"units_final_mean"`
}

// Summarize computes statistics for every asset in results. Initial capital
// is taken from params so it never depends on sampled data.
func Summarize(results map[domain.AssetName]*engine.AssetResult, params domain.SimulationParameters, nRuns, nYears int) map[domain.AssetName]*AssetStatistics {
	stats := make(map[domain.AssetName]*AssetStatistics, len(results))
	for name, res := range results {
		cfg, ok := params.Assets[name]
		if !ok || res == nil {
			continue
		}
		stats[name] = summarizeAsset(name, res, cfg.InitialCapital(), nRuns, nYears)
	}
	return stats
}

func summarizeAsset(name domain.AssetName, res *engine.AssetResult, initialCapital float64, nRuns, nYears int) *AssetStatistics {
	returns := Returns(res.FinalWealth, initialCapital)
	meanReturn, volatility := formulas.PopMeanStdDev(returns)

	s := &AssetStatistics{
		Asset:                     name,
		InitialCapital:            initialCapital,
		MeanWealth:                formulas.Mean(res.FinalWealth),
		MeanReturn:                meanReturn * 100,
		Volatility:                volatility * 100,
		MeanWealthTrajectory:      meanTrajectory(res.WealthTrajectories, nYears+1),
		MeanRevenueTrajectory:     meanTrajectory(res.RevenueTrajectories, nYears),
		SampleRevenueTrajectories: sampleTrajectories(res.RevenueTrajectories, nRuns),
		ReturnP10:                 formulas.Percentile(returns, 0.10) * 100,
		ReturnP90:                 formulas.Percentile(returns, 0.90) * 100,
		WealthBands:               bands(res.WealthTrajectories),
		RevenueBands:              bands(res.RevenueTrajectories),
	}

	units := unitsAsFloat(res.UnitTrajectories)
	s.UnitBands = bands(units)
	s.MeanUnitTrajectory = meanTrajectory(units, nYears+1)
	if n := len(s.MeanUnitTrajectory); n > 0 {
		s.UnitsFinalMean = s.MeanUnitTrajectory[n-1]
	}

	// Every run starts from the same capital; keep the exact value rather
	// than a floating-point average of identical numbers.
	if len(s.MeanWealthTrajectory) > 0 {
		s.MeanWealthTrajectory[0] = initialCapital
	}

	return s
}

// Returns converts final wealth values into fractional returns on
// initialCapital. With no initial capital every return is zero.
func Returns(finalWealth []float64, initialCapital float64) []float64 {
	returns := make([]float64, len(finalWealth))
	if initialCapital == 0 {
		return returns
	}
	for i, w := range finalWealth {
		returns[i] = (w - initialCapital) / initialCapital
	}
	return returns
}

func meanTrajectory(trajectories [][]float64, length int) []float64 {
	if len(trajectories) == 0 {
		return make([]float64, length)
	}
	return formulas.ColumnMeans(trajectories)
}

func sampleTrajectories(trajectories [][]float64, nRuns int) [][]float64 {
	n := min(MaxSampleTrajectories, nRuns, len(trajectories))
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		out[i] = append([]float64(nil), trajectories[i]...)
	}
	return out
}

func bands(trajectories [][]float64) Band {
	return Band{
		P10: formulas.ColumnPercentiles(trajectories, 0.10),
		P50: formulas.ColumnPercentiles(trajectories, 0.50),
		P90: formulas.ColumnPercentiles(trajectories, 0.90),
	}
}

func unitsAsFloat(trajectories [][]int) [][]float64 {
	out := make([][]float64, len(trajectories))
	for i, traj := range trajectories {
		row := make([]float64, len(traj))
		for j, u := range traj {
			row[j] = float64(u)
		}
		out[i] = row
	}
	return out
}
