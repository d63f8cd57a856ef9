package engine

import (
	"math"

	"github.com/aristath/assetsim/internal/domain"
)

// EstimateDraws returns an upper bound on the random draws Simulate makes
// for params. Every held unit costs at most two draws per cycle (loss roll,
// then noise roll).
//
// Unit counts are projected without losses and with maximum noise, buying
// units at year end as cash allows. A real run holds at most as many units
// in every year, so the projection bounds its work.
func EstimateDraws(params domain.SimulationParameters, nRuns, nYears int) float64 {
	total := 0.0
	for _, name := range domain.AllAssets {
		cfg, ok := params.Assets[name]
		if !ok {
			continue
		}
		total += float64(nRuns) * estimateRunDraws(cfg, cfg.Capacity(params.Reinvest), nYears)
	}
	return total
}

func estimateRunDraws(cfg domain.AssetConfig, capacity, nYears int) float64 {
	units := float64(cfg.UnitCount)
	limit := math.Max(float64(capacity), units)
	cycles := float64(cfg.CyclesPerYear)
	bestProfit := math.Max(cfg.UnitProfit, 0) * (1 + cfg.RevenueVariation)

	draws, cash := 0.0, 0.0
	for year := 0; year < nYears; year++ {
		draws += 2 * units * cycles
		cash += units * cycles * bestProfit
		if cfg.UnitPrice > 0 {
			bought := math.Min(limit-units, math.Floor(cash/cfg.UnitPrice))
			units += bought
			cash -= bought * cfg.UnitPrice
		}
	}
	return draws
}
