package testing

import (
	"github.com/aristath/assetsim/internal/domain"
)

// NewZeroRiskParameters returns the default assets with no losses and no
// revenue noise, so every run is deterministic.
func NewZeroRiskParameters(reinvest bool) domain.SimulationParameters {
	params := domain.DefaultParameters().WithReinvest(reinvest)
	for name, cfg := range params.Assets {
		cfg.LossProbability = 0
		cfg.RevenueVariation = 0
		params.Assets[name] = cfg
	}
	return params
}

// NewInvalidParameters returns default parameters with an out-of-range
// loss probability on livestock.
func NewInvalidParameters() domain.SimulationParameters {
	params := domain.DefaultParameters()
	cfg := params.Assets[domain.AssetLivestock]
	cfg.LossProbability = 1.5
	params.Assets[domain.AssetLivestock] = cfg
	return params
}
