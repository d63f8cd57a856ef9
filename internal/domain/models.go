// Package domain provides the asset and parameter models shared by the
// simulation engine, the aggregator and the API layer.
package domain

import (
	"errors"
	"fmt"
)

// AssetName identifies one of the three investment strategies
type AssetName string

const (
	// AssetRealEstate is rental property: one yearly cycle, low loss rate
	AssetRealEstate AssetName = "immobilier"
	// AssetLivestock is dairy cattle: milk and calf revenue, one yearly cycle
	AssetLivestock AssetName = "betail"
	// AssetFattening is short-cycle cattle fattening: three cycles per year
	AssetFattening AssetName = "embouche"
)

// AllAssets lists the assets in reporting order.
var AllAssets = []AssetName{AssetRealEstate, AssetLivestock, AssetFattening}

// IsValid reports whether a is one of the known assets
func (a AssetName) IsValid() bool {
	switch a {
	case AssetRealEstate, AssetLivestock, AssetFattening:
		return true
	}
	return false
}

// UnlimitedCapacity is the unit cap used when reinvestment is enabled.
const UnlimitedCapacity = 999999

// ErrInvalidParameters is returned when a configuration violates the
// engine's input contract.
var ErrInvalidParameters = errors.New("invalid simulation parameters")

// AssetConfig holds the immutable parameters of one asset class
type AssetConfig struct {
	UnitCount        int     `json:"unit_count"`        // Units owned at the start of every run
	UnitPrice        float64 `json:"unit_price"`        // Purchase price of one unit
	UnitProfit       float64 `json:"unit_profit"`       // Profit of one surviving unit per cycle
	CyclesPerYear    int     `json:"cycles_per_year"`   // Production cycles per year
	LossProbability  float64 `json:"loss_probability"`  // Per unit, per cycle
	RevenueVariation float64 `json:"revenue_variation"` // Half-width of the uniform noise band
}

// InitialCapital is the value of the starting units.
func (c AssetConfig) InitialCapital() float64 {
	return float64(c.UnitCount) * c.UnitPrice
}

// Capacity is the maximum number of units a run may hold.
func (c AssetConfig) Capacity(reinvest bool) int {
	if reinvest {
		return UnlimitedCapacity
	}
	return c.UnitCount
}

// Validate checks the ranges the engine relies on
func (c AssetConfig) Validate() error {
	switch {
	case c.UnitCount < 0:
		return fmt.Errorf("%w: unit_count must be >= 0, got %d", ErrInvalidParameters, c.UnitCount)
	case !(c.UnitPrice > 0):
		return fmt.Errorf("%w: unit_price must be > 0, got %g", ErrInvalidParameters, c.UnitPrice)
	case c.CyclesPerYear < 1:
		return fmt.Errorf("%w: cycles_per_year must be >= 1, got %d", ErrInvalidParameters, c.CyclesPerYear)
	case !(c.LossProbability >= 0 && c.LossProbability <= 1):
		return fmt.Errorf("%w: loss_probability must be in [0,1], got %g", ErrInvalidParameters, c.LossProbability)
	case !(c.RevenueVariation >= 0):
		return fmt.Errorf("%w: revenue_variation must be >= 0, got %g", ErrInvalidParameters, c.RevenueVariation)
	}
	return nil
}

// SimulationParameters is the full input of one simulation batch
type SimulationParameters struct {
	Assets   map[AssetName]AssetConfig `json:"assets"`
	Reinvest bool                      `json:"reinvest"`
}

// DefaultAssets returns the three fixed asset classes with their default
// unit counts and risk settings.
func DefaultAssets() map[AssetName]AssetConfig {
	return map[AssetName]AssetConfig{
		AssetRealEstate: {
			UnitCount:        2,
			UnitPrice:        500000,
			UnitProfit:       112100,
			CyclesPerYear:    1,
			LossProbability:  0.02,
			RevenueVariation: 0.10,
		},
		AssetLivestock: {
			UnitCount:        4,
			UnitPrice:        250000,
			UnitProfit:       210000,
			CyclesPerYear:    1,
			LossProbability:  0.20,
			RevenueVariation: 0.20,
		},
		AssetFattening: {
			UnitCount:        2,
			UnitPrice:        300000,
			UnitProfit:       275000,
			CyclesPerYear:    3,
			LossProbability:  0.20,
			RevenueVariation: 0.30,
		},
	}
}

// DefaultParameters returns the default parameters with reinvestment off.
func DefaultParameters() SimulationParameters {
	return SimulationParameters{Assets: DefaultAssets()}
}

// Validate checks every asset and requires all three to be present
func (p SimulationParameters) Validate() error {
	for _, name := range AllAssets {
		cfg, ok := p.Assets[name]
		if !ok {
			return fmt.Errorf("%w: missing asset %q", ErrInvalidParameters, name)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("asset %s: %w", name, err)
		}
	}
	for name := range p.Assets {
		if !name.IsValid() {
			return fmt.Errorf("%w: unknown asset %q", ErrInvalidParameters, name)
		}
	}
	return nil
}

// WithReinvest returns a copy of p with the reinvest flag set.
func (p SimulationParameters) WithReinvest(reinvest bool) SimulationParameters {
	out := p.Clone()
	out.Reinvest = reinvest
	return out
}

// Clone deep-copies the asset map.
func (p SimulationParameters) Clone() SimulationParameters {
	assets := make(map[AssetName]AssetConfig, len(p.Assets))
	for k, v := range p.Assets {
		assets[k] = v
	}
	return SimulationParameters{Assets: assets, Reinvest: p.Reinvest}
}

// WithDefaults fills assets that are missing, and the fixed economics
// (price, profit, cycles) of assets sent with only their risk settings,
// from DefaultAssets.
func (p SimulationParameters) WithDefaults() SimulationParameters {
	out := p.Clone()
	defaults := DefaultAssets()
	for _, name := range AllAssets {
		def := defaults[name]
		cfg, ok := out.Assets[name]
		if !ok {
			out.Assets[name] = def
			continue
		}
		if cfg.UnitPrice == 0 {
			cfg.UnitPrice = def.UnitPrice
			if cfg.UnitProfit == 0 {
				cfg.UnitProfit = def.UnitProfit
			}
		}
		if cfg.CyclesPerYear == 0 {
			cfg.CyclesPerYear = def.CyclesPerYear
		}
		out.Assets[name] = cfg
	}
	return out
}
