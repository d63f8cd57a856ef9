// Package pnl derives the risk-free profit and loss baseline of each asset
// from its operating inputs. The per-unit per-cycle profit it produces is
// the UnitProfit the simulation engine consumes.
package pnl

import (
	"fmt"

	"github.com/aristath/assetsim/internal/domain"
)

// RealEstateInputs are the yearly operating figures of one rental unit
type RealEstateInputs struct {
	RentMonth      float64 `json:"rent_month"`
	MonthsOccupied float64 `json:"months_occupied"`
	Maintenance    float64 `json:"cost_maintenance"`
	Taxes          float64 `json:"cost_taxes"`
	Management     float64 `json:"cost_management"`
}

// LivestockInputs are the yearly operating figures of one dairy animal
type LivestockInputs struct {
	MilkLitersDay  float64 `json:"milk_liters_day"`
	DaysProduction float64 `json:"days_production"`
	MilkLossRate   float64 `json:"pct_milk_loss"`
	MilkPriceLiter float64 `json:"price_milk_liter"`
	BirthRate      float64 `json:"pct_birth_rate"`
	CalfWeightKg   float64 `json:"calf_weight_kg"`
	CalfPriceKg    float64 `json:"price_calf_kg"`
	Feed           float64 `json:"cost_feed"`
	Vet            float64 `json:"cost_vet"`
	Other          float64 `json:"cost_other"`
}

// FatteningInputs are the per-cycle figures of one fattened animal, plus
// the yearly hangar cost shared by the herd.
type FatteningInputs struct {
	WeightBuyKg   float64 `json:"weight_buy_kg"`
	WeightGainKg  float64 `json:"weight_gain_kg"`
	SellPriceKg   float64 `json:"price_sell_kg"`
	FeedPerCycle  float64 `json:"cost_feed_cycle"`
	VetPerCycle   float64 `json:"cost_vet_cycle"`
	OtherPerCycle float64 `json:"cost_other_cycle"`
	HangarPerYear float64 `json:"cost_hangar_year"`
}

// Inputs groups the operating inputs of all three assets
type Inputs struct {
	RealEstate RealEstateInputs `json:"immobilier"`
	Livestock  LivestockInputs  `json:"betail"`
	Fattening  FatteningInputs  `json:"embouche"`
}

// Result is the risk-free P&L of one asset
type Result struct {
	Asset           domain.AssetName `json:"asset"`
	ProfitUnitCycle float64          `json:"profit_unit_cycle"`
	ProfitUnitYear  float64          `json:"profit_unit_year"`
	ProfitTotalYear float64          `json:"profit_total_year"`
	CapitalTotal    float64          `json:"capital_total"`
	ReturnYear      float64          `json:"return_year"` // fraction, not percent
	EventsYear      int              `json:"n_events_year"`
}

// DefaultInputs returns operating inputs that reproduce the default unit
// profits of domain.DefaultAssets.
func DefaultInputs() Inputs {
	return Inputs{
		RealEstate: RealEstateInputs{
			RentMonth:      12000,
			MonthsOccupied: 11,
			Maintenance:    8000,
			Taxes:          6900,
			Management:     5000,
		},
		Livestock: LivestockInputs{
			MilkLitersDay:  10,
			DaysProduction: 300,
			MilkLossRate:   0.05,
			MilkPriceLiter: 60,
			BirthRate:      0.8,
			CalfWeightKg:   150,
			CalfPriceKg:    700,
			Feed:           30000,
			Vet:            10000,
			Other:          5000,
		},
		Fattening: FatteningInputs{
			WeightBuyKg:   250,
			WeightGainKg:  150,
			SellPriceKg:   1500,
			FeedPerCycle:  20000,
			VetPerCycle:   3000,
			OtherPerCycle: 2000,
			HangarPerYear: 150000,
		},
	}
}

// Validate rejects negative figures and rates outside [0,1]
func (in Inputs) Validate() error {
	checks := []struct {
		field string
		value float64
	}{
		{"immobilier.rent_month", in.RealEstate.RentMonth},
		{"immobilier.months_occupied", in.RealEstate.MonthsOccupied},
		{"immobilier.cost_maintenance", in.RealEstate.Maintenance},
		{"immobilier.cost_taxes", in.RealEstate.Taxes},
		{"immobilier.cost_management", in.RealEstate.Management},
		{"betail.milk_liters_day", in.Livestock.MilkLitersDay},
		{"betail.days_production", in.Livestock.DaysProduction},
		{"betail.price_milk_liter", in.Livestock.MilkPriceLiter},
		{"betail.calf_weight_kg", in.Livestock.CalfWeightKg},
		{"betail.price_calf_kg", in.Livestock.CalfPriceKg},
		{"betail.cost_feed", in.Livestock.Feed},
		{"betail.cost_vet", in.Livestock.Vet},
		{"betail.cost_other", in.Livestock.Other},
		{"embouche.weight_buy_kg", in.Fattening.WeightBuyKg},
		{"embouche.weight_gain_kg", in.Fattening.WeightGainKg},
		{"embouche.price_sell_kg", in.Fattening.SellPriceKg},
		{"embouche.cost_feed_cycle", in.Fattening.FeedPerCycle},
		{"embouche.cost_vet_cycle", in.Fattening.VetPerCycle},
		{"embouche.cost_other_cycle", in.Fattening.OtherPerCycle},
		{"embouche.cost_hangar_year", in.Fattening.HangarPerYear},
	}
	for _, c := range checks {
		if c.value < 0 {
			return fmt.Errorf("%w: %s must be >= 0, got %g", domain.ErrInvalidParameters, c.field, c.value)
		}
	}
	if in.RealEstate.MonthsOccupied > 12 {
		return fmt.Errorf("%w: immobilier.months_occupied must be <= 12, got %g", domain.ErrInvalidParameters, in.RealEstate.MonthsOccupied)
	}
	for field, rate := range map[string]float64{
		"betail.pct_milk_loss":  in.Livestock.MilkLossRate,
		"betail.pct_birth_rate": in.Livestock.BirthRate,
	} {
		if rate < 0 || rate > 1 {
			return fmt.Errorf("%w: %s must be in [0,1], got %g", domain.ErrInvalidParameters, field, rate)
		}
	}
	return nil
}

// Calculate computes the P&L of one asset from its configuration and the
// operating inputs.
func Calculate(name domain.AssetName, cfg domain.AssetConfig, in Inputs) (Result, error) {
	var profitCycle, capital float64
	units := float64(cfg.UnitCount)

	switch name {
	case domain.AssetRealEstate:
		re := in.RealEstate
		profitCycle = re.RentMonth*re.MonthsOccupied - (re.Maintenance + re.Taxes + re.Management)
		capital = units * cfg.UnitPrice

	case domain.AssetLivestock:
		lv := in.Livestock
		milk := lv.MilkLitersDay * lv.DaysProduction * (1 - lv.MilkLossRate) * lv.MilkPriceLiter
		calf := lv.BirthRate * lv.CalfWeightKg * lv.CalfPriceKg
		profitCycle = milk + calf - (lv.Feed + lv.Vet + lv.Other)
		capital = units * cfg.UnitPrice

	case domain.AssetFattening:
		ft := in.Fattening
		costCycle := cfg.UnitPrice + ft.FeedPerCycle + ft.VetPerCycle + ft.OtherPerCycle
		profitCycle = (ft.WeightBuyKg+ft.WeightGainKg)*ft.SellPriceKg - costCycle
		// Working capital covers one cycle's purchase and upkeep per unit.
		capital = ft.HangarPerYear + units*costCycle

	default:
		return Result{}, fmt.Errorf("%w: unknown asset %q", domain.ErrInvalidParameters, name)
	}

	r := Result{
		Asset:           name,
		ProfitUnitCycle: profitCycle,
		ProfitUnitYear:  profitCycle * float64(cfg.CyclesPerYear),
		CapitalTotal:    capital,
		EventsYear:      cfg.UnitCount * cfg.CyclesPerYear,
	}
	r.ProfitTotalYear = r.ProfitUnitYear * units
	if capital != 0 {
		r.ReturnYear = r.ProfitTotalYear / capital
	}
	return r, nil
}

// CalculateAll computes the P&L of every asset in params.
func CalculateAll(params domain.SimulationParameters, in Inputs) (map[domain.AssetName]Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	out := make(map[domain.AssetName]Result, len(params.Assets))
	for _, name := range domain.AllAssets {
		cfg, ok := params.Assets[name]
		if !ok {
			continue
		}
		r, err := Calculate(name, cfg, in)
		if err != nil {
			return nil, err
		}
		out[name] = r
	}
	return out, nil
}

// ApplyProfits returns a copy of params whose unit profits are taken from
// results, so a batch can be simulated from operating inputs.
func ApplyProfits(params domain.SimulationParameters, results map[domain.AssetName]Result) domain.SimulationParameters {
	out := params.Clone()
	for name, r := range results {
		cfg, ok := out.Assets[name]
		if !ok {
			continue
		}
		cfg.UnitProfit = r.ProfitUnitCycle
		out.Assets[name] = cfg
	}
	return out
}
