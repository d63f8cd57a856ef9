package pnl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/assetsim/internal/domain"
)

func TestDefaultInputs_ReproduceDefaultProfits(t *testing.T) {
	params := domain.DefaultParameters()
	results, err := CalculateAll(params, DefaultInputs())
	require.NoError(t, err)
	require.Len(t, results, 3)

	for _, name := range domain.AllAssets {
		assert.InDelta(t, params.Assets[name].UnitProfit, results[name].ProfitUnitCycle, 1e-6, name)
	}
}

func TestCalculate(t *testing.T) {
	params := domain.DefaultParameters()
	in := DefaultInputs()

	tests := []struct {
		name       domain.AssetName
		unitYear   float64
		totalYear  float64
		capital    float64
		eventsYear int
	}{
		{domain.AssetRealEstate, 112100, 224200, 1000000, 2},
		{domain.AssetLivestock, 210000, 840000, 1000000, 4},
		// hangar 150000 + 2 * (300000+20000+3000+2000)
		{domain.AssetFattening, 825000, 1650000, 800000, 6},
	}

	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			r, err := Calculate(tt.name, params.Assets[tt.name], in)
			require.NoError(t, err)
			assert.Equal(t, tt.name, r.Asset)
			assert.InDelta(t, tt.unitYear, r.ProfitUnitYear, 1e-6)
			assert.InDelta(t, tt.totalYear, r.ProfitTotalYear, 1e-6)
			assert.InDelta(t, tt.capital, r.CapitalTotal, 1e-6)
			assert.InDelta(t, tt.totalYear/tt.capital, r.ReturnYear, 1e-12)
			assert.Equal(t, tt.eventsYear, r.EventsYear)
		})
	}
}

func TestCalculate_ZeroCapital(t *testing.T) {
	cfg := domain.DefaultAssets()[domain.AssetLivestock]
	cfg.UnitCount = 0

	r, err := Calculate(domain.AssetLivestock, cfg, DefaultInputs())
	require.NoError(t, err)
	assert.Equal(t, 0.0, r.CapitalTotal)
	assert.Equal(t, 0.0, r.ReturnYear)
	assert.Equal(t, 0, r.EventsYear)
}

func TestCalculate_UnknownAsset(t *testing.T) {
	_, err := Calculate("forest", domain.AssetConfig{UnitPrice: 1, CyclesPerYear: 1}, DefaultInputs())
	assert.True(t, errors.Is(err, domain.ErrInvalidParameters))
}

func TestInputs_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Inputs)
	}{
		{"negative rent", func(in *Inputs) { in.RealEstate.RentMonth = -1 }},
		{"too many months", func(in *Inputs) { in.RealEstate.MonthsOccupied = 13 }},
		{"milk loss above one", func(in *Inputs) { in.Livestock.MilkLossRate = 1.5 }},
		{"negative birth rate", func(in *Inputs) { in.Livestock.BirthRate = -0.1 }},
		{"negative hangar", func(in *Inputs) { in.Fattening.HangarPerYear = -10 }},
	}

	require.NoError(t, DefaultInputs().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := DefaultInputs()
			tt.mutate(&in)
			err := in.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidParameters)

			_, err = CalculateAll(domain.DefaultParameters(), in)
			assert.ErrorIs(t, err, domain.ErrInvalidParameters)
		})
	}
}

func TestApplyProfits(t *testing.T) {
	params := domain.DefaultParameters()
	in := DefaultInputs()
	in.RealEstate.RentMonth = 13000

	results, err := CalculateAll(params, in)
	require.NoError(t, err)

	applied := ApplyProfits(params, results)
	assert.InDelta(t, 123100.0, applied.Assets[domain.AssetRealEstate].UnitProfit, 1e-6)
	assert.Equal(t, params.Assets[domain.AssetLivestock].UnitProfit, applied.Assets[domain.AssetLivestock].UnitProfit)
	// input untouched
	assert.Equal(t, 112100.0, params.Assets[domain.AssetRealEstate].UnitProfit)
}
