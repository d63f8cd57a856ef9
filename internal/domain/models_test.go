package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultAssets(t *testing.T) {
	assets := DefaultAssets()

	require.Len(t, assets, 3)
	assert.Equal(t, 1, assets[AssetRealEstate].CyclesPerYear)
	assert.Equal(t, 1, assets[AssetLivestock].CyclesPerYear)
	assert.Equal(t, 3, assets[AssetFattening].CyclesPerYear)
	assert.Equal(t, 1_000_000.0, assets[AssetRealEstate].InitialCapital())
	assert.Equal(t, 1_000_000.0, assets[AssetLivestock].InitialCapital())
	assert.Equal(t, 600_000.0, assets[AssetFattening].InitialCapital())
	require.NoError(t, DefaultParameters().Validate())
}

func TestAssetConfig_Capacity(t *testing.T) {
	cfg := AssetConfig{UnitCount: 4}
	assert.Equal(t, 4, cfg.Capacity(false))
	assert.Equal(t, UnlimitedCapacity, cfg.Capacity(true))
}

func TestAssetConfig_Validate(t *testing.T) {
	valid := AssetConfig{UnitCount: 2, UnitPrice: 100, UnitProfit: 10, CyclesPerYear: 1}

	tests := []struct {
		name   string
		mutate func(c *AssetConfig)
		ok     bool
	}{
		{"valid", func(c *AssetConfig) {}, true},
		{"zero units allowed", func(c *AssetConfig) { c.UnitCount = 0 }, true},
		{"certain loss allowed", func(c *AssetConfig) { c.LossProbability = 1 }, true},
		{"negative units", func(c *AssetConfig) { c.UnitCount = -1 }, false},
		{"zero price", func(c *AssetConfig) { c.UnitPrice = 0 }, false},
		{"zero cycles", func(c *AssetConfig) { c.CyclesPerYear = 0 }, false},
		{"probability above one", func(c *AssetConfig) { c.LossProbability = 1.01 }, false},
		{"negative probability", func(c *AssetConfig) { c.LossProbability = -0.1 }, false},
		{"negative variation", func(c *AssetConfig) { c.RevenueVariation = -0.1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrInvalidParameters), "got %v", err)
			}
		})
	}
}

func TestSimulationParameters_ValidateMissingAsset(t *testing.T) {
	params := DefaultParameters()
	delete(params.Assets, AssetLivestock)

	err := params.Validate()

	assert.ErrorIs(t, err, ErrInvalidParameters)
	assert.Contains(t, err.Error(), "betail")
}

func TestSimulationParameters_ValidateUnknownAsset(t *testing.T) {
	params := DefaultParameters()
	params.Assets["vergers"] = params.Assets[AssetRealEstate]

	assert.ErrorIs(t, params.Validate(), ErrInvalidParameters)
}

func TestSimulationParameters_WithReinvestCopies(t *testing.T) {
	params := DefaultParameters()

	withReinvest := params.WithReinvest(true)
	cfg := withReinvest.Assets[AssetRealEstate]
	cfg.UnitCount = 9
	withReinvest.Assets[AssetRealEstate] = cfg

	assert.True(t, withReinvest.Reinvest)
	assert.False(t, params.Reinvest)
	assert.Equal(t, 2, params.Assets[AssetRealEstate].UnitCount)
}

func TestSimulationParameters_WithDefaults(t *testing.T) {
	params := SimulationParameters{
		Assets: map[AssetName]AssetConfig{
			AssetLivestock: {UnitCount: 6, LossProbability: 0.1, RevenueVariation: 0.05},
		},
		Reinvest: true,
	}

	filled := params.WithDefaults()

	require.NoError(t, filled.Validate())
	assert.True(t, filled.Reinvest)
	livestock := filled.Assets[AssetLivestock]
	assert.Equal(t, 6, livestock.UnitCount)
	assert.Equal(t, 250000.0, livestock.UnitPrice)
	assert.Equal(t, 210000.0, livestock.UnitProfit)
	assert.Equal(t, 1, livestock.CyclesPerYear)
	assert.Equal(t, 0.1, livestock.LossProbability)
	assert.Equal(t, DefaultAssets()[AssetFattening], filled.Assets[AssetFattening])
	// input untouched
	assert.Len(t, params.Assets, 1)
}
