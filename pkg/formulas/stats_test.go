package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, 2.5, Mean([]float64{1, 2, 3, 4}), 1e-12)
}

func TestPopMeanStdDev(t *testing.T) {
	data := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	mean, std := PopMeanStdDev(data)

	// Textbook population example: mean 5, sigma 2
	assert.InDelta(t, 5.0, mean, 1e-12)
	assert.InDelta(t, 2.0, std, 1e-12)
	assert.InDelta(t, 2.0, PopStdDev(data), 1e-12)
}

func TestPopMeanStdDev_ConstantInput(t *testing.T) {
	data := make([]float64, 200)
	for i := range data {
		data[i] = 0.2242
	}

	_, std := PopMeanStdDev(data)

	assert.False(t, math.IsNaN(std))
	assert.InDelta(t, 0.0, std, 1e-12)
}

func TestPopMeanStdDev_Empty(t *testing.T) {
	mean, std := PopMeanStdDev(nil)
	assert.Equal(t, 0.0, mean)
	assert.Equal(t, 0.0, std)
}

func TestPercentile(t *testing.T) {
	data := []float64{5, 1, 4, 2, 3}

	assert.Equal(t, 1.0, Percentile(data, 0))
	assert.Equal(t, 5.0, Percentile(data, 1))
	assert.Equal(t, 3.0, Percentile(data, 0.5))
	assert.InDelta(t, 1.4, Percentile(data, 0.1), 1e-12)
	// input untouched
	assert.Equal(t, []float64{5, 1, 4, 2, 3}, data)
	assert.Equal(t, 0.0, Percentile(nil, 0.5))
}

func TestPercentile_ClosestRanksInterpolation(t *testing.T) {
	data := []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}

	tests := []struct {
		p    float64
		want float64
	}{
		{0.10, 1.9},
		{0.25, 3.25},
		{0.50, 5.5},
		{0.90, 9.1},
		{1.00, 10},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, Percentile(data, tt.p), 1e-12, "p=%g", tt.p)
	}
	assert.Equal(t, 42.0, Percentile([]float64{42}, 0.9))
}

func TestScaled(t *testing.T) {
	src := []float64{1_000_000, 2_500_000}
	out := Scaled(src, 1e-6)
	assert.InDeltaSlice(t, []float64{1, 2.5}, out, 1e-12)
	assert.Equal(t, []float64{1_000_000, 2_500_000}, src)
}

func TestColumnMeans(t *testing.T) {
	rows := [][]float64{
		{1, 10, 100},
		{3, 30, 300},
	}
	assert.InDeltaSlice(t, []float64{2, 20, 200}, ColumnMeans(rows), 1e-12)
	assert.Nil(t, ColumnMeans(nil))
	assert.Nil(t, ColumnMeans([][]float64{{}}))
}

func TestColumnPercentiles(t *testing.T) {
	rows := [][]float64{
		{1, 7},
		{2, 7},
		{3, 7},
		{4, 7},
	}

	lo := ColumnPercentiles(rows, 0)
	hi := ColumnPercentiles(rows, 1)

	assert.InDeltaSlice(t, []float64{1, 7}, lo, 1e-12)
	assert.InDeltaSlice(t, []float64{4, 7}, hi, 1e-12)
	assert.InDeltaSlice(t, []float64{1.3, 7}, ColumnPercentiles(rows, 0.1), 1e-12)
	assert.InDeltaSlice(t, []float64{2.5, 7}, ColumnPercentiles(rows, 0.5), 1e-12)
	assert.InDeltaSlice(t, []float64{3.7, 7}, ColumnPercentiles(rows, 0.9), 1e-12)
	// rows untouched by the in-place column sort
	assert.Equal(t, 1.0, rows[0][0])
	assert.Equal(t, 4.0, rows[3][0])
}
