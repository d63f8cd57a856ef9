// Package formulas holds the statistical helpers shared by the aggregator
// and the presentation layer.
package formulas

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// PopMeanStdDev returns the mean and the population standard deviation
// (divides by n, not n-1).
func PopMeanStdDev(data []float64) (float64, float64) {
	if len(data) == 0 {
		return 0, 0
	}
	mean, variance := stat.PopMeanVariance(data, nil)
	// The compensated sum can land a hair below zero for constant input.
	if variance < 0 || math.IsNaN(variance) {
		variance = 0
	}
	return mean, math.Sqrt(variance)
}

// PopStdDev calculates the population standard deviation
func PopStdDev(data []float64) float64 {
	_, std := PopMeanStdDev(data)
	return std
}

// Percentile returns the p-quantile (p in [0,1]) of data, interpolating
// linearly between the closest ranks at position (n-1)*p. The median of an
// even sample is the mean of the two middle values. data is not modified.
func Percentile(data []float64, p float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)
	return sortedPercentile(sorted, p)
}

// sortedPercentile expects sorted ascending and non-empty.
// stat.Quantile's LinInterp places sample i at (i+1)/n, which shifts every
// band away from the closest-ranks definition.
func sortedPercentile(sorted []float64, p float64) float64 {
	p = math.Max(0, math.Min(1, p))
	h := float64(len(sorted)-1) * p
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

// Scaled returns a copy of data multiplied by factor.
func Scaled(data []float64, factor float64) []float64 {
	out := make([]float64, len(data))
	return floats.ScaleTo(out, factor, data)
}

// ColumnMeans averages a run-by-period matrix down its columns.
// All rows must have the same length.
func ColumnMeans(rows [][]float64) []float64 {
	m := toDense(rows)
	if m == nil {
		return nil
	}
	_, cols := m.Dims()
	out := make([]float64, cols)
	for j := 0; j < cols; j++ {
		out[j] = stat.Mean(mat.Col(nil, j, m), nil)
	}
	return out
}

// ColumnPercentiles returns the p-quantile of every column of a
// run-by-period matrix, with the interpolation of Percentile.
func ColumnPercentiles(rows [][]float64, p float64) []float64 {
	m := toDense(rows)
	if m == nil {
		return nil
	}
	_, cols := m.Dims()
	out := make([]float64, cols)
	for j := 0; j < cols; j++ {
		col := mat.Col(nil, j, m)
		sort.Float64s(col)
		out[j] = sortedPercentile(col, p)
	}
	return out
}

func toDense(rows [][]float64) *mat.Dense {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil
	}
	cols := len(rows[0])
	flat := make([]float64, 0, len(rows)*cols)
	for _, r := range rows {
		flat = append(flat, r...)
	}
	return mat.NewDense(len(rows), cols, flat)
}
