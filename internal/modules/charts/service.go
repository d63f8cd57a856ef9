// Package charts turns simulation statistics into the series the UI plots:
// mean wealth per year, the risk/return scatter, revenue fans and the
// summary table.
package charts

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/aristath/assetsim/internal/domain"
	"github.com/aristath/assetsim/internal/modules/statistics"
	"github.com/aristath/assetsim/pkg/formulas"
)

// Million converts currency amounts to the M FCFA unit used on every axis.
const Million = 1e6

// SelectAll selects every asset in revenue charts
const SelectAll = "all"

// ErrUnknownAsset is returned when a revenue chart is requested for an
// asset that does not exist.
var ErrUnknownAsset = errors.New("unknown asset")

// Labels are the display names of the assets
var Labels = map[domain.AssetName]string{
	domain.AssetRealEstate: "Immobilier",
	domain.AssetLivestock:  "Bétail",
	domain.AssetFattening:  "Embouche",
}

// Colors are the series colors of the assets
var Colors = map[domain.AssetName]string{
	domain.AssetRealEstate: "#27ae60",
	domain.AssetLivestock:  "#3498db",
	domain.AssetFattening:  "#e74c3c",
}

// WealthPoint is the mean wealth of every asset at one year, in millions
type WealthPoint struct {
	Year       int     `json:"year"`
	RealEstate float64 `json:"immobilier"`
	Livestock  float64 `json:"betail"`
	Fattening  float64 `json:"embouche"`
}

// BandSeries is a mean line with its p10/p90 envelope, in millions
type BandSeries struct {
	Asset domain.AssetName `json:"asset"`
	Label string           `json:"label"`
	Color string           `json:"color"`
	Mean  []float64        `json:"mean"`
	P10   []float64        `json:"p10"`
	P90   []float64        `json:"p90"`
}

// ScatterPoint places an asset on the risk/return plane (both in %)
type ScatterPoint struct {
	Asset domain.AssetName `json:"asset"`
	Name  string           `json:"name"`
	X     float64          `json:"x"` // volatility
	Y     float64          `json:"y"` // mean return
	Color string           `json:"color"`
}

// RevenueSeries holds the sample and mean revenue lines of one asset for
// years 1..n, in millions.
type RevenueSeries struct {
	Asset   domain.AssetName `json:"asset"`
	Label   string           `json:"label"`
	Color   string           `json:"color"`
	Samples [][]float64      `json:"samples"`
	Mean    []float64        `json:"mean"`
}

// RevenueChart is the fan of revenue trajectories
type RevenueChart struct {
	Years  []int           `json:"years"`
	Series []RevenueSeries `json:"series"`
}

// SummaryRow is one line of the results table
type SummaryRow struct {
	Asset           domain.AssetName `json:"asset"`
	Label           string           `json:"label"`
	Color           string           `json:"color"`
	InitialCapital  float64          `json:"initial_capital_m"`
	MeanWealth      float64          `json:"mean_wealth_m"`
	MeanReturn      float64          `json:"mean_return"`
	Volatility      float64          `json:"volatility"`
	ReturnRiskRatio *float64         `json:"return_risk_ratio"`
	UnitsFinalMean  float64          `json:"units_final_mean"`
}

// ChartData bundles every chart of a simulation report
type ChartData struct {
	Wealth      []WealthPoint  `json:"wealth"`
	WealthBands []BandSeries   `json:"wealth_bands"`
	Scatter     []ScatterPoint `json:"scatter"`
	Revenue     RevenueChart   `json:"revenue"`
	Summary     []SummaryRow   `json:"summary"`
}

// Service builds chart data
type Service struct {
	log zerolog.Logger
}

// NewService creates a new charts service
func NewService(log zerolog.Logger) *Service {
	return &Service{
		log: log.With().Str("service", "charts").Logger(),
	}
}

// Build derives every chart from stats. selected limits the revenue chart
// to one asset; empty or SelectAll shows all of them.
func (s *Service) Build(stats map[domain.AssetName]*statistics.AssetStatistics, nYears int, selected string) (*ChartData, error) {
	revenueAssets, err := selectAssets(selected)
	if err != nil {
		return nil, err
	}

	data := &ChartData{
		Wealth:      WealthSeries(stats, nYears),
		WealthBands: make([]BandSeries, 0, len(stats)),
		Scatter:     make([]ScatterPoint, 0, len(stats)),
		Revenue:     RevenueChart{Years: make([]int, 0, nYears), Series: make([]RevenueSeries, 0, len(revenueAssets))},
		Summary:     make([]SummaryRow, 0, len(stats)),
	}
	for year := 1; year <= nYears; year++ {
		data.Revenue.Years = append(data.Revenue.Years, year)
	}

	for _, name := range domain.AllAssets {
		st, ok := stats[name]
		if !ok {
			continue
		}
		data.WealthBands = append(data.WealthBands, BandSeries{
			Asset: name,
			Label: Labels[name],
			Color: Colors[name],
			Mean:  formulas.Scaled(st.MeanWealthTrajectory, 1/Million),
			P10:   formulas.Scaled(st.WealthBands.P10, 1/Million),
			P90:   formulas.Scaled(st.WealthBands.P90, 1/Million),
		})
		data.Scatter = append(data.Scatter, ScatterPoint{
			Asset: name,
			Name:  Labels[name],
			X:     st.Volatility,
			Y:     st.MeanReturn,
			Color: Colors[name],
		})
		data.Summary = append(data.Summary, summaryRow(name, st))
	}

	for _, name := range revenueAssets {
		st, ok := stats[name]
		if !ok {
			continue
		}
		data.Revenue.Series = append(data.Revenue.Series, revenueSeries(name, st, nYears))
	}

	s.log.Debug().
		Int("assets", len(stats)).
		Int("years", nYears).
		Str("selected", selected).
		Msg("Built chart data")

	return data, nil
}

// WealthSeries returns the mean wealth of every asset for years 0..nYears.
func WealthSeries(stats map[domain.AssetName]*statistics.AssetStatistics, nYears int) []WealthPoint {
	points := make([]WealthPoint, 0, nYears+1)
	for year := 0; year <= nYears; year++ {
		points = append(points, WealthPoint{
			Year:       year,
			RealEstate: meanWealthAt(stats[domain.AssetRealEstate], year),
			Livestock:  meanWealthAt(stats[domain.AssetLivestock], year),
			Fattening:  meanWealthAt(stats[domain.AssetFattening], year),
		})
	}
	return points
}

// ReturnRiskRatio is meanReturn/volatility, or nil when volatility is zero.
func ReturnRiskRatio(st *statistics.AssetStatistics) *float64 {
	if st == nil || st.Volatility == 0 {
		return nil
	}
	r := st.MeanReturn / st.Volatility
	return &r
}

// FormatRatio renders a ratio with two decimals, "-" when undefined.
func FormatRatio(r *float64) string {
	if r == nil {
		return "-"
	}
	return strconv.FormatFloat(*r, 'f', 2, 64)
}

func summaryRow(name domain.AssetName, st *statistics.AssetStatistics) SummaryRow {
	return SummaryRow{
		Asset:           name,
		Label:           Labels[name],
		Color:           Colors[name],
		InitialCapital:  st.InitialCapital / Million,
		MeanWealth:      st.MeanWealth / Million,
		MeanReturn:      st.MeanReturn,
		Volatility:      st.Volatility,
		ReturnRiskRatio: ReturnRiskRatio(st),
		UnitsFinalMean:  st.UnitsFinalMean,
	}
}

func revenueSeries(name domain.AssetName, st *statistics.AssetStatistics, nYears int) RevenueSeries {
	series := RevenueSeries{
		Asset:   name,
		Label:   Labels[name],
		Color:   Colors[name],
		Samples: make([][]float64, 0, len(st.SampleRevenueTrajectories)),
		Mean:    formulas.Scaled(truncate(st.MeanRevenueTrajectory, nYears), 1/Million),
	}
	for _, traj := range st.SampleRevenueTrajectories {
		series.Samples = append(series.Samples, formulas.Scaled(truncate(traj, nYears), 1/Million))
	}
	return series
}

func selectAssets(selected string) ([]domain.AssetName, error) {
	if selected == "" || selected == SelectAll {
		return domain.AllAssets, nil
	}
	name := domain.AssetName(selected)
	if !name.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAsset, selected)
	}
	return []domain.AssetName{name}, nil
}

func meanWealthAt(st *statistics.AssetStatistics, year int) float64 {
	if st == nil || year >= len(st.MeanWealthTrajectory) {
		return 0
	}
	return st.MeanWealthTrajectory[year] / Million
}

func truncate(values []float64, n int) []float64 {
	if len(values) > n {
		return values[:n]
	}
	return values
}
