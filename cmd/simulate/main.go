// Command simulate runs the default comparison from the command line: the
// theoretical P&L of every asset, then a batch without and with reinvestment
// from the same seed. With -out the full result is exported as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aristath/assetsim/internal/domain"
	"github.com/aristath/assetsim/internal/modules/charts"
	"github.com/aristath/assetsim/internal/modules/engine"
	"github.com/aristath/assetsim/internal/modules/pnl"
	"github.com/aristath/assetsim/internal/modules/simulation"
	"github.com/aristath/assetsim/internal/modules/statistics"
	"github.com/aristath/assetsim/pkg/logger"
)

const (
	resultsVersion = "2.1"

	// Sample revenue trajectories exported for charting
	trajectoryRuns = 30
	trajectorySeed = 123
)

// Results is the exported document
type Results struct {
	Meta         Meta                            `json:"meta"`
	PnL          map[domain.AssetName]pnl.Result `json:"pnl"`
	Simulation   Modes                           `json:"simulation"`
	Trajectories Trajectories                    `json:"trajectories"`
}

// Meta describes the batch
type Meta struct {
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
	NRuns     int    `json:"n_runs"`
	NYears    int    `json:"n_years"`
	Seed      uint64 `json:"seed"`
}

// Modes holds the statistics of both reinvestment modes
type Modes struct {
	WithoutReinvest map[domain.AssetName]*statistics.AssetStatistics `json:"without_reinvest"`
	WithReinvest    map[domain.AssetName]*statistics.AssetStatistics `json:"with_reinvest"`
}

// Trajectories holds raw yearly revenue runs without reinvestment
type Trajectories struct {
	Meta TrajectoryMeta                   `json:"meta"`
	Data map[domain.AssetName][][]float64 `json:"data"`
}

// TrajectoryMeta describes the trajectory batch
type TrajectoryMeta struct {
	Seed  uint64 `json:"seed"`
	NRuns int    `json:"n_runs"`
	Mode  string `json:"mode"`
}

func main() {
	runs := flag.Int("runs", simulation.DefaultRuns, "Runs per asset and mode")
	years := flag.Int("years", simulation.DefaultYears, "Simulated years")
	seed := flag.Uint64("seed", 42, "Random seed (0 draws one)")
	out := flag.String("out", "", "Write the full result as JSON to this path")
	logLevel := flag.String("log-level", "warn", "Log level (debug, info, warn, error)")
	flag.Parse()

	log := logger.New(logger.Config{
		Level:  *logLevel,
		Pretty: true,
		Output: os.Stderr,
	})

	service := simulation.NewService(charts.NewService(log), simulation.Config{}, log)

	req := simulation.Request{
		Parameters: domain.DefaultParameters(),
		Runs:       *runs,
		Years:      *years,
	}
	if *seed != 0 {
		req.Seed = seed
	}

	cmp, err := service.Compare(context.Background(), req)
	if err != nil {
		log.Fatal().Err(err).Msg("Simulation failed")
	}

	printReport(os.Stdout, cmp)

	if *out == "" {
		return
	}

	results := buildResults(cmp, req.Parameters)
	if err := writeResults(*out, results); err != nil {
		log.Fatal().Err(err).Str("path", *out).Msg("Failed to write results")
	}
	fmt.Printf("\n%s written (2 modes + %d trajectories)\n", *out, trajectoryRuns)
}

func printReport(w io.Writer, cmp *simulation.Comparison) {
	rule := strings.Repeat("=", 80)
	line := strings.Repeat("-", 60)

	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Monte Carlo: %d runs x %d years (seed=%d)\n", cmp.Runs, cmp.Years, cmp.Seed)
	fmt.Fprintln(w, rule)

	fmt.Fprintln(w, "\nTheoretical P&L (no risk):")
	fmt.Fprintln(w, line)
	for _, name := range domain.AllAssets {
		p, ok := cmp.PnL[name]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%-12s profit/unit/cycle=%12.0f  return/year=%7.1f%%  events=%d\n",
			name, p.ProfitUnitCycle, p.ReturnYear*100, p.EventsYear)
	}

	printMode(w, "Without reinvestment (cap = initial units):", cmp.WithoutReinvest, cmp.Years)
	printMode(w, "With reinvestment (no cap):", cmp.WithReinvest, cmp.Years)
}

func printMode(w io.Writer, title string, report *simulation.Report, years int) {
	line := strings.Repeat("-", 60)

	fmt.Fprintf(w, "\n%s\n", title)
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "%-12s %-12s %-12s %-10s %-8s\n", "Asset", fmt.Sprintf("Return %dY", years), "Volatility", fmt.Sprintf("Units Y%d", years), "Ratio")
	fmt.Fprintln(w, line)
	for _, name := range domain.AllAssets {
		st, ok := report.Statistics[name]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%-12s %10.1f%% %10.1f%% %10.1f %8s\n",
			name, st.MeanReturn, st.Volatility, st.UnitsFinalMean, charts.FormatRatio(charts.ReturnRiskRatio(st)))
	}
}

// buildResults assembles the export. The trajectory batch is drawn from its
// own fixed seed so the exported samples are stable across -seed values.
func buildResults(cmp *simulation.Comparison, params domain.SimulationParameters) *Results {
	raw := engine.New(engine.NewSeededSource(trajectorySeed)).
		Simulate(params.WithDefaults().WithReinvest(false), trajectoryRuns, cmp.Years)

	data := make(map[domain.AssetName][][]float64, len(raw))
	for name, res := range raw {
		data[name] = res.RevenueTrajectories
	}

	return &Results{
		Meta: Meta{
			Version:   resultsVersion,
			Timestamp: cmp.GeneratedAt.Format(time.RFC3339),
			NRuns:     cmp.Runs,
			NYears:    cmp.Years,
			Seed:      cmp.Seed,
		},
		PnL: cmp.PnL,
		Simulation: Modes{
			WithoutReinvest: cmp.WithoutReinvest.Statistics,
			WithReinvest:    cmp.WithReinvest.Statistics,
		},
		Trajectories: Trajectories{
			Meta: TrajectoryMeta{Seed: trajectorySeed, NRuns: trajectoryRuns, Mode: "without_reinvest"},
			Data: data,
		},
	}
}

func writeResults(path string, results *Results) error {
	payload, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	if err := os.WriteFile(path, payload, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
