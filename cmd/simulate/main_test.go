package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/assetsim/internal/domain"
	"github.com/aristath/assetsim/internal/modules/charts"
	"github.com/aristath/assetsim/internal/modules/simulation"
)

func compare(t *testing.T) *simulation.Comparison {
	t.Helper()
	log := zerolog.Nop()
	svc := simulation.NewService(charts.NewService(log), simulation.Config{}, log)

	seed := uint64(7)
	cmp, err := svc.Compare(context.Background(), simulation.Request{
		Parameters: domain.DefaultParameters(),
		Runs:       20,
		Years:      3,
		Seed:       &seed,
	})
	require.NoError(t, err)
	return cmp
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, compare(t))

	out := buf.String()
	assert.Contains(t, out, "20 runs x 3 years (seed=7)")
	assert.Contains(t, out, "Without reinvestment")
	assert.Contains(t, out, "With reinvestment")
	assert.Contains(t, out, "Return 3Y")
	for _, name := range domain.AllAssets {
		assert.Contains(t, out, string(name))
	}
}

func TestWriteResults(t *testing.T) {
	cmp := compare(t)
	results := buildResults(cmp, domain.DefaultParameters())

	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, writeResults(path, results))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Contains(t, doc, "meta")
	assert.Contains(t, doc, "pnl")
	assert.Contains(t, doc, "simulation")
	assert.Contains(t, doc, "trajectories")

	var meta Meta
	require.NoError(t, json.Unmarshal(doc["meta"], &meta))
	assert.Equal(t, resultsVersion, meta.Version)
	assert.Equal(t, 20, meta.NRuns)
	assert.Equal(t, 3, meta.NYears)
	assert.Equal(t, uint64(7), meta.Seed)

	for _, name := range domain.AllAssets {
		traj := results.Trajectories.Data[name]
		require.Len(t, traj, trajectoryRuns, name)
		assert.Len(t, traj[0], 3)
	}
	assert.Len(t, results.Simulation.WithoutReinvest, 3)
	assert.Len(t, results.Simulation.WithReinvest, 3)
}

func TestBuildResults_TrajectoriesIgnoreBatchSeed(t *testing.T) {
	cmp := compare(t)

	a := buildResults(cmp, domain.DefaultParameters())
	b := buildResults(cmp, domain.DefaultParameters())

	assert.Equal(t, a.Trajectories.Data, b.Trajectories.Data)
}
