package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/assetsim/internal/modules/charts"
	"github.com/aristath/assetsim/internal/modules/scenarios"
	"github.com/aristath/assetsim/internal/modules/simulation"
	testingpkg "github.com/aristath/assetsim/internal/testing"
)

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	log := zerolog.Nop()

	db := testingpkg.NewTestDB(t, "scenarios")
	repo := scenarios.NewRepository(db.Conn(), log)
	svc := simulation.NewService(charts.NewService(log), simulation.Config{Runs: 10, Years: 2}, log)

	router := chi.NewRouter()
	router.Route("/api/v1", NewHandler(repo, svc, log).RegisterRoutes)
	return router
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestScenarioLifecycle(t *testing.T) {
	router := newTestRouter(t)

	rec := do(router, http.MethodGet, "/api/v1/scenarios", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(router, http.MethodPost, "/api/v1/scenarios", `{"name": "quick", "description": "small batch", "request": {"runs": 15, "years": 2, "seed": 3}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(router, http.MethodGet, "/api/v1/scenarios/quick", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var s scenarios.Scenario
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, "small batch", s.Description)
	assert.Equal(t, 15, s.Request.Runs)

	rec = do(router, http.MethodPost, "/api/v1/scenarios/quick/run", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var report simulation.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 15, report.Runs)
	assert.Len(t, report.Statistics, 3)

	rec = do(router, http.MethodPost, "/api/v1/scenarios/quick/run?compare=true", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var cmp simulation.Comparison
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cmp))
	assert.Equal(t, uint64(3), cmp.Seed)
	require.NotNil(t, cmp.WithReinvest)

	rec = do(router, http.MethodDelete, "/api/v1/scenarios/quick", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(router, http.MethodGet, "/api/v1/scenarios/quick", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSave_Validation(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{"name": `},
		{"bad name", `{"name": "no spaces allowed"}`},
		{"runs above limit", `{"name": "big", "request": {"runs": 20000}}`},
		{"bad loss probability", `{"name": "risky", "request": {"parameters": {"assets": {"betail": {"unit_count": 4, "loss_probability": -0.5}}}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(router, http.MethodPost, "/api/v1/scenarios", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestSave_RejectsInvalidParameters(t *testing.T) {
	router := newTestRouter(t)

	body, err := json.Marshal(scenarios.Scenario{
		Name:    "invalid",
		Request: simulation.Request{Parameters: testingpkg.NewInvalidParameters()},
	})
	require.NoError(t, err)

	rec := do(router, http.MethodPost, "/api/v1/scenarios", string(body))
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = do(router, http.MethodGet, "/api/v1/scenarios/invalid", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotFound(t *testing.T) {
	router := newTestRouter(t)

	assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/api/v1/scenarios/missing", "").Code)
	assert.Equal(t, http.StatusNotFound, do(router, http.MethodDelete, "/api/v1/scenarios/missing", "").Code)
	assert.Equal(t, http.StatusNotFound, do(router, http.MethodPost, "/api/v1/scenarios/missing/run", "").Code)
}
