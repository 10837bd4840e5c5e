package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/copyleftdev/TAIGA/internal/config"
	"github.com/copyleftdev/TAIGA/internal/optimization"
	"github.com/copyleftdev/TAIGA/internal/optimization/registry"
)

func registryConfig(algorithm string, seed int64) registry.Config {
	return registry.Config{Algorithm: algorithm, Seed: seed}
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Optimization.MaxConcurrentRuns = 4

	srv := NewServer(cfg, zap.NewNop())
	t.Cleanup(func() { _ = srv.Close() })

	r := chi.NewRouter()
	srv.RegisterRoutes(r)

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return srv, ts
}

func postJSON(t *testing.T, url string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func startRun(t *testing.T, ts *httptest.Server, body map[string]interface{}) string {
	t.Helper()

	resp, decoded := postJSON(t, ts.URL+"/api/v1/optimize", body)
	require.Equal(t, http.StatusAccepted, resp.StatusCode, "start response: %v", decoded)

	id, _ := decoded["run_id"].(string)
	require.NotEmpty(t, id)
	return id
}

func awaitStatus(t *testing.T, ts *httptest.Server, id, want string) map[string]interface{} {
	t.Helper()

	var last map[string]interface{}
	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("%s/api/v1/status/%s", ts.URL, id))
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return false
		}
		last = map[string]interface{}{}
		if err := json.NewDecoder(resp.Body).Decode(&last); err != nil {
			return false
		}
		return last["status"] == want
	}, 10*time.Second, 10*time.Millisecond, "run %s never reached status %s (last: %v)", id, want, last)
	return last
}

func TestOptimizeLifecycle(t *testing.T) {
	_, ts := newTestServer(t)

	id := startRun(t, ts, map[string]interface{}{
		"algorithm": "pso",
		"objective": "sphere",
		"seed":      42,
	})

	status := awaitStatus(t, ts, id, StatusCompleted)

	result, ok := status["result"].(map[string]interface{})
	require.True(t, ok, "completed run must carry a result")
	assert.True(t, result["success"].(bool))
	assert.Less(t, result["fitness"].(float64), 1.0)
	assert.NotEmpty(t, status["endTime"])
}

func TestOptimizeAllAlgorithms(t *testing.T) {
	_, ts := newTestServer(t)

	for _, alg := range []string{"ga", "pso", "sa", "de", "nelder-mead", "aco"} {
		t.Run(alg, func(t *testing.T) {
			id := startRun(t, ts, map[string]interface{}{
				"algorithm": alg,
				"objective": "sphere",
				"seed":      7,
			})
			awaitStatus(t, ts, id, StatusCompleted)
		})
	}
}

func TestOptimizeValidation(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"unknown objective", map[string]interface{}{"algorithm": "ga", "objective": "nope"}},
		{"unknown algorithm", map[string]interface{}{"algorithm": "nope", "objective": "sphere"}},
		{"bounds mismatch", map[string]interface{}{
			"algorithm": "ga", "objective": "sphere", "dimensions": 2,
			"bounds": []map[string]float64{{"min": 0, "max": 1}},
		}},
		{"inverted bounds", map[string]interface{}{
			"algorithm": "ga", "objective": "sphere", "dimensions": 1,
			"bounds": []map[string]float64{{"min": 5, "max": -5}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, decoded := postJSON(t, ts.URL+"/api/v1/optimize", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, decoded, "error")
		})
	}
}

func TestStartWrapsObjectiveErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	_, err := srv.start(&OptimizeRequest{
		Config:    registryConfig("ga", 1),
		Objective: "nope",
	})
	require.Error(t, err)

	optErr, ok := optimization.IsOptimizationError(err)
	require.True(t, ok)
	assert.Equal(t, "server", optErr.Component)
	assert.Contains(t, err.Error(), "unknown objective")
}

func TestOptimizeCustomBounds(t *testing.T) {
	_, ts := newTestServer(t)

	// Constrain the sphere to [2, 5]^2: the optimum sits on the corner.
	id := startRun(t, ts, map[string]interface{}{
		"algorithm":  "pso",
		"objective":  "sphere",
		"dimensions": 2,
		"seed":       42,
		"bounds": []map[string]float64{
			{"min": 2, "max": 5},
			{"min": 2, "max": 5},
		},
	})

	status := awaitStatus(t, ts, id, StatusCompleted)
	result := status["result"].(map[string]interface{})
	assert.InDelta(t, 8.0, result["fitness"].(float64), 0.5)
}

func TestStatusNotFound(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/status/no-such-run")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCancel(t *testing.T) {
	srv, ts := newTestServer(t)

	// A slow objective keeps the run alive long enough to cancel it.
	state, err := srv.start(&OptimizeRequest{
		Config:    registryConfig("ga", 1),
		Objective: "rastrigin",
	})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodDelete,
		fmt.Sprintf("%s/api/v1/optimization/%s", ts.URL, state.ID), nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	// Either the cancel landed first or the run completed first; both are
	// coherent outcomes for a fast run.
	if resp.StatusCode == http.StatusOK {
		snapshot, err := srv.status(state.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, snapshot.Status)
	} else {
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}
}

func TestCancelTerminalRun(t *testing.T) {
	srv, ts := newTestServer(t)

	id := startRun(t, ts, map[string]interface{}{
		"algorithm": "pso",
		"objective": "sphere",
		"seed":      1,
	})
	awaitStatus(t, ts, id, StatusCompleted)

	require.Error(t, srv.cancelRun(id))
}

func TestConcurrencyLimit(t *testing.T) {
	cfg := &config.Config{}
	cfg.Optimization.MaxConcurrentRuns = 1

	srv := NewServer(cfg, zap.NewNop())
	t.Cleanup(func() { _ = srv.Close() })

	// Fill the only slot manually so the next submission must be refused.
	srv.sem <- struct{}{}

	_, err := srv.start(&OptimizeRequest{
		Config:    registryConfig("ga", 1),
		Objective: "sphere",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many concurrent runs")

	<-srv.sem
}

func TestAlgorithmsEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/algorithms")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var decoded map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	assert.Contains(t, decoded["algorithms"], "genetic")
	assert.Contains(t, decoded["algorithms"], "simplex")
}

func TestObjectivesEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/objectives")
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	assert.Contains(t, decoded["objectives"], "sphere")
	assert.Contains(t, decoded["objectives"], "eggholder")
}
