package diffevo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/TAIGA/internal/optimization"
)

func sphereProblem(dims int) *optimization.Problem {
	bounds := make([]optimization.Bound, dims)
	for d := range bounds {
		bounds[d] = optimization.Bound{Min: -10, Max: 10}
	}
	return &optimization.Problem{
		Objective: func(x []float64) float64 {
			sum := 0.0
			for _, v := range x {
				sum += v * v
			}
			return sum
		},
		Dimensions: dims,
		Bounds:     bounds,
		Minimize:   true,
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Seed = 42
	return cfg
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *Config)
	}{
		{"zero population", func(cfg *Config) { cfg.PopulationSize = 0 }},
		{"population below donor minimum", func(cfg *Config) { cfg.PopulationSize = 3 }},
		{"zero generations", func(cfg *Config) { cfg.Generations = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)

			_, err := New(sphereProblem(2), cfg)
			require.Error(t, err)

			optErr, ok := optimization.IsOptimizationError(err)
			require.True(t, ok)
			assert.Equal(t, "diffevo", optErr.Component)
		})
	}
}

func TestOptimizeConvergesOnSphere(t *testing.T) {
	opt, err := New(sphereProblem(2), testConfig())
	require.NoError(t, err)

	res, err := opt.Optimize(context.Background())
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Less(t, res.Fitness, 1e-3, "DE converges tightly on smooth unimodal objectives")
}

func TestOptimizeBookkeeping(t *testing.T) {
	cfg := testConfig()
	cfg.PopulationSize = 10
	cfg.Generations = 25

	opt, err := New(sphereProblem(3), cfg)
	require.NoError(t, err)

	res, err := opt.Optimize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, cfg.Generations, res.Iterations)
	assert.Len(t, res.Convergence, cfg.Generations)
	// Unconstrained, every trial is evaluated.
	assert.Equal(t, cfg.PopulationSize*(cfg.Generations+1), res.Evaluations)

	for i := 1; i < len(res.Convergence); i++ {
		assert.LessOrEqual(t, res.Convergence[i], res.Convergence[i-1])
	}
}

func TestOptimizeEvaluationsWithConstraint(t *testing.T) {
	p := sphereProblem(2)
	p.Constraint = func(x []float64) bool { return x[0] >= 0 }

	cfg := testConfig()
	cfg.PopulationSize = 10
	cfg.Generations = 20

	opt, err := New(p, cfg)
	require.NoError(t, err)

	res, err := opt.Optimize(context.Background())
	require.NoError(t, err)

	// Rejected trials are not evaluated, so the count can only shrink.
	assert.LessOrEqual(t, res.Evaluations, cfg.PopulationSize*(cfg.Generations+1))
	assert.GreaterOrEqual(t, res.Solution[0], 0.0)
}

func TestOptimizeDeterminism(t *testing.T) {
	run := func() *optimization.Result {
		opt, err := New(sphereProblem(2), testConfig())
		require.NoError(t, err)
		res, err := opt.Optimize(context.Background())
		require.NoError(t, err)
		return res
	}

	a, b := run(), run()
	assert.Equal(t, a.Solution, b.Solution)
	assert.Equal(t, a.Fitness, b.Fitness)
	assert.Equal(t, a.Convergence, b.Convergence)
	assert.Equal(t, a.Evaluations, b.Evaluations)
}

func TestOptimizeDegenerateBounds(t *testing.T) {
	p := sphereProblem(2)
	p.Bounds[0] = optimization.Bound{Min: -1, Max: -1}
	p.Bounds[1] = optimization.Bound{Min: 2, Max: 2}

	cfg := testConfig()
	cfg.Generations = 5

	opt, err := New(p, cfg)
	require.NoError(t, err)

	res, err := opt.Optimize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, 2}, res.Solution)
	assert.Equal(t, 5.0, res.Fitness)
}

func TestOptimizeMaximize(t *testing.T) {
	p := sphereProblem(1)
	p.Minimize = false

	opt, err := New(p, testConfig())
	require.NoError(t, err)

	res, err := opt.Optimize(context.Background())
	require.NoError(t, err)

	assert.Greater(t, res.Fitness, 99.0)
	for i := 1; i < len(res.Convergence); i++ {
		assert.GreaterOrEqual(t, res.Convergence[i], res.Convergence[i-1])
	}
}

func TestOptimizeSolutionWithinBounds(t *testing.T) {
	p := sphereProblem(4)
	opt, err := New(p, testConfig())
	require.NoError(t, err)

	res, err := opt.Optimize(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Solution, 4)
	for d, v := range res.Solution {
		assert.GreaterOrEqual(t, v, p.Bounds[d].Min)
		assert.LessOrEqual(t, v, p.Bounds[d].Max)
	}
}

func TestPickDonorsDistinct(t *testing.T) {
	cfg := testConfig()
	cfg.PopulationSize = 4

	opt, err := New(sphereProblem(1), cfg)
	require.NoError(t, err)

	for i := 0; i < cfg.PopulationSize; i++ {
		for trial := 0; trial < 50; trial++ {
			a, b, c := opt.pickDonors(i)
			assert.NotEqual(t, i, a)
			assert.NotEqual(t, i, b)
			assert.NotEqual(t, i, c)
			assert.NotEqual(t, a, b)
			assert.NotEqual(t, a, c)
			assert.NotEqual(t, b, c)
		}
	}
}

func TestOptimizeCancellation(t *testing.T) {
	opt, err := New(sphereProblem(2), testConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := opt.Optimize(ctx)
	require.Error(t, err)
	assert.Nil(t, res)
}
