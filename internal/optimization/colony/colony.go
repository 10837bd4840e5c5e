// Package colony implements a continuous adaptation of ant colony
// optimization. Ants sample candidates uniformly within the bounds while an
// n×n pheromone matrix records deposit/evaporation bookkeeping over
// consecutive dimension pairs.
//
// The trails are tracked but deliberately do not bias candidate
// construction; treat the matrix as observable state, not as a search
// heuristic, before reusing this package elsewhere.
package colony

import (
	"context"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/copyleftdev/TAIGA/internal/optimization"
)

// initialPheromone seeds every cell of the trail matrix.
const initialPheromone = 1.0

// Config holds the ACO hyperparameters.
type Config struct {
	// NumAnts is the number of candidates constructed per iteration.
	NumAnts int `json:"numAnts"`

	// Iterations is the number of construction/update cycles.
	Iterations int `json:"iterations"`

	// Alpha is the classical pheromone exponent. Construction samples
	// uniformly and does not read the trails, so it currently has no
	// effect on the search.
	Alpha float64 `json:"alpha"`

	// Beta is the classical heuristic exponent; unused for the same
	// reason as Alpha.
	Beta float64 `json:"beta"`

	// Evaporation is the per-iteration trail decay fraction in [0, 1).
	Evaporation float64 `json:"evaporation"`

	// Q scales each ant's deposit of Q/(1+|fitness|).
	Q float64 `json:"q"`

	// Seed for the run's random source. Zero means time-seeded.
	Seed int64 `json:"seed,omitempty"`
}

// DefaultConfig returns the conventional ant-system parameters.
func DefaultConfig() Config {
	return Config{
		NumAnts:     20,
		Iterations:  100,
		Alpha:       1.0,
		Beta:        2.0,
		Evaporation: 0.1,
		Q:           1.0,
	}
}

// Optimizer runs one colony search over one problem.
type Optimizer struct {
	problem   *optimization.Problem
	cfg       Config
	rng       *rand.Rand
	pheromone *mat.Dense
}

var _ optimization.Optimizer = (*Optimizer)(nil)

// New validates the problem and configuration and prepares a run.
func New(problem *optimization.Problem, cfg Config) (*Optimizer, error) {
	if err := problem.Validate(); err != nil {
		return nil, err
	}
	if cfg.NumAnts <= 0 {
		return nil, optimization.NewError("number of ants must be positive").WithComponent("colony")
	}
	if cfg.Iterations <= 0 {
		return nil, optimization.NewError("iterations must be positive").WithComponent("colony")
	}
	if cfg.Evaporation < 0 || cfg.Evaporation >= 1 {
		return nil, optimization.NewError("evaporation must lie in [0, 1)").WithComponent("colony")
	}

	n := problem.Dimensions
	trails := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			trails.Set(i, j, initialPheromone)
		}
	}

	return &Optimizer{
		problem:   problem,
		cfg:       cfg,
		rng:       optimization.NewRand(cfg.Seed),
		pheromone: trails,
	}, nil
}

// Optimize runs the fixed number of iterations, evaluating NumAnts
// candidates in each.
func (o *Optimizer) Optimize(ctx context.Context) (*optimization.Result, error) {
	p, cfg := o.problem, o.cfg
	tracker := optimization.NewTracker(p)

	ants := make([][]float64, cfg.NumAnts)
	fits := make([]float64, cfg.NumAnts)

	for iter := 0; iter < cfg.Iterations; iter++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		for a := range ants {
			ants[a] = p.FeasibleCandidate(o.rng)
			fits[a] = tracker.Evaluate(ants[a])
		}
		tracker.Record()
		o.updateTrails(fits)
	}

	return tracker.Result(cfg.Iterations), nil
}

// updateTrails evaporates the whole matrix and deposits each ant's reward
// onto the cells indexed by consecutive dimension pairs, treating dimension
// indices as path nodes. One-dimensional problems have no pairs and only
// evaporate. Ants with non-finite fitness deposit nothing.
func (o *Optimizer) updateTrails(fits []float64) {
	n := o.problem.Dimensions
	o.pheromone.Scale(1-o.cfg.Evaporation, o.pheromone)

	for _, f := range fits {
		if !optimization.IsFinite(f) {
			continue
		}
		deposit := o.cfg.Q / (1 + math.Abs(f))
		for d := 0; d+1 < n; d++ {
			o.pheromone.Set(d, d+1, o.pheromone.At(d, d+1)+deposit)
		}
	}
}

// Pheromone exposes the trail matrix for inspection.
func (o *Optimizer) Pheromone() mat.Matrix {
	return o.pheromone
}
