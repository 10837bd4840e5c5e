// Package diffevo implements differential evolution in the classic rand/1/bin
// configuration: vector-difference mutation and binomial crossover with
// greedy replacement.
package diffevo

import (
	"context"
	"math/rand"

	"github.com/copyleftdev/TAIGA/internal/optimization"
)

// minPopulation is the smallest population that still yields a target plus
// three pairwise-distinct donors.
const minPopulation = 4

// Config holds the DE hyperparameters.
type Config struct {
	// PopulationSize is the number of individuals. Must be at least 4.
	PopulationSize int `json:"populationSize"`

	// Generations is the number of replacement sweeps.
	Generations int `json:"generations"`

	// F is the differential weight applied to the donor difference.
	F float64 `json:"f"`

	// CR is the per-dimension crossover probability.
	CR float64 `json:"cr"`

	// Seed for the run's random source. Zero means time-seeded.
	Seed int64 `json:"seed,omitempty"`
}

// DefaultConfig returns the textbook rand/1/bin parameterization.
func DefaultConfig() Config {
	return Config{
		PopulationSize: 40,
		Generations:    100,
		F:              0.8,
		CR:             0.9,
	}
}

// Optimizer runs one DE search over one problem.
type Optimizer struct {
	problem *optimization.Problem
	cfg     Config
	rng     *rand.Rand
}

var _ optimization.Optimizer = (*Optimizer)(nil)

// New validates the problem and configuration and prepares a run.
func New(problem *optimization.Problem, cfg Config) (*Optimizer, error) {
	if err := problem.Validate(); err != nil {
		return nil, err
	}
	if cfg.PopulationSize <= 0 {
		return nil, optimization.NewError("population size must be positive").WithComponent("diffevo")
	}
	if cfg.PopulationSize < minPopulation {
		return nil, optimization.NewErrorf("population size must be at least %d", minPopulation).WithComponent("diffevo")
	}
	if cfg.Generations <= 0 {
		return nil, optimization.NewError("generations must be positive").WithComponent("diffevo")
	}
	return &Optimizer{
		problem: problem,
		cfg:     cfg,
		rng:     optimization.NewRand(cfg.Seed),
	}, nil
}

// Optimize evaluates the initial population and then runs the configured
// number of generations. A trial replaces its target only when it is at
// least as good, so every slot is monotone.
func (o *Optimizer) Optimize(ctx context.Context) (*optimization.Result, error) {
	p, cfg := o.problem, o.cfg
	tracker := optimization.NewTracker(p)

	pop := p.InitPopulation(cfg.PopulationSize, o.rng)
	fitness := make([]float64, cfg.PopulationSize)
	for i := range pop {
		fitness[i] = tracker.Evaluate(pop[i])
	}

	for gen := 0; gen < cfg.Generations; gen++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		for i := range pop {
			a, b, c := o.pickDonors(i)
			trial := o.trial(pop[i], pop[a], pop[b], pop[c])
			p.Clamp(trial)
			if !p.Feasible(trial) {
				// Infeasible trial: the target keeps its slot.
				continue
			}

			f := tracker.Evaluate(trial)
			if optimization.IsFinite(f) && !p.Better(fitness[i], f) {
				pop[i], fitness[i] = trial, f
			}
		}
		tracker.Record()
	}

	return tracker.Result(cfg.Generations), nil
}

// pickDonors draws three pairwise-distinct indices, all different from the
// target index i.
func (o *Optimizer) pickDonors(i int) (int, int, int) {
	n := o.cfg.PopulationSize
	a := o.rng.Intn(n)
	for a == i {
		a = o.rng.Intn(n)
	}
	b := o.rng.Intn(n)
	for b == i || b == a {
		b = o.rng.Intn(n)
	}
	c := o.rng.Intn(n)
	for c == i || c == a || c == b {
		c = o.rng.Intn(n)
	}
	return a, b, c
}

// trial builds the mutant a + F*(b-c) and crosses it into the target with
// probability CR per dimension. One forced dimension always comes from the
// mutant so the trial differs from the target.
func (o *Optimizer) trial(target, a, b, c []float64) []float64 {
	dims := len(target)
	trial := optimization.CopyCandidate(target)
	forced := o.rng.Intn(dims)
	for d := 0; d < dims; d++ {
		if d == forced || o.rng.Float64() < o.cfg.CR {
			trial[d] = a[d] + o.cfg.F*(b[d]-c[d])
		}
	}
	return trial
}
