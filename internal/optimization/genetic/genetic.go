// Package genetic implements a generational genetic algorithm with elitism,
// tournament selection, single-point crossover, and bounded per-coordinate
// mutation.
package genetic

import (
	"context"
	"math/rand"
	"sort"

	"github.com/copyleftdev/TAIGA/internal/optimization"
)

// Config holds the GA hyperparameters.
type Config struct {
	// PopulationSize is the number of individuals per generation.
	PopulationSize int `json:"populationSize"`

	// Generations is the number of generational cycles to run.
	Generations int `json:"generations"`

	// MutationRate is the per-coordinate mutation probability.
	MutationRate float64 `json:"mutationRate"`

	// CrossoverRate is the probability of single-point crossover between
	// two selected parents.
	CrossoverRate float64 `json:"crossoverRate"`

	// ElitismRate is the fraction of top-ranked individuals copied
	// unchanged into the next generation.
	ElitismRate float64 `json:"elitismRate"`

	// TournamentSize is the number of individuals drawn per selection
	// tournament.
	TournamentSize int `json:"tournamentSize"`

	// Seed for the run's random source. Zero means time-seeded.
	Seed int64 `json:"seed,omitempty"`
}

// DefaultConfig returns a configuration that behaves well on the benchmark
// objectives.
func DefaultConfig() Config {
	return Config{
		PopulationSize: 50,
		Generations:    100,
		MutationRate:   0.1,
		CrossoverRate:  0.8,
		ElitismRate:    0.1,
		TournamentSize: 3,
	}
}

// Optimizer runs one GA search over one problem.
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
		return nil, optimization.NewError("population size must be positive").WithComponent("genetic")
	}
	if cfg.Generations <= 0 {
		return nil, optimization.NewError("generations must be positive").WithComponent("genetic")
	}
	if cfg.TournamentSize <= 0 {
		return nil, optimization.NewError("tournament size must be positive").WithComponent("genetic")
	}
	if cfg.ElitismRate < 0 || cfg.ElitismRate > 1 {
		return nil, optimization.NewError("elitism rate must lie in [0, 1]").WithComponent("genetic")
	}
	return &Optimizer{
		problem: problem,
		cfg:     cfg,
		rng:     optimization.NewRand(cfg.Seed),
	}, nil
}

// Optimize runs the generational loop. The global best is tracked
// independently of population rank, so it never worsens even though the
// population itself is not monotonic.
func (o *Optimizer) Optimize(ctx context.Context) (*optimization.Result, error) {
	p, cfg := o.problem, o.cfg
	tracker := optimization.NewTracker(p)

	pop := p.InitPopulation(cfg.PopulationSize, o.rng)
	fitness := make([]float64, cfg.PopulationSize)
	eliteCount := int(float64(cfg.PopulationSize) * cfg.ElitismRate)

	for gen := 0; gen < cfg.Generations; gen++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		for i, ind := range pop {
			fitness[i] = tracker.Evaluate(ind)
		}
		tracker.Record()

		order := rankByFitness(p, fitness)

		next := make([][]float64, 0, cfg.PopulationSize)
		for _, idx := range order[:eliteCount] {
			next = append(next, optimization.CopyCandidate(pop[idx]))
		}
		for len(next) < cfg.PopulationSize {
			p1 := pop[o.tournament(fitness)]
			p2 := pop[o.tournament(fitness)]
			next = append(next, o.offspring(p1, p2))
		}
		pop = next
	}

	return tracker.Result(cfg.Generations), nil
}

// rankByFitness returns population indices ordered best-first. Non-finite
// fitness values sort last.
func rankByFitness(p *optimization.Problem, fitness []float64) []int {
	order := make([]int, len(fitness))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return p.Better(fitness[order[a]], fitness[order[b]])
	})
	return order
}

// tournament draws TournamentSize individuals and returns the index of the
// fittest.
func (o *Optimizer) tournament(fitness []float64) int {
	best := o.rng.Intn(len(fitness))
	for i := 1; i < o.cfg.TournamentSize; i++ {
		cand := o.rng.Intn(len(fitness))
		if o.problem.Better(fitness[cand], fitness[best]) {
			best = cand
		}
	}
	return best
}

// offspring breeds one child from two parents. If the constraint keeps
// rejecting the child, the first parent is carried over unchanged after
// MaxConstraintRetries attempts.
func (o *Optimizer) offspring(p1, p2 []float64) []float64 {
	for attempt := 0; attempt < optimization.MaxConstraintRetries; attempt++ {
		child := o.crossover(p1, p2)
		o.mutate(child)
		o.problem.Clamp(child)
		if o.problem.Feasible(child) {
			return child
		}
	}
	return optimization.CopyCandidate(p1)
}

// crossover performs single-point crossover with probability CrossoverRate.
// One-dimensional problems have no interior cut point and pass the first
// parent through.
func (o *Optimizer) crossover(p1, p2 []float64) []float64 {
	child := optimization.CopyCandidate(p1)
	if len(child) > 1 && o.rng.Float64() < o.cfg.CrossoverRate {
		point := 1 + o.rng.Intn(len(child)-1)
		copy(child[point:], p2[point:])
	}
	return child
}

// mutate perturbs each coordinate with probability MutationRate by a
// uniform(-0.5, 0.5) step scaled to 10% of that dimension's range.
func (o *Optimizer) mutate(x []float64) {
	for d := range x {
		if o.rng.Float64() < o.cfg.MutationRate {
			span := o.problem.Bounds[d].Span()
			x[d] += (o.rng.Float64() - 0.5) * 0.1 * span
		}
	}
}
