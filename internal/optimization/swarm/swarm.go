// Package swarm implements particle swarm optimization with inertia,
// cognitive, and social velocity terms.
package swarm

import (
	"context"
	"math"
	"math/rand"

	"github.com/copyleftdev/TAIGA/internal/optimization"
)

// velocityCap limits each velocity component to this fraction of the
// dimension's range, bounding divergence.
const velocityCap = 0.2

// Config holds the PSO hyperparameters.
type Config struct {
	// SwarmSize is the number of particles.
	SwarmSize int `json:"swarmSize"`

	// Iterations is the number of movement steps.
	Iterations int `json:"iterations"`

	// InertiaWeight damps the previous velocity.
	InertiaWeight float64 `json:"inertiaWeight"`

	// CognitiveWeight pulls a particle toward its personal best.
	CognitiveWeight float64 `json:"cognitiveWeight"`

	// SocialWeight pulls a particle toward the global best.
	SocialWeight float64 `json:"socialWeight"`

	// Seed for the run's random source. Zero means time-seeded.
	Seed int64 `json:"seed,omitempty"`
}

// DefaultConfig returns the constriction-style weights common in the PSO
// literature.
func DefaultConfig() Config {
	return Config{
		SwarmSize:       30,
		Iterations:      100,
		InertiaWeight:   0.729,
		CognitiveWeight: 1.49445,
		SocialWeight:    1.49445,
	}
}

// Optimizer runs one PSO search over one problem.
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
	if cfg.SwarmSize <= 0 {
		return nil, optimization.NewError("swarm size must be positive").WithComponent("swarm")
	}
	if cfg.Iterations <= 0 {
		return nil, optimization.NewError("iterations must be positive").WithComponent("swarm")
	}
	return &Optimizer{
		problem: problem,
		cfg:     cfg,
		rng:     optimization.NewRand(cfg.Seed),
	}, nil
}

// Optimize evaluates the initial swarm once and then moves it for the
// configured number of iterations, so the objective is called exactly
// SwarmSize*(Iterations+1) times. Positions are clamped at the boundary
// rather than reflected, so particles can stick to a bound.
func (o *Optimizer) Optimize(ctx context.Context) (*optimization.Result, error) {
	p, cfg := o.problem, o.cfg
	tracker := optimization.NewTracker(p)

	positions := p.InitPopulation(cfg.SwarmSize, o.rng)
	velocities := make([][]float64, cfg.SwarmSize)
	pbest := make([][]float64, cfg.SwarmSize)
	pbestFit := make([]float64, cfg.SwarmSize)

	for i, pos := range positions {
		velocities[i] = make([]float64, p.Dimensions)
		pbest[i] = optimization.CopyCandidate(pos)
		pbestFit[i] = tracker.Evaluate(pos)
	}

	for iter := 0; iter < cfg.Iterations; iter++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		gbest := o.globalBest(tracker, pbest)

		for i := range positions {
			for d := range positions[i] {
				span := p.Bounds[d].Span()
				vmax := velocityCap * span
				r1, r2 := o.rng.Float64(), o.rng.Float64()

				v := cfg.InertiaWeight*velocities[i][d] +
					cfg.CognitiveWeight*r1*(pbest[i][d]-positions[i][d]) +
					cfg.SocialWeight*r2*(gbest[d]-positions[i][d])
				velocities[i][d] = math.Max(-vmax, math.Min(v, vmax))
				positions[i][d] += velocities[i][d]
			}
			p.Clamp(positions[i])

			f := tracker.Evaluate(positions[i])
			if p.Better(f, pbestFit[i]) {
				pbestFit[i] = f
				copy(pbest[i], positions[i])
			}
		}
		tracker.Record()
	}

	return tracker.Result(cfg.Iterations), nil
}

// globalBest snapshots the run's best position for this iteration's social
// pull. Until a finite fitness has been seen it falls back to the first
// personal best so the velocity update stays defined.
func (o *Optimizer) globalBest(tracker *optimization.Tracker, pbest [][]float64) []float64 {
	if best, _ := tracker.Best(); best != nil {
		return optimization.CopyCandidate(best)
	}
	return optimization.CopyCandidate(pbest[0])
}
