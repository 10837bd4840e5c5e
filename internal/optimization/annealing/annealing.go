// Package annealing implements simulated annealing with Metropolis
// acceptance and a geometric cooling schedule.
package annealing

import (
	"context"
	"math"
	"math/rand"

	"github.com/copyleftdev/TAIGA/internal/optimization"
)

// Config holds the SA hyperparameters.
type Config struct {
	// InitialTemperature is the starting temperature. Must exceed
	// MinTemperature.
	InitialTemperature float64 `json:"initialTemperature"`

	// CoolingRate multiplies the temperature after each cooling step.
	// Must lie in (0, 1) so the schedule terminates.
	CoolingRate float64 `json:"coolingRate"`

	// MinTemperature ends the run once the temperature falls to or below
	// it.
	MinTemperature float64 `json:"minTemperature"`

	// IterationsPerTemp is the number of trial moves per cooling step.
	IterationsPerTemp int `json:"iterationsPerTemp"`

	// Seed for the run's random source. Zero means time-seeded.
	Seed int64 `json:"seed,omitempty"`
}

// DefaultConfig returns a schedule of roughly 270 cooling steps.
func DefaultConfig() Config {
	return Config{
		InitialTemperature: 100,
		CoolingRate:        0.95,
		MinTemperature:     1e-4,
		IterationsPerTemp:  50,
	}
}

// Optimizer runs one annealing trajectory over one problem.
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
	if cfg.InitialTemperature <= cfg.MinTemperature {
		return nil, optimization.NewError("initial temperature must exceed minimum temperature").WithComponent("annealing")
	}
	if cfg.CoolingRate <= 0 || cfg.CoolingRate >= 1 {
		return nil, optimization.NewError("cooling rate must lie in (0, 1)").WithComponent("annealing")
	}
	if cfg.IterationsPerTemp <= 0 {
		return nil, optimization.NewError("iterations per temperature must be positive").WithComponent("annealing")
	}
	return &Optimizer{
		problem: problem,
		cfg:     cfg,
		rng:     optimization.NewRand(cfg.Seed),
	}, nil
}

// Optimize walks a single trajectory. The current point is free to wander
// uphill under the Metropolis rule while the tracker keeps the best point
// ever visited; one history entry is recorded per completed cooling step.
func (o *Optimizer) Optimize(ctx context.Context) (*optimization.Result, error) {
	p, cfg := o.problem, o.cfg
	tracker := optimization.NewTracker(p)

	current := p.FeasibleCandidate(o.rng)
	currentFit := tracker.Evaluate(current)

	steps := 0
	for temp := cfg.InitialTemperature; temp > cfg.MinTemperature; temp *= cfg.CoolingRate {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		for i := 0; i < cfg.IterationsPerTemp; i++ {
			neighbor := o.neighbor(current, temp)
			if neighbor == nil {
				continue
			}
			f := tracker.Evaluate(neighbor)
			if o.accept(currentFit, f, temp) {
				current, currentFit = neighbor, f
			}
		}
		tracker.Record()
		steps++
	}

	return tracker.Result(steps), nil
}

// neighbor perturbs one random dimension of x by a uniform(-0.5, 0.5) step
// scaled to 10% of that dimension's range and the current temperature, so
// moves shorten as the system cools. Returns nil when the constraint
// rejects every bounded retry; the trajectory then stays put for this
// trial.
func (o *Optimizer) neighbor(x []float64, temp float64) []float64 {
	for attempt := 0; attempt < optimization.MaxConstraintRetries; attempt++ {
		n := optimization.CopyCandidate(x)
		d := o.rng.Intn(len(n))
		span := o.problem.Bounds[d].Span()
		n[d] += (o.rng.Float64() - 0.5) * 0.1 * span * temp
		o.problem.Clamp(n)
		if o.problem.Feasible(n) {
			return n
		}
	}
	return nil
}

// accept applies the Metropolis criterion: improving moves always pass,
// worsening ones pass with probability exp(-delta/temp) where delta is the
// worsening adjusted for the search direction. Non-finite candidates never
// pass because the exponent degenerates to zero or NaN.
func (o *Optimizer) accept(currentFit, candidateFit, temp float64) bool {
	if o.problem.Better(candidateFit, currentFit) {
		return true
	}
	delta := candidateFit - currentFit
	if !o.problem.Minimize {
		delta = -delta
	}
	return o.rng.Float64() < math.Exp(-delta/temp)
}

// CoolingSteps returns the number of cooling steps the schedule will run,
// which is also the convergence history length.
func (cfg Config) CoolingSteps() int {
	steps := 0
	for temp := cfg.InitialTemperature; temp > cfg.MinTemperature; temp *= cfg.CoolingRate {
		steps++
	}
	return steps
}
