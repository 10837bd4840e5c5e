// Package simplex implements the Nelder-Mead downhill simplex method with
// the standard reflect/expand/contract/shrink moves.
package simplex

import (
	"context"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/copyleftdev/TAIGA/internal/optimization"
)

// Standard Nelder-Mead coefficients.
const (
	reflection  = 1.0
	expansion   = 2.0
	contraction = 0.5
	shrinkage   = 0.5
)

// Config holds the Nelder-Mead parameters.
type Config struct {
	// InitialSimplex optionally seeds the dimensions+1 vertices. When nil,
	// the vertices are sampled independently at random within the bounds,
	// trading the classical single-seed construction for broader initial
	// coverage.
	InitialSimplex [][]float64 `json:"initialSimplex,omitempty"`

	// MaxIterations caps the number of simplex moves.
	MaxIterations int `json:"maxIterations"`

	// Tolerance ends the run once the fitness spread between the best and
	// worst vertices falls below it.
	Tolerance float64 `json:"tolerance"`

	// Seed for the run's random source, used only when InitialSimplex is
	// nil. Zero means time-seeded.
	Seed int64 `json:"seed,omitempty"`
}

// DefaultConfig returns a random-simplex run with a tight spread tolerance.
func DefaultConfig() Config {
	return Config{
		MaxIterations: 500,
		Tolerance:     1e-6,
	}
}

// Optimizer runs one simplex search over one problem.
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
	if cfg.MaxIterations <= 0 {
		return nil, optimization.NewError("max iterations must be positive").WithComponent("simplex")
	}
	if cfg.Tolerance < 0 || math.IsNaN(cfg.Tolerance) {
		return nil, optimization.NewError("tolerance must be non-negative").WithComponent("simplex")
	}
	if cfg.InitialSimplex != nil {
		if len(cfg.InitialSimplex) != problem.Dimensions+1 {
			return nil, optimization.NewErrorf("initial simplex needs %d vertices, got %d",
				problem.Dimensions+1, len(cfg.InitialSimplex)).WithComponent("simplex")
		}
		for i, v := range cfg.InitialSimplex {
			if len(v) != problem.Dimensions {
				return nil, optimization.NewErrorf("initial simplex vertex %d has %d coordinates, want %d",
					i, len(v), problem.Dimensions).WithComponent("simplex")
			}
		}
	}
	return &Optimizer{
		problem: problem,
		cfg:     cfg,
		rng:     optimization.NewRand(cfg.Seed),
	}, nil
}

// Optimize iterates the simplex until the best/worst fitness spread drops
// below Tolerance or MaxIterations is reached. All produced points are
// clamped into the bounds.
func (o *Optimizer) Optimize(ctx context.Context) (*optimization.Result, error) {
	p, cfg := o.problem, o.cfg
	tracker := optimization.NewTracker(p)
	n := p.Dimensions

	verts := o.initialVertices()
	fit := make([]float64, n+1)
	for i := range verts {
		fit[i] = tracker.Evaluate(verts[i])
	}

	iters := 0
	for iters < cfg.MaxIterations {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		sortVertices(p, verts, fit)
		if math.Abs(fit[n]-fit[0]) < cfg.Tolerance {
			break
		}

		// Centroid of every vertex except the worst.
		centroid := make([]float64, n)
		for _, v := range verts[:n] {
			floats.Add(centroid, v)
		}
		floats.Scale(1/float64(n), centroid)

		refl := o.blend(centroid, verts[n], -reflection)
		fr := tracker.Evaluate(refl)

		switch {
		case p.Better(fr, fit[0]):
			// The reflection beats the best vertex: try to go further.
			exp := o.blend(centroid, refl, expansion)
			fe := tracker.Evaluate(exp)
			if p.Better(fe, fr) {
				verts[n], fit[n] = exp, fe
			} else {
				verts[n], fit[n] = refl, fr
			}
		case p.Better(fr, fit[n-1]):
			// Beats the second-worst: plain reflection.
			verts[n], fit[n] = refl, fr
		default:
			contr := o.blend(centroid, verts[n], contraction)
			fc := tracker.Evaluate(contr)
			if p.Better(fc, fit[n]) {
				verts[n], fit[n] = contr, fc
			} else {
				o.shrink(tracker, verts, fit)
			}
		}

		tracker.Record()
		iters++
	}

	return tracker.Result(iters), nil
}

// initialVertices copies and clamps the supplied simplex, or samples
// dimensions+1 random points within the bounds.
func (o *Optimizer) initialVertices() [][]float64 {
	p := o.problem
	verts := make([][]float64, p.Dimensions+1)
	if o.cfg.InitialSimplex != nil {
		for i, v := range o.cfg.InitialSimplex {
			verts[i] = optimization.CopyCandidate(v)
			p.Clamp(verts[i])
		}
		return verts
	}
	for i := range verts {
		verts[i] = p.RandomCandidate(o.rng)
	}
	return verts
}

// blend returns clamp(centroid + coeff*(x - centroid)): coeff -1 reflects x
// through the centroid, 2 expands past a reflected point, 0.5 contracts
// toward the centroid.
func (o *Optimizer) blend(centroid, x []float64, coeff float64) []float64 {
	out := make([]float64, len(centroid))
	for d := range out {
		out[d] = centroid[d] + coeff*(x[d]-centroid[d])
	}
	o.problem.Clamp(out)
	return out
}

// shrink pulls every non-best vertex halfway toward the best one and
// re-evaluates it.
func (o *Optimizer) shrink(tracker *optimization.Tracker, verts [][]float64, fit []float64) {
	best := verts[0]
	for i := 1; i < len(verts); i++ {
		for d := range verts[i] {
			verts[i][d] = best[d] + shrinkage*(verts[i][d]-best[d])
		}
		o.problem.Clamp(verts[i])
		fit[i] = tracker.Evaluate(verts[i])
	}
}

// sortVertices orders the simplex best-first. Non-finite fitness values
// sort last.
func sortVertices(p *optimization.Problem, verts [][]float64, fit []float64) {
	order := make([]int, len(fit))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return p.Better(fit[order[a]], fit[order[b]])
	})

	sortedVerts := make([][]float64, len(verts))
	sortedFit := make([]float64, len(fit))
	for i, idx := range order {
		sortedVerts[i] = verts[idx]
		sortedFit[i] = fit[idx]
	}
	copy(verts, sortedVerts)
	copy(fit, sortedFit)
}
