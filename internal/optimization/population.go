package optimization

import (
	"math/rand"
	"time"
)

// MaxConstraintRetries bounds how many times an algorithm may redraw a
// candidate the constraint function rejects before falling back to a parent
// or to the raw draw. Keeps a hostile constraint from stalling a run.
const MaxConstraintRetries = 100

// NewRand returns the run's random source. A zero seed means time-seeded;
// any other seed makes reruns bit-identical.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// RandomCandidate samples one candidate uniformly within the bounds.
func (p *Problem) RandomCandidate(rng *rand.Rand) []float64 {
	x := make([]float64, p.Dimensions)
	for d, b := range p.Bounds {
		x[d] = b.Min + rng.Float64()*b.Span()
	}
	return x
}

// FeasibleCandidate samples uniformly until the constraint accepts, bounded
// by MaxConstraintRetries. The final draw is returned even if still
// infeasible.
func (p *Problem) FeasibleCandidate(rng *rand.Rand) []float64 {
	x := p.RandomCandidate(rng)
	for i := 0; i < MaxConstraintRetries && !p.Feasible(x); i++ {
		x = p.RandomCandidate(rng)
	}
	return x
}

// InitPopulation samples size candidates uniformly within the bounds.
func (p *Problem) InitPopulation(size int, rng *rand.Rand) [][]float64 {
	pop := make([][]float64, size)
	for i := range pop {
		pop[i] = p.FeasibleCandidate(rng)
	}
	return pop
}

// CopyCandidate returns an independent copy of x.
func CopyCandidate(x []float64) []float64 {
	return append([]float64(nil), x...)
}
