package optimization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRandDeterminism(t *testing.T) {
	a := NewRand(42)
	b := NewRand(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Float64(), b.Float64(), "same seed must replay the same stream")
	}
}

func TestNewRandZeroSeed(t *testing.T) {
	// Zero means time-seeded; two sources must still be usable.
	a := NewRand(0)
	require.NotNil(t, a)
	v := a.Float64()
	assert.GreaterOrEqual(t, v, 0.0)
	assert.Less(t, v, 1.0)
}

func TestRandomCandidate(t *testing.T) {
	p := sphereProblem(4)
	rng := NewRand(1)

	for i := 0; i < 50; i++ {
		assertWithinBounds(t, p, p.RandomCandidate(rng))
	}
}

func TestRandomCandidateDegenerateBounds(t *testing.T) {
	p := sphereProblem(2)
	p.Bounds[0] = Bound{Min: 3, Max: 3}
	p.Bounds[1] = Bound{Min: -1, Max: -1}

	x := p.RandomCandidate(NewRand(7))
	assertFloat64SlicesEqual(t, x, []float64{3, -1}, 0)
}

func TestInitPopulation(t *testing.T) {
	p := sphereProblem(3)
	pop := p.InitPopulation(20, NewRand(99))

	require.Len(t, pop, 20)
	for _, ind := range pop {
		assertWithinBounds(t, p, ind)
	}
}

func TestFeasibleCandidateRetries(t *testing.T) {
	p := sphereProblem(1)
	p.Constraint = func(x []float64) bool { return x[0] >= 0 }

	rng := NewRand(5)
	for i := 0; i < 50; i++ {
		x := p.FeasibleCandidate(rng)
		assert.GreaterOrEqual(t, x[0], 0.0)
	}
}

func TestFeasibleCandidateImpossibleConstraint(t *testing.T) {
	// A constraint nothing satisfies must not loop forever; the final draw
	// is returned as-is.
	p := sphereProblem(2)
	p.Constraint = func(x []float64) bool { return false }

	x := p.FeasibleCandidate(NewRand(11))
	assertWithinBounds(t, p, x)
}

func TestCopyCandidate(t *testing.T) {
	x := []float64{1, 2, 3}
	y := CopyCandidate(x)
	y[0] = 99
	assert.Equal(t, 1.0, x[0], "copy must be independent")
}
