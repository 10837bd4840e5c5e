package optimization

import (
	"math"
	"testing"
)

// sphere is the canonical quadratic test objective with its minimum at the
// origin.
func sphere(x []float64) float64 {
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}
	return sum
}

// sphereProblem builds a dims-dimensional minimization of sphere over
// [-10, 10] in every dimension.
func sphereProblem(dims int) *Problem {
	bounds := make([]Bound, dims)
	for d := range bounds {
		bounds[d] = Bound{Min: -10, Max: 10}
	}
	return &Problem{
		Objective:  sphere,
		Dimensions: dims,
		Bounds:     bounds,
		Minimize:   true,
	}
}

// assertWithinBounds checks that every coordinate of x lies inside the
// problem's bounds.
func assertWithinBounds(t *testing.T, p *Problem, x []float64) {
	t.Helper()

	if len(x) != p.Dimensions {
		t.Fatalf("candidate length mismatch: got %d, want %d", len(x), p.Dimensions)
	}
	for d, v := range x {
		if v < p.Bounds[d].Min || v > p.Bounds[d].Max {
			t.Fatalf("coordinate %d out of bounds: %v not in [%v, %v]", d, v, p.Bounds[d].Min, p.Bounds[d].Max)
		}
	}
}

// assertFloat64SlicesEqual checks if two float64 slices are approximately equal.
func assertFloat64SlicesEqual(t *testing.T, got, want []float64, tol float64) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}

	for i := range got {
		if math.Abs(got[i]-want[i]) > tol {
			t.Fatalf("at index %d: got %v, want %v (tolerance %v)", i, got[i], want[i], tol)
		}
	}
}
