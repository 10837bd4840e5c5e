// Package objectives provides the named benchmark functions the server and
// CLI expose. Library callers pass arbitrary Go closures instead.
package objectives

import (
	"math"
	"sort"

	"github.com/copyleftdev/TAIGA/internal/optimization"
)

// Objective couples a benchmark function with its canonical search domain.
type Objective struct {
	Name string

	// Fn is the function itself, defined for any dimensionality unless
	// Dimensions pins it.
	Fn optimization.ObjectiveFunc

	// Domain is the canonical per-dimension bound used when the caller
	// does not supply bounds.
	Domain optimization.Bound

	// Dimensions pins functions only defined for a fixed dimensionality.
	// Zero means any.
	Dimensions int

	// DefaultDims is used when the caller requests no particular
	// dimensionality.
	DefaultDims int
}

// Sphere is the canonical quadratic bowl with its minimum 0 at the origin.
func Sphere(x []float64) float64 {
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}
	return sum
}

// Rosenbrock is the banana-valley function with its minimum 0 at (1,...,1).
func Rosenbrock(x []float64) float64 {
	sum := 0.0
	for i := 0; i+1 < len(x); i++ {
		a := x[i+1] - x[i]*x[i]
		b := 1 - x[i]
		sum += 100*a*a + b*b
	}
	return sum
}

// Rastrigin is a highly multimodal function with its minimum 0 at the
// origin.
func Rastrigin(x []float64) float64 {
	sum := 10.0 * float64(len(x))
	for _, v := range x {
		sum += v*v - 10*math.Cos(2*math.Pi*v)
	}
	return sum
}

// Ackley has a nearly flat outer region and a deep hole at the origin where
// its minimum 0 sits.
func Ackley(x []float64) float64 {
	n := float64(len(x))
	sumSq, sumCos := 0.0, 0.0
	for _, v := range x {
		sumSq += v * v
		sumCos += math.Cos(2 * math.Pi * v)
	}
	return -20*math.Exp(-0.2*math.Sqrt(sumSq/n)) - math.Exp(sumCos/n) + 20 + math.E
}

// Eggholder is a heavily multimodal 2-D function with its minimum of about
// -959.6407 near (512, 404.2319).
func Eggholder(x []float64) float64 {
	a := x[1] + 47
	return -a*math.Sin(math.Sqrt(math.Abs(x[0]/2+a))) -
		x[0]*math.Sin(math.Sqrt(math.Abs(x[0]-a)))
}

var catalog = map[string]Objective{
	"sphere": {
		Name:        "sphere",
		Fn:          Sphere,
		Domain:      optimization.Bound{Min: -10, Max: 10},
		DefaultDims: 2,
	},
	"rosenbrock": {
		Name:        "rosenbrock",
		Fn:          Rosenbrock,
		Domain:      optimization.Bound{Min: -5, Max: 10},
		DefaultDims: 2,
	},
	"rastrigin": {
		Name:        "rastrigin",
		Fn:          Rastrigin,
		Domain:      optimization.Bound{Min: -5.12, Max: 5.12},
		DefaultDims: 2,
	},
	"ackley": {
		Name:        "ackley",
		Fn:          Ackley,
		Domain:      optimization.Bound{Min: -32.768, Max: 32.768},
		DefaultDims: 2,
	},
	"eggholder": {
		Name:        "eggholder",
		Fn:          Eggholder,
		Domain:      optimization.Bound{Min: -512, Max: 512},
		Dimensions:  2,
		DefaultDims: 2,
	},
}

// Lookup returns the named benchmark objective.
func Lookup(name string) (Objective, bool) {
	obj, ok := catalog[name]
	return obj, ok
}

// Names lists the catalog in stable order.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Problem assembles a minimization or maximization of the named benchmark
// over its canonical domain. A zero dims picks the objective's default.
func Problem(name string, dims int, minimize bool) (*optimization.Problem, error) {
	obj, ok := Lookup(name)
	if !ok {
		return nil, optimization.NewErrorf("unknown objective %q", name).WithComponent("objectives")
	}
	if dims == 0 {
		dims = obj.DefaultDims
	}
	if obj.Dimensions != 0 && dims != obj.Dimensions {
		return nil, optimization.NewErrorf("objective %q is only defined for %d dimensions",
			name, obj.Dimensions).WithComponent("objectives")
	}

	bounds := make([]optimization.Bound, dims)
	for d := range bounds {
		bounds[d] = obj.Domain
	}
	return &optimization.Problem{
		Objective:  obj.Fn,
		Dimensions: dims,
		Bounds:     bounds,
		Minimize:   minimize,
	}, nil
}
