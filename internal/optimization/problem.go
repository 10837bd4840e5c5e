// Package optimization defines the problem contract and run bookkeeping
// shared by all search algorithms in the subpackages.
package optimization

import "math"

// ObjectiveFunc evaluates one candidate and returns its fitness.
type ObjectiveFunc func(x []float64) float64

// ConstraintFunc reports whether a candidate is feasible.
type ConstraintFunc func(x []float64) bool

// Bound is the inclusive [Min, Max] range of one dimension.
type Bound struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Span returns the width of the range.
func (b Bound) Span() float64 {
	return b.Max - b.Min
}

// Problem describes a black-box optimization problem. It is immutable for
// the duration of a run; the caller owns it and the algorithm borrows it.
type Problem struct {
	// Objective is the function being minimized or maximized.
	Objective ObjectiveFunc

	// Constraint optionally rejects candidates. Nil means unconstrained.
	Constraint ConstraintFunc

	// Dimensions is the length of every candidate vector.
	Dimensions int

	// Bounds holds one inclusive range per dimension.
	Bounds []Bound

	// Minimize selects the comparison direction.
	Minimize bool
}

// Validate checks the problem before any iteration runs.
func (p *Problem) Validate() error {
	if p.Objective == nil {
		return NewError("objective function is required").WithOperation("validate")
	}
	if p.Dimensions <= 0 {
		return NewError("dimensions must be positive").WithOperation("validate")
	}
	if len(p.Bounds) != p.Dimensions {
		return NewErrorf("expected %d bounds, got %d", p.Dimensions, len(p.Bounds)).WithOperation("validate")
	}
	for d, b := range p.Bounds {
		if b.Min > b.Max {
			return NewErrorf("bounds[%d]: min %v exceeds max %v", d, b.Min, b.Max).WithOperation("validate")
		}
	}
	return nil
}

// Better reports whether fitness a beats fitness b for this problem's
// direction. Non-finite values never win: they lose to any finite value and
// to each other, so NaN or infinite objective results can never become a
// best solution.
func (p *Problem) Better(a, b float64) bool {
	if !IsFinite(a) {
		return false
	}
	if !IsFinite(b) {
		return true
	}
	if p.Minimize {
		return a < b
	}
	return a > b
}

// Clamp forces every coordinate of x back into its dimension's bounds.
// Algorithms apply it after every positional update, not just at creation.
func (p *Problem) Clamp(x []float64) {
	for d := range x {
		x[d] = math.Max(p.Bounds[d].Min, math.Min(x[d], p.Bounds[d].Max))
	}
}

// Feasible reports whether x passes the constraint function, if one is set.
func (p *Problem) Feasible(x []float64) bool {
	return p.Constraint == nil || p.Constraint(x)
}

// IsFinite reports whether f is neither NaN nor infinite.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Result is the only artifact an algorithm returns to the caller.
type Result struct {
	// Solution is the best candidate found, always within bounds.
	Solution []float64 `json:"solution"`

	// Fitness is the objective value of Solution.
	Fitness float64 `json:"fitness"`

	// Iterations is the number of completed generations, iterations, or
	// cooling steps, depending on the algorithm.
	Iterations int `json:"iterations"`

	// Convergence records the best fitness so far after each recorded step.
	Convergence []float64 `json:"convergence"`

	// Evaluations counts calls made to the objective function.
	Evaluations int `json:"evaluations"`

	// Success is true whenever a validated run completes.
	Success bool `json:"success"`
}
