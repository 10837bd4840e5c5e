package optimization

import "math"

// Tracker accumulates the per-run bookkeeping every algorithm shares: the
// objective evaluation count, the best solution seen so far, and the
// convergence history. The best never regresses even when the working
// population does, so the recorded history is monotone in the problem's
// direction.
type Tracker struct {
	problem     *Problem
	evaluations int
	best        []float64
	bestFitness float64
	first       []float64
	history     []float64
}

// NewTracker creates the bookkeeping for a single run of problem.
func NewTracker(p *Problem) *Tracker {
	worst := math.Inf(1)
	if !p.Minimize {
		worst = math.Inf(-1)
	}
	return &Tracker{problem: p, bestFitness: worst}
}

// Evaluate runs the objective on x, counts the call, and folds the outcome
// into the best-so-far. Non-finite fitness values are counted but can never
// become the best.
func (t *Tracker) Evaluate(x []float64) float64 {
	t.evaluations++
	f := t.problem.Objective(x)
	t.Observe(x, f)
	return f
}

// Observe folds an already-computed fitness into the best-so-far without
// re-evaluating the objective.
func (t *Tracker) Observe(x []float64, f float64) {
	if t.first == nil {
		t.first = CopyCandidate(x)
	}
	if t.problem.Better(f, t.bestFitness) {
		t.bestFitness = f
		if t.best == nil {
			t.best = make([]float64, len(x))
		}
		copy(t.best, x)
	}
}

// Record appends the current best fitness to the convergence history.
func (t *Tracker) Record() {
	t.history = append(t.history, t.bestFitness)
}

// Best returns the best candidate and fitness seen so far. The slice is the
// tracker's own; callers must not mutate it. The candidate is nil until a
// finite fitness has been observed.
func (t *Tracker) Best() ([]float64, float64) {
	return t.best, t.bestFitness
}

// Evaluations returns the number of objective calls made so far.
func (t *Tracker) Evaluations() int {
	return t.evaluations
}

// Result assembles the run artifact after iterations completed steps. If
// every evaluation came back non-finite, the first evaluated candidate is
// returned so the solution still has the right shape and stays in bounds.
func (t *Tracker) Result(iterations int) *Result {
	solution := t.best
	if solution == nil {
		solution = t.first
	}
	return &Result{
		Solution:    CopyCandidate(solution),
		Fitness:     t.bestFitness,
		Iterations:  iterations,
		Convergence: append([]float64(nil), t.history...),
		Evaluations: t.evaluations,
		Success:     true,
	}
}
