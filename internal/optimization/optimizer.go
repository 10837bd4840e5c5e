package optimization

import (
	"context"
)

// Optimizer is implemented by every search algorithm in the subpackages.
// A single value runs one problem once; separate runs share no state and
// may execute concurrently.
type Optimizer interface {
	// Optimize runs the search to completion. The context is checked once
	// per generation or iteration, the recommended injection point for
	// deadline budgets; cancellation returns ctx.Err() and no result.
	Optimize(ctx context.Context) (*Result, error)
}
