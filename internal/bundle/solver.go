package bundle

import "context"

// Solver is implemented by each of the three interchangeable bundle
// solvers (internal/bundle/cpsolver, greedysolver, bruteforce). It lives
// here rather than on the concrete solver packages so internal/bundle/orchestrator
// can depend on it without those packages depending back on orchestrator.
type Solver interface {
	// Solve returns up to topN valid, distinct solutions for req over items,
	// sorted by OptimalityScore descending. An empty, nil-error result means
	// infeasible or timeout, distinguished by the caller's own bookkeeping;
	// Solve itself only returns an error for truly exceptional conditions.
	Solve(ctx context.Context, items []Item, req Request, kitchenCap int, topN int) ([]Solution, error)
}
