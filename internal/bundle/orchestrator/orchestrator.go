// Package orchestrator dispatches a bundle request to one of the three
// interchangeable solvers, measures wall time, and returns a ranked
// comparison. It is the composition root for internal/bundle: it is the
// only package that imports cpsolver, greedysolver, and bruteforce
// together, so none of those packages need to know about each other.
package orchestrator

import (
	"context"
	"time"

	"github.com/fdg312/health-hub/internal/bundle"
	"github.com/fdg312/health-hub/internal/bundle/bruteforce"
	"github.com/fdg312/health-hub/internal/bundle/cpsolver"
	"github.com/fdg312/health-hub/internal/bundle/greedysolver"
)

// Config carries the tunables the CP solver needs; greedy and brute-force
// take none.
type Config struct {
	MinSolutionDiversityPercent int
	MaxTimePerSolutionMs        int
	GreedySeed                  int64
}

// Orchestrator builds solvers on demand per Build call so each call is
// self-contained and safe to run concurrently with others: no solver
// instance is shared or reused across calls.
type Orchestrator struct {
	cfg Config
}

// New returns an Orchestrator with the given solver configuration.
func New(cfg Config) *Orchestrator {
	return &Orchestrator{cfg: cfg}
}

// Build filters items to those in stock, dispatches to the requested
// solver, and returns a Comparison with solutions sorted descending by
// score. It returns bundle.ErrEmptyMenu if nothing remains after filtering;
// every other outcome -- including a solver finding nothing -- is returned
// as a Comparison with an empty Solutions slice and a Reason, not an error.
func (o *Orchestrator) Build(ctx context.Context, req bundle.Request, items []bundle.Item, kitchenCap int, kind bundle.SolverKind) (bundle.Comparison, error) {
	inStock := filterInStock(items)
	if len(inStock) == 0 {
		return bundle.Comparison{}, bundle.ErrEmptyMenu
	}

	solver := o.solverFor(kind)

	start := time.Now()
	solutions, err := solver.Solve(ctx, inStock, req, kitchenCap, req.TopN)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		return bundle.Comparison{}, err
	}

	for i := range solutions {
		solutions[i].FindingTimeMs = elapsed
	}
	bundle.SortDescending(solutions)

	comparison := bundle.Comparison{
		Solutions:     solutions,
		SolverType:    kind,
		FindingTimeMs: elapsed,
	}
	if len(solutions) == 0 {
		comparison.Reason = reasonFor(ctx)
	}
	return comparison, nil
}

func reasonFor(ctx context.Context) string {
	if ctx.Err() != nil {
		return "timeout"
	}
	return "infeasible"
}

func (o *Orchestrator) solverFor(kind bundle.SolverKind) bundle.Solver {
	switch kind {
	case bundle.SolverMILP:
		return cpsolver.New(o.cfg.MinSolutionDiversityPercent, o.cfg.MaxTimePerSolutionMs)
	case bundle.SolverBruteForce:
		return bruteforce.New()
	default:
		return greedysolver.New(o.cfg.GreedySeed)
	}
}

func filterInStock(items []bundle.Item) []bundle.Item {
	out := make([]bundle.Item, 0, len(items))
	for _, it := range items {
		if it.AvailableQty > 0 {
			out = append(out, it)
		}
	}
	return out
}
