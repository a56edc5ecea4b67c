// Package cpsolver implements the constraint-programming / MILP bundle
// solver: builds an integer model per solve with linked boolean
// indicators and pairwise fair-distribution constraints, then iterates,
// adding a diversity cut after each accepted solution.
package cpsolver

import (
	"context"
	"fmt"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	cmpb "github.com/google/or-tools/ortools/sat/proto/cp_model"
	sppb "github.com/google/or-tools/ortools/sat/proto/sat"

	"github.com/fdg312/health-hub/internal/bundle"
)

// Solver builds and iteratively solves a CP-SAT model, producing up to
// topN distinct solutions per call.
type Solver struct {
	minSolutionDiversityPercent int
	maxTimePerSolutionMs        int
}

// New returns a Solver configured with the diversity-cut percentage and
// per-solve wall-clock cap. Both are validated by internal/config at
// startup; New trusts its caller.
func New(minSolutionDiversityPercent, maxTimePerSolutionMs int) *Solver {
	ensureInitialized()
	return &Solver{
		minSolutionDiversityPercent: minSolutionDiversityPercent,
		maxTimePerSolutionMs:        maxTimePerSolutionMs,
	}
}

var _ bundle.Solver = (*Solver)(nil)

// Solve runs the iterate-and-cut loop: build a model, solve it with the
// configured wall-clock cap, accept a feasible/optimal result as one more
// solution and add a diversity cut against it, or stop on the first
// infeasible/timeout response or once topN solutions have been collected.
func (s *Solver) Solve(ctx context.Context, items []bundle.Item, req bundle.Request, kitchenCap int, topN int) ([]bundle.Solution, error) {
	var solutions []bundle.Solution
	var priorQty []map[string]int

	params := &sppb.SatParameters{
		MaxTimeInSeconds: floatPtr(float64(s.maxTimePerSolutionMs) / 1000.0),
	}

	for len(solutions) < topN {
		if ctx.Err() != nil {
			break
		}

		st := buildModel(items, req, kitchenCap, priorQty, s.minSolutionDiversityPercent)
		m, err := st.model.Model()
		if err != nil {
			return solutions, fmt.Errorf("cpsolver: failed to instantiate model: %w", err)
		}

		response, err := cpmodel.SolveCpModelWithSatParameters(m, params)
		if err != nil {
			return solutions, fmt.Errorf("cpsolver: failed to solve model: %w", err)
		}

		// Compare by name rather than the generated enum constant: OPTIMAL
		// and FEASIBLE are the only statuses that carry a usable solution.
		statusName := response.GetStatus().String()
		if statusName != "OPTIMAL" && statusName != "FEASIBLE" {
			break
		}

		qty := extractQuantities(st, response)
		sol := buildSolution(items, qty, kitchenCap, req)

		solutions = append(solutions, sol)
		priorQty = append(priorQty, qty)
	}

	bundle.SortDescending(solutions)
	return solutions, nil
}

func extractQuantities(st *buildState, response *cmpb.CpSolverResponse) map[string]int {
	qty := make(map[string]int, len(st.items))
	for i, it := range st.items {
		v := cpmodel.SolutionIntegerValue(response, st.x[i])
		if v > 0 {
			qty[it.ID] = int(v)
		}
	}
	return qty
}

func buildSolution(items []bundle.Item, qty map[string]int, kitchenCap int, req bundle.Request) bundle.Solution {
	byID := make(map[string]bundle.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	cost, load, distinct, popularCount := 0, 0, 0, 0
	itemByID := make(map[string]bundle.Item, len(qty))
	for id, x := range qty {
		it := byID[id]
		cost += it.PriceCents * x
		load += it.LoadPerServing * x
		distinct++
		if it.Popular() {
			popularCount++
		}
		itemByID[id] = it
	}

	popularPercent := 0.0
	if distinct > 0 {
		popularPercent = float64(popularCount) * 100 / float64(distinct)
	}
	kitchenLoadPercent := 0.0
	if kitchenCap > 0 {
		kitchenLoadPercent = float64(load) * 100 / float64(kitchenCap)
	}
	avgPerPerson := 0
	if req.People > 0 {
		avgPerPerson = cost / req.People
	}

	score := bundle.Score(items, qty, req, kitchenCap, bundle.SolverMILP)

	return bundle.Solution{
		Items:                qty,
		ItemByID:             itemByID,
		TotalCost:            cost,
		AverageCostPerPerson: avgPerPerson,
		PopularItemsPercent:  popularPercent,
		KitchenLoadPercent:   kitchenLoadPercent,
		OptimalityScore:      score,
	}
}

func floatPtr(f float64) *float64 { return &f }
