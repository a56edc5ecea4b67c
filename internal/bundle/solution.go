package bundle

import "sort"

// Solution is one valid bundle: a multiset of item quantities plus its
// computed metrics.
type Solution struct {
	Items                 map[string]int // item ID -> quantity
	ItemByID              map[string]Item
	TotalCost             int
	AverageCostPerPerson  int
	PopularItemsPercent   float64
	KitchenLoadPercent    float64
	OptimalityScore       int
	FindingTimeMs         int64
}

// TotalServings returns the sum of all quantities in the solution.
func (s Solution) TotalServings() int {
	total := 0
	for _, qty := range s.Items {
		total += qty
	}
	return total
}

// DistinctItems returns the number of items with a positive quantity.
func (s Solution) DistinctItems() int {
	count := 0
	for _, qty := range s.Items {
		if qty > 0 {
			count++
		}
	}
	return count
}

// SortDescending orders solutions by OptimalityScore, highest first. Ties
// keep their relative order (stable sort), matching the teacher's
// preference for small local comparator funcs over a Sort interface type.
func SortDescending(solutions []Solution) {
	sort.SliceStable(solutions, func(i, j int) bool {
		return solutions[i].OptimalityScore > solutions[j].OptimalityScore
	})
}

// Comparison is the result of one orchestrator Build call: the ranked
// solutions it found (possibly empty), which solver produced them, and how
// long the call took.
type Comparison struct {
	Solutions     []Solution
	SolverType    SolverKind
	FindingTimeMs int64
	// Reason is set when Solutions is empty: "infeasible" or "timeout".
	// It is never an error — an empty-but-valid outcome for a hard request.
	Reason string
}
