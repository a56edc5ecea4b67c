// Package bruteforce implements the exhaustive backtracking bundle solver:
// recursive search across per-item quantities with early pruning on
// running cost and load, validating the full constraint set only at each
// leaf.
package bruteforce

import (
	"context"
	"sort"

	"github.com/fdg312/health-hub/internal/bundle"
)

// maxItemsPerType caps the per-item quantity branch factor, independent of
// stock, budget, or load headroom.
const maxItemsPerType = 20

// Solver is the recursive backtracking bundle constructor.
type Solver struct{}

// New returns a brute-force Solver. It holds no state between calls.
func New() *Solver {
	return &Solver{}
}

var _ bundle.Solver = (*Solver)(nil)

type searchState struct {
	ctx        context.Context
	items      []bundle.Item
	req        bundle.Request
	kitchenCap int
	topN       int
	found      []bundle.Solution
}

// Solve searches for up to topN valid bundles, sorted by score descending.
// It checks ctx for cancellation at the top of every recursive call.
func (s *Solver) Solve(ctx context.Context, items []bundle.Item, req bundle.Request, kitchenCap int, topN int) ([]bundle.Solution, error) {
	ordered := sortedForSearch(items, req.RequiredByDiet)
	st := &searchState{
		ctx:        ctx,
		items:      items,
		req:        req,
		kitchenCap: kitchenCap,
		topN:       topN,
	}
	qty := make(map[string]int, len(ordered))
	st.search(ordered, 0, qty, 0, 0)

	bundle.SortDescending(st.found)
	return st.found, nil
}

// sortedForSearch orders items required-diet-first, then popular, then by
// rating descending -- the order the recursive search assigns quantities
// in, so the most load-bearing items are pinned down first and pruning
// takes effect earlier in the tree.
func sortedForSearch(items []bundle.Item, requiredByDiet map[bundle.DietTag]int) []bundle.Item {
	ordered := make([]bundle.Item, len(items))
	copy(ordered, items)
	required := func(it bundle.Item) bool {
		return requiredByDiet[it.Diet] > 0
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if required(a) != required(b) {
			return required(a)
		}
		if a.Popular() != b.Popular() {
			return a.Popular()
		}
		return a.Rating() > b.Rating()
	})
	return ordered
}

func (st *searchState) search(items []bundle.Item, depth int, qty map[string]int, cumCost, cumLoad int) {
	if st.ctx.Err() != nil {
		return
	}
	if len(st.found) >= st.topN {
		return
	}
	if depth == len(items) {
		st.tryAccept(qty)
		return
	}

	it := items[depth]
	budget := st.req.Budget()

	maxQty := it.AvailableQty
	if it.PriceCents > 0 {
		if byBudget := (budget - cumCost) / it.PriceCents; byBudget < maxQty {
			maxQty = byBudget
		}
	}
	if it.LoadPerServing > 0 {
		if byLoad := (st.kitchenCap - cumLoad) / it.LoadPerServing; byLoad < maxQty {
			maxQty = byLoad
		}
	}
	if maxItemsPerType < maxQty {
		maxQty = maxItemsPerType
	}
	if maxQty < 0 {
		maxQty = 0
	}

	for x := 0; x <= maxQty; x++ {
		newCost := cumCost + it.PriceCents*x
		newLoad := cumLoad + it.LoadPerServing*x
		if newCost > budget || newLoad > st.kitchenCap {
			break
		}
		if x > 0 {
			qty[it.ID] = x
		}
		st.search(items, depth+1, qty, newCost, newLoad)
		if x > 0 {
			delete(qty, it.ID)
		}
		if len(st.found) >= st.topN {
			return
		}
	}
}

func (st *searchState) tryAccept(qty map[string]int) {
	minPct, maxPct, rangeFrac := bundle.SmallGroupPortionParams()
	frozen := make(map[string]int, len(qty))
	for id, x := range qty {
		frozen[id] = x
	}
	if err := bundle.ValidateWithPortionParams(st.items, frozen, st.req, st.kitchenCap, minPct, maxPct, rangeFrac); err != nil {
		return
	}

	score := bundle.Score(st.items, frozen, st.req, st.kitchenCap, bundle.SolverBruteForce)
	st.found = append(st.found, buildSolution(st.items, frozen, st.kitchenCap, st.req.People, score))
}

func buildSolution(items []bundle.Item, qty map[string]int, kitchenCap, people, score int) bundle.Solution {
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
	if people > 0 {
		avgPerPerson = cost / people
	}

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
