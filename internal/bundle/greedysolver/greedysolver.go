// Package greedysolver implements the randomized greedy bundle constructor:
// a fast, priority-ordered single-pass builder that runs K times with
// different seeds to produce multiple distinct valid bundles.
package greedysolver

import (
	"context"
	"errors"
	"math/rand"
	"sort"

	"github.com/fdg312/health-hub/internal/bundle"
)

// errDietUnsatisfied is raised internally when a diet's required servings
// cannot be met during construction. It never crosses the package boundary:
// Solve catches it, ends that run without emitting a solution, and moves on.
var errDietUnsatisfied = errors.New("greedysolver: diet requirement unmet")

// Solver is a seedable randomized greedy constructor. The random source is
// always explicit and injected at construction, never the global
// math/rand source, so runs are reproducible for a given seed.
type Solver struct {
	seed int64
}

// New returns a Solver seeded with seed. Two Solvers built with the same
// seed and run against the same inputs produce identical bundles.
func New(seed int64) *Solver {
	return &Solver{seed: seed}
}

var _ bundle.Solver = (*Solver)(nil)

// Solve runs the randomized constructor up to topN times, each with a
// distinct derived seed, stopping at the first run that fails to satisfy
// its diet or demand requirements (the remaining constraint budget will
// not admit more solutions after that).
func (s *Solver) Solve(ctx context.Context, items []bundle.Item, req bundle.Request, kitchenCap int, topN int) ([]bundle.Solution, error) {
	var solutions []bundle.Solution
	rng := rand.New(rand.NewSource(s.seed))

	for run := 0; run < topN; run++ {
		if ctx.Err() != nil {
			break
		}
		runSeed := rng.Int63()
		sol, err := s.constructOne(items, req, kitchenCap, rand.New(rand.NewSource(runSeed)))
		if err != nil {
			break
		}
		solutions = append(solutions, sol)
	}

	bundle.SortDescending(solutions)
	return solutions, nil
}

func (s *Solver) constructOne(items []bundle.Item, req bundle.Request, kitchenCap int, rng *rand.Rand) (bundle.Solution, error) {
	pool := sortedPool(items, rng)

	qty := make(map[string]int, len(pool))
	byID := make(map[string]bundle.Item, len(pool))
	for _, it := range pool {
		byID[it.ID] = it
	}

	cost := 0
	load := 0
	served := 0

	for _, diet := range []bundle.DietTag{bundle.Vegan, bundle.Vegetarian, bundle.Meat} {
		required := req.RequiredByDiet[diet]
		if required <= 0 {
			continue
		}
		have := 0
		for have < required {
			added := false
			for i := range pool {
				it := pool[i]
				if it.Diet != diet {
					continue
				}
				if !eligible(it, qty[it.ID], cost, load, served, kitchenCap, req) {
					continue
				}
				qty[it.ID]++
				cost += it.PriceCents
				load += it.LoadPerServing
				served++
				have++
				added = true
				if have >= required {
					break
				}
			}
			if !added {
				return bundle.Solution{}, errDietUnsatisfied
			}
		}
	}

	for served < req.People {
		added := false
		for i := range pool {
			it := pool[i]
			if !eligible(it, qty[it.ID], cost, load, served, kitchenCap, req) {
				continue
			}
			qty[it.ID]++
			cost += it.PriceCents
			load += it.LoadPerServing
			served++
			added = true
			break
		}
		if !added {
			return bundle.Solution{}, errDietUnsatisfied
		}
	}

	if err := bundle.Validate(items, qty, req, kitchenCap); err != nil {
		return bundle.Solution{}, errDietUnsatisfied
	}

	score := bundle.Score(items, qty, req, kitchenCap, bundle.SolverGreedy)
	return buildSolution(byID, qty, cost, load, kitchenCap, req.People, score), nil
}

// eligible mirrors the spec's single-item admission predicate used by both
// the diet-pass and the fill-pass: stock headroom, load headroom, and
// budget headroom for the next person served.
func eligible(it bundle.Item, currentQty, runningCost, runningLoad, servedSoFar, kitchenCap int, req bundle.Request) bool {
	if currentQty >= it.AvailableQty {
		return false
	}
	if runningLoad+it.LoadPerServing > kitchenCap {
		return false
	}
	nextBudget := req.MaxPricePerPersonCents * (servedSoFar + 1)
	if runningCost+it.PriceCents > nextBudget {
		return false
	}
	return true
}

// sortedPool orders items by the composite key: diet name, rating tier
// (0 if highly-rated else 1), popularity tier (0 if popular else 1), price
// ascending, then a random jitter that varies between runs while keeping
// otherwise-equal items adjacent.
func sortedPool(items []bundle.Item, rng *rand.Rand) []bundle.Item {
	pool := make([]bundle.Item, len(items))
	copy(pool, items)
	jitter := make([]float64, len(pool))
	for i := range jitter {
		jitter[i] = rng.Float64()
	}

	sort.SliceStable(pool, func(i, j int) bool {
		a, b := pool[i], pool[j]
		if a.Diet != b.Diet {
			return a.Diet < b.Diet
		}
		at, bt := ratingTier(a), ratingTier(b)
		if at != bt {
			return at < bt
		}
		ap, bp := popularityTier(a), popularityTier(b)
		if ap != bp {
			return ap < bp
		}
		if a.PriceCents != b.PriceCents {
			return a.PriceCents < b.PriceCents
		}
		return jitter[i] < jitter[j]
	})
	return pool
}

func ratingTier(it bundle.Item) int {
	if it.HighlyRated() {
		return 0
	}
	return 1
}

func popularityTier(it bundle.Item) int {
	if it.Popular() {
		return 0
	}
	return 1
}

func buildSolution(byID map[string]bundle.Item, qty map[string]int, cost, load, kitchenCap, people, score int) bundle.Solution {
	distinct := 0
	popularCount := 0
	for id, x := range qty {
		if x <= 0 {
			continue
		}
		distinct++
		if byID[id].Popular() {
			popularCount++
		}
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

	itemByID := make(map[string]bundle.Item, len(qty))
	for id, x := range qty {
		if x > 0 {
			itemByID[id] = byID[id]
		}
	}

	return bundle.Solution{
		Items:                dropZero(qty),
		ItemByID:             itemByID,
		TotalCost:            cost,
		AverageCostPerPerson: avgPerPerson,
		PopularItemsPercent:  popularPercent,
		KitchenLoadPercent:   kitchenLoadPercent,
		OptimalityScore:      score,
	}
}

func dropZero(qty map[string]int) map[string]int {
	out := make(map[string]int, len(qty))
	for id, x := range qty {
		if x > 0 {
			out[id] = x
		}
	}
	return out
}
