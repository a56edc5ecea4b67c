package bundle

import (
	"fmt"
	"sort"
)

// minDifferentItems is the binding minimum-variety constant. The spec's own
// documentation mentions 4 in places; 2 is the value every solver and test
// actually enforces.
const minDifferentItems = 2

// PortionParams returns the group-size-adaptive portion-band and
// pairwise-spread parameters: minPct and maxPct bound an item's share of
// total servings, rangeFrac bounds the spread between any two selected
// items' quantities as a fraction of People.
func PortionParams(people int) (minPct, maxPct, rangeFrac float64) {
	if people <= 5 {
		return 0.10, 0.50, 0.30
	}
	return 0.05, 0.25, 0.15
}

// SmallGroupPortionParams always returns the small-group (P<=5) row,
// regardless of the actual group size. internal/bundle/bruteforce uses this
// deliberately at its leaf validation step: the original implementation
// this planner was modeled on used the small-group constant for portion-band
// checks even for large groups, and that quirk is preserved rather than
// fixed (see DESIGN.md).
func SmallGroupPortionParams() (minPct, maxPct, rangeFrac float64) {
	return 0.10, 0.50, 0.30
}

// Validate checks a bundle (qty keyed by item ID) against every rule of the
// constraint model, using the portion/pairwise parameters for req.People.
// It returns the first violated rule, in the order the rules are numbered,
// wrapped with enough detail to explain the failure; nil means the bundle
// is valid.
func Validate(items []Item, qty map[string]int, req Request, kitchenCap int) error {
	minPct, maxPct, rangeFrac := PortionParams(req.People)
	return validateWithPortionParams(items, qty, req, kitchenCap, minPct, maxPct, rangeFrac)
}

// ValidateWithPortionParams runs the same checks as Validate but against
// explicit portion/pairwise parameters instead of deriving them from
// req.People. internal/bundle/bruteforce uses this with
// SmallGroupPortionParams to preserve a documented quirk (see DESIGN.md).
func ValidateWithPortionParams(items []Item, qty map[string]int, req Request, kitchenCap int, minPct, maxPct, rangeFrac float64) error {
	return validateWithPortionParams(items, qty, req, kitchenCap, minPct, maxPct, rangeFrac)
}

func validateWithPortionParams(items []Item, qty map[string]int, req Request, kitchenCap int, minPct, maxPct, rangeFrac float64) error {
	byID := make(map[string]Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	// 1. Stock.
	for id, x := range qty {
		if x < 0 {
			return fmt.Errorf("%w: item %s quantity %d is negative", ErrStockExceeded, id, x)
		}
		it, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: item %s not in menu", ErrStockExceeded, id)
		}
		if x > it.AvailableQty {
			return fmt.Errorf("%w: item %s wants %d, only %d available", ErrStockExceeded, id, x, it.AvailableQty)
		}
	}

	total := 0
	for _, x := range qty {
		total += x
	}

	// 2. Demand.
	if total < req.People {
		return fmt.Errorf("%w: %d servings, need %d", ErrDemandUnmet, total, req.People)
	}

	// 3. Per-diet demand.
	byDiet := make(map[DietTag]int)
	for id, x := range qty {
		if x <= 0 {
			continue
		}
		byDiet[byID[id].Diet] += x
	}
	for diet, required := range req.RequiredByDiet {
		if byDiet[diet] < required {
			return fmt.Errorf("%w: diet %s has %d, need %d", ErrDietUnmet, diet, byDiet[diet], required)
		}
	}

	// 4. Budget.
	cost := 0
	for id, x := range qty {
		cost += byID[id].PriceCents * x
	}
	budget := req.Budget()
	if cost > budget {
		return fmt.Errorf("%w: cost %d exceeds budget %d", ErrBudgetExceeded, cost, budget)
	}

	// 5. Kitchen.
	load := 0
	for id, x := range qty {
		load += byID[id].LoadPerServing * x
	}
	if load > kitchenCap {
		return fmt.Errorf("%w: load %d exceeds capacity %d", ErrKitchenCapExceeded, load, kitchenCap)
	}

	// 6. Minimum variety.
	selected := selectedIDs(qty)
	minVariety := minDifferentItems
	if req.People < minVariety {
		minVariety = req.People
	}
	if len(selected) < minVariety {
		return fmt.Errorf("%w: %d distinct items, need %d", ErrVarietyUnmet, len(selected), minVariety)
	}

	// 7. Portion bounds (deterministic order for reproducible error messages).
	t := float64(total)
	for _, id := range selected {
		x := float64(qty[id])
		if x < minPct*t-1e-9 || x > maxPct*t+1e-9 {
			return fmt.Errorf("%w: item %s qty %.0f outside [%.2f, %.2f] of %.0f total",
				ErrPortionBand, id, x, minPct*t, maxPct*t, t)
		}
	}

	// 8. Pairwise fair distribution.
	bound := rangeFrac * float64(req.People)
	for i := 0; i < len(selected); i++ {
		for j := i + 1; j < len(selected); j++ {
			diff := qty[selected[i]] - qty[selected[j]]
			if diff < 0 {
				diff = -diff
			}
			if float64(diff) > bound+1e-9 {
				return fmt.Errorf("%w: items %s/%s differ by %d, bound %.2f",
					ErrPairwiseSpread, selected[i], selected[j], diff, bound)
			}
		}
	}

	return nil
}

func selectedIDs(qty map[string]int) []string {
	ids := make([]string, 0, len(qty))
	for id, x := range qty {
		if x > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
