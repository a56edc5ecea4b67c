package bundle

import "math"

// greedyBaseScore and greedyMaxBonus implement the deliberate calibration
// split: greedy solutions live in [60,80] so a CP/brute-force solution at
// >=80 is recognizably better without a strict optimality comparison.
const (
	greedyBaseScore = 60
	greedyMaxBonus  = 20
)

// Score computes the 0-100 composite optimality score for a valid bundle.
// Callers must validate the bundle first; Score does not re-check
// constraints, it only measures quality.
//
// For SolverGreedy it returns greedyBaseScore plus a scaled-down efficiency
// bonus instead of the full composite, per the calibration above.
func Score(items []Item, qty map[string]int, req Request, kitchenCap int, kind SolverKind) int {
	byID := make(map[string]Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	total := 0
	cost := 0
	load := 0
	distinct := 0
	popularCount := 0
	highlyRatedCount := 0
	for id, x := range qty {
		if x <= 0 {
			continue
		}
		it := byID[id]
		total += x
		cost += it.PriceCents * x
		load += it.LoadPerServing * x
		distinct++
		if it.Popular() {
			popularCount++
		}
		if it.HighlyRated() {
			highlyRatedCount++
		}
	}

	budget := req.Budget()
	kitchenLoadPercent := 0.0
	if kitchenCap > 0 {
		kitchenLoadPercent = float64(load) * 100 / float64(kitchenCap)
	}

	costEff := costEfficiencyComponent(cost, budget)
	popularComp := ratioComponent(popularCount, distinct, 20)
	highlyRatedComp := ratioComponent(highlyRatedCount, distinct, 20)
	kitchenComp := kitchenComponent(kitchenLoadPercent)
	fairnessComp := distributionFairnessComponent(items, qty, total, req.People)
	diversityComp := diversityComponent(distinct, req.People)

	if kind == SolverGreedy {
		bonus := costEff/25*6 + popularComp/20*5 + highlyRatedComp/20*5 + kitchenComp/15*4
		if bonus > greedyMaxBonus {
			bonus = greedyMaxBonus
		}
		return greedyBaseScore + int(math.Round(bonus))
	}

	sum := costEff + popularComp + highlyRatedComp + kitchenComp + fairnessComp + diversityComp
	return int(math.Round(sum))
}

// costEfficiencyComponent deliberately rewards spending closer to the full
// budget, not saving money: (totalCost/budget)*25. This is a documented
// open question in the original design, kept as-is rather than fixed.
func costEfficiencyComponent(cost, budget int) float64 {
	if cost <= 0 || budget <= 0 || cost > budget {
		return 0
	}
	return float64(cost) / float64(budget) * 25
}

func ratioComponent(count, distinct int, weight float64) float64 {
	if distinct <= 0 {
		return 0
	}
	return float64(count) / float64(distinct) * weight
}

func kitchenComponent(kitchenLoadPercent float64) float64 {
	if kitchenLoadPercent <= 0 || kitchenLoadPercent > 100 {
		return 0
	}
	return kitchenLoadPercent / 100 * 15
}

func distributionFairnessComponent(items []Item, qty map[string]int, total, people int) float64 {
	_, maxPct, _ := PortionParams(people)
	selected := selectedIDs(qty)
	if len(selected) < minDifferentItems || total <= 0 {
		return 0
	}
	minShare, maxShare := math.Inf(1), math.Inf(-1)
	for _, id := range selected {
		share := float64(qty[id]) / float64(total)
		if share < minShare {
			minShare = share
		}
		if share > maxShare {
			maxShare = share
		}
	}
	qtyRange := maxShare - minShare
	if qtyRange > maxPct {
		return 0
	}
	return 10 * (1 - qtyRange/maxPct)
}

func diversityComponent(distinct, people int) float64 {
	if distinct < minDifferentItems {
		return 0
	}
	denom := float64(people) / 5
	if denom < minDifferentItems {
		denom = minDifferentItems
	}
	ratio := float64(distinct) / denom
	if ratio > 1 {
		ratio = 1
	}
	return 10 * ratio
}
