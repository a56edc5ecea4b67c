package cpsolver

import (
	"github.com/google/or-tools/ortools/sat/go/cpmodel"

	"github.com/fdg312/health-hub/internal/bundle"
)

// bigM dwarfs the per-item bonus terms in the objective so cost always
// dominates; bonuses only break ties between otherwise-equal-cost plans.
const bigM = 1000

// pairwiseSkipThreshold is the menu size beyond which the O(N^2) pairwise
// fair-distribution constraint is restricted to item pairs that can
// plausibly both be selected, per the spec's permitted optimization.
const pairwiseSkipThreshold = 50

// buildState holds everything extracted while constructing one CP model,
// so the caller can read back variable assignments from the solver
// response without re-deriving the item ordering.
type buildState struct {
	model *cpmodel.CpModelBuilder
	items []bundle.Item
	x     []cpmodel.IntVar
	y     []cpmodel.BoolVar
}

// buildModel constructs one CP-SAT model for items/req/kitchenCap, with a
// diversity cut against every solution in priorSolutions (keyed by item
// ID -> qty).
func buildModel(items []bundle.Item, req bundle.Request, kitchenCap int, priorSolutions []map[string]int, minSolutionDiversityPercent int) *buildState {
	model := cpmodel.NewCpModelBuilder()
	n := len(items)

	st := &buildState{model: model, items: items}
	st.x = make([]cpmodel.IntVar, n)
	st.y = make([]cpmodel.BoolVar, n)

	for i, it := range items {
		st.x[i] = model.NewIntVar(0, int64(it.AvailableQty))
		st.y[i] = model.NewBoolVar()
		linkAtLeastOne(model, st.x[i], st.y[i])
	}

	addDemand(model, st.x, req.People)
	addPerDietDemand(model, items, st.x, req.RequiredByDiet)
	addBudget(model, items, st.x, req.Budget())
	addKitchenCap(model, items, st.x, kitchenCap)
	addMinVariety(model, st.y, req.People)
	addPortionBounds(model, st.x, st.y, req.People)
	addPairwiseSpread(model, items, st.x, st.y, req.People)

	for _, prior := range priorSolutions {
		addDiversityCut(model, items, st.x, prior, minSolutionDiversityPercent)
	}

	addObjective(model, items, st.x)

	return st
}

// linkAtLeastOne encodes indicator <=> (v >= 1) with two conditional
// constraints, the pattern used throughout this solver for every linked
// boolean: selection (y), pairwise AND (z), and diversity (diff).
func linkAtLeastOne(model *cpmodel.CpModelBuilder, v cpmodel.IntVar, indicator cpmodel.BoolVar) {
	model.AddGreaterOrEqual(v, cpmodel.NewConstant(1)).OnlyEnforceIf(indicator)
	model.AddEquality(v, cpmodel.NewConstant(0)).OnlyEnforceIf(indicator.Not())
}

func addDemand(model *cpmodel.CpModelBuilder, x []cpmodel.IntVar, people int) {
	expr := cpmodel.NewLinearExpr()
	for _, v := range x {
		expr.AddTerm(v, 1)
	}
	model.AddGreaterOrEqual(expr, cpmodel.NewConstant(int64(people)))
}

func addPerDietDemand(model *cpmodel.CpModelBuilder, items []bundle.Item, x []cpmodel.IntVar, required map[bundle.DietTag]int) {
	for diet, r := range required {
		if r <= 0 {
			continue
		}
		expr := cpmodel.NewLinearExpr()
		for i, it := range items {
			if it.Diet == diet {
				expr.AddTerm(x[i], 1)
			}
		}
		model.AddGreaterOrEqual(expr, cpmodel.NewConstant(int64(r)))
	}
}

func addBudget(model *cpmodel.CpModelBuilder, items []bundle.Item, x []cpmodel.IntVar, budget int) {
	expr := cpmodel.NewLinearExpr()
	for i, it := range items {
		expr.AddTerm(x[i], int64(it.PriceCents))
	}
	model.AddLessOrEqual(expr, cpmodel.NewConstant(int64(budget)))
}

func addKitchenCap(model *cpmodel.CpModelBuilder, items []bundle.Item, x []cpmodel.IntVar, kitchenCap int) {
	expr := cpmodel.NewLinearExpr()
	for i, it := range items {
		expr.AddTerm(x[i], int64(it.LoadPerServing))
	}
	model.AddLessOrEqual(expr, cpmodel.NewConstant(int64(kitchenCap)))
}

func addMinVariety(model *cpmodel.CpModelBuilder, y []cpmodel.BoolVar, people int) {
	minVariety := 2
	if people < minVariety {
		minVariety = people
	}
	expr := cpmodel.NewLinearExpr()
	for _, v := range y {
		expr.AddTerm(v, 1)
	}
	model.AddGreaterOrEqual(expr, cpmodel.NewConstant(int64(minVariety)))
}

// addPortionBounds enforces, for each item, 100*x[i] <= floor(maxPct*100)*T
// unconditionally, and 100*x[i] >= floor(minPct*100)*T only when y[i]=1 (the
// lower bound is otherwise implied: x[i]=0 trivially satisfies it only if
// minPct*T <= 0, so it must stay conditional on selection).
func addPortionBounds(model *cpmodel.CpModelBuilder, x []cpmodel.IntVar, y []cpmodel.BoolVar, people int) {
	minPct, maxPct, _ := bundle.PortionParams(people)
	minPctScaled := int64(minPct * 100)
	maxPctScaled := int64(maxPct * 100)

	for i := range x {
		// 100*x[i] - maxPctScaled*T <= 0, unconditional.
		upper := scaledDifference(x, i, 100, maxPctScaled)
		model.AddLessOrEqual(upper, cpmodel.NewConstant(0))

		// 100*x[i] - minPctScaled*T >= 0, only when y[i]=1.
		lower := scaledDifference(x, i, 100, minPctScaled)
		model.AddGreaterOrEqual(lower, cpmodel.NewConstant(0)).OnlyEnforceIf(y[i])
	}
}

// scaledDifference builds selfCoeff*x[idx] - totalCoeff*sum(x), the linear
// form every portion-band check reduces to.
func scaledDifference(x []cpmodel.IntVar, idx int, selfCoeff, totalCoeff int64) *cpmodel.LinearExpr {
	expr := cpmodel.NewLinearExpr()
	for i, v := range x {
		coeff := -totalCoeff
		if i == idx {
			coeff += selfCoeff
		}
		expr.AddTerm(v, coeff)
	}
	return expr
}

func addPairwiseSpread(model *cpmodel.CpModelBuilder, items []bundle.Item, x []cpmodel.IntVar, y []cpmodel.BoolVar, people int) {
	_, _, rangeFrac := bundle.PortionParams(people)
	bound := int64(rangeFrac * float64(people) * 0.8)
	n := len(items)
	skipUnreachable := n > pairwiseSkipThreshold

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if skipUnreachable && !canBothBeSelected(items[i], items[j], people) {
				continue
			}
			z := model.NewBoolVar()
			model.AddBoolAnd([]cpmodel.Literal{y[i], y[j]}).OnlyEnforceIf(z)
			model.AddBoolOr([]cpmodel.Literal{y[i].Not(), y[j].Not()}).OnlyEnforceIf(z.Not())

			diffUp := cpmodel.NewLinearExpr()
			diffUp.AddTerm(x[i], 1)
			diffUp.AddTerm(x[j], -1)
			model.AddLessOrEqual(diffUp, cpmodel.NewConstant(bound)).OnlyEnforceIf(z)

			diffDown := cpmodel.NewLinearExpr()
			diffDown.AddTerm(x[j], 1)
			diffDown.AddTerm(x[i], -1)
			model.AddLessOrEqual(diffDown, cpmodel.NewConstant(bound)).OnlyEnforceIf(z)
		}
	}
}

// canBothBeSelected is the §9 pairwise-explosion mitigation: skip
// constraining pairs whose combined stock cannot plausibly cover demand,
// since such a pair can never both be selected in a feasible solution
// anyway.
func canBothBeSelected(a, b bundle.Item, people int) bool {
	if a.AvailableQty == 0 || b.AvailableQty == 0 {
		return false
	}
	return a.AvailableQty+b.AvailableQty >= people
}

func addDiversityCut(model *cpmodel.CpModelBuilder, items []bundle.Item, x []cpmodel.IntVar, prior map[string]int, minSolutionDiversityPercent int) {
	priorTotal := 0
	for _, q := range prior {
		priorTotal += q
	}
	threshold := int64(priorTotal) * int64(minSolutionDiversityPercent)
	threshold = ceilDiv(threshold, 100)
	if threshold < 1 {
		threshold = 1
	}

	sumExpr := cpmodel.NewLinearExpr()
	for i, it := range items {
		priorQty := int64(prior[it.ID])
		maxDiff := int64(it.AvailableQty)
		if priorQty > maxDiff {
			maxDiff = priorQty
		}

		diffVar := model.NewIntVar(0, maxDiff)

		// aboveOrEqual <=> x[i] >= priorQty, then diffVar is channeled to
		// equal exactly x[i]-priorQty or priorQty-x[i] depending on which
		// side x[i] falls on, so diffVar == |x[i]-priorQty| always -- a
		// one-sided bound here would let the solver set diffVar nonzero
		// without x[i] actually having moved off priorQty.
		aboveOrEqual := model.NewBoolVar()
		cmp := cpmodel.NewLinearExpr()
		cmp.AddTerm(x[i], 1)
		model.AddGreaterOrEqual(cmp, cpmodel.NewConstant(priorQty)).OnlyEnforceIf(aboveOrEqual)
		model.AddLessThan(cmp, cpmodel.NewConstant(priorQty)).OnlyEnforceIf(aboveOrEqual.Not())

		up := cpmodel.NewLinearExpr()
		up.AddTerm(x[i], 1)
		up.AddTerm(diffVar, -1)
		model.AddEquality(up, cpmodel.NewConstant(priorQty)).OnlyEnforceIf(aboveOrEqual)

		down := cpmodel.NewLinearExpr()
		down.AddTerm(x[i], 1)
		down.AddTerm(diffVar, 1)
		model.AddEquality(down, cpmodel.NewConstant(priorQty)).OnlyEnforceIf(aboveOrEqual.Not())

		indicator := model.NewBoolVar()
		linkAtLeastOne(model, diffVar, indicator)

		sumExpr.AddTerm(indicator, 1)
	}

	model.AddGreaterOrEqual(sumExpr, cpmodel.NewConstant(threshold))
}

func ceilDiv(a, b int64) int64 {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

func addObjective(model *cpmodel.CpModelBuilder, items []bundle.Item, x []cpmodel.IntVar) {
	obj := cpmodel.NewLinearExpr()
	for i, it := range items {
		bonus := diversityAndRatingBonus(it)
		coeff := int64(it.PriceCents)*bigM - bonus
		obj.AddTerm(x[i], coeff)
	}
	model.Minimize(obj)
}

// diversityAndRatingBonus computes bonus[i] = popularity_bonus + rating_bonus + diversity_bonus.
func diversityAndRatingBonus(it bundle.Item) int64 {
	var bonus int64
	if it.Popular() {
		bonus += 1
	}
	switch {
	case it.HighlyRated():
		bonus += 2
	case it.GoodRating():
		bonus += 1
	}
	bonus += 1 // diversity_bonus, always awarded
	return bonus
}
