package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/fdg312/health-hub/internal/bundle"
	"github.com/fdg312/health-hub/internal/menuadapter"
	"github.com/fdg312/health-hub/internal/storage"
	"github.com/fdg312/health-hub/internal/userctx"
)

// PlanBundlesRequest is the decoded body of POST /v1/bundles:plan: a
// headcount, a per-person price ceiling, per-diet minimums, how many
// ranked bundles to return, the kitchen's load capacity, which solver to
// run, and the bulk menu to plan against.
type PlanBundlesRequest struct {
	People                 int            `json:"people"`
	MaxPricePerPersonCents int            `json:"max_price_per_person_cents"`
	RequiredByDiet         map[string]int `json:"required_by_diet"`
	TopN                   int            `json:"top_n"`
	KitchenCapacity        int            `json:"kitchen_capacity"`
	Solver                 string         `json:"solver"`

	Items []menuadapter.MenuItemInput `json:"items"`
}

// SolutionItemDTO is the wire form of one item line within a solution.
type SolutionItemDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Qty        int    `json:"qty"`
	PriceCents int    `json:"price_cents"`
}

// SolutionDTO is the wire form of one ranked bundle.
type SolutionDTO struct {
	Items                []SolutionItemDTO `json:"items"`
	TotalCost            int               `json:"total_cost_cents"`
	AverageCostPerPerson int               `json:"average_cost_per_person_cents"`
	PopularItemsPercent  float64           `json:"popular_items_percent"`
	KitchenLoadPercent   float64           `json:"kitchen_load_percent"`
	OptimalityScore      int               `json:"optimality_score"`
	FindingTimeMs        int64             `json:"finding_time_ms"`
}

// PlanBundlesResponse is the wire form of a bundle.Comparison.
type PlanBundlesResponse struct {
	ComparisonID  string        `json:"comparison_id,omitempty"`
	Solutions     []SolutionDTO `json:"solutions"`
	SolverType    string        `json:"solver_type"`
	FindingTimeMs int64         `json:"finding_time_ms"`
	Reason        string        `json:"reason,omitempty"`
}

// handlePlanBundles handles POST /v1/bundles:plan: it splits the bulk menu
// into serving units, dispatches the request to the chosen solver via the
// orchestrator, persists the outcome for audit history, and returns the
// ranked comparison.
func (s *Server) handlePlanBundles(w http.ResponseWriter, r *http.Request) {
	var req PlanBundlesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.People <= 0 {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "people must be positive")
		return
	}
	if req.MaxPricePerPersonCents <= 0 {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "max_price_per_person_cents must be positive")
		return
	}

	kind := bundle.SolverKind(req.Solver)
	switch kind {
	case bundle.SolverMILP, bundle.SolverGreedy, bundle.SolverBruteForce:
	case "":
		kind = bundle.SolverGreedy
	default:
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "solver must be MILP, GREEDY or BRUTE_FORCE")
		return
	}

	requiredByDiet := make(map[bundle.DietTag]int, len(req.RequiredByDiet))
	for diet, n := range req.RequiredByDiet {
		requiredByDiet[bundle.DietTag(diet)] = n
	}

	bundleReq := bundle.Request{
		People:                 req.People,
		MaxPricePerPersonCents: req.MaxPricePerPersonCents,
		RequiredByDiet:         requiredByDiet,
		TopN:                   req.TopN,
	}
	if bundleReq.TopN <= 0 {
		bundleReq.TopN = 3
	}

	items := menuadapter.SplitAll(req.Items)

	comparison, err := s.orchestrator.Build(r.Context(), bundleReq, items, req.KitchenCapacity, kind)
	if err != nil {
		if errors.Is(err, bundle.ErrEmptyMenu) {
			writeJSONError(w, http.StatusBadRequest, "empty_menu", "menu has no items in stock")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	comparisonID := s.persistComparison(r.Context(), bundleReq, comparison)

	resp := toPlanResponse(comparisonID, comparison)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// persistComparison records the planning outcome as audit history. A
// persistence failure is logged, not returned — losing the audit row must
// never fail a planning request that already succeeded.
func (s *Server) persistComparison(ctx context.Context, req bundle.Request, cmp bundle.Comparison) string {
	requestPayload, err := json.Marshal(req)
	if err != nil {
		log.Printf("WARN persistComparison: marshal request: %v", err)
		return ""
	}
	resultPayload, err := json.Marshal(cmp)
	if err != nil {
		log.Printf("WARN persistComparison: marshal result: %v", err)
		return ""
	}

	rec := &storage.ComparisonRecord{
		People:                 req.People,
		MaxPricePerPersonCents: req.MaxPricePerPersonCents,
		RecommendedSolver:      string(cmp.SolverType),
		RequestPayload:         requestPayload,
		ResultPayload:          resultPayload,
		Status:                 "planned",
	}
	if len(cmp.Solutions) > 0 {
		rec.RecommendedScore = cmp.Solutions[0].OptimalityScore
	}
	if userID, ok := userctx.GetUserID(ctx); ok {
		rec.RequestedBy = userID
	}

	if err := s.storage.CreateComparison(ctx, rec); err != nil {
		log.Printf("WARN persistComparison: create comparison: %v", err)
		return ""
	}
	return rec.ID.String()
}

func toPlanResponse(comparisonID string, cmp bundle.Comparison) PlanBundlesResponse {
	solutions := make([]SolutionDTO, 0, len(cmp.Solutions))
	for _, sol := range cmp.Solutions {
		solutions = append(solutions, SolutionDTO{
			Items:                toSolutionItemDTOs(sol),
			TotalCost:            sol.TotalCost,
			AverageCostPerPerson: sol.AverageCostPerPerson,
			PopularItemsPercent:  sol.PopularItemsPercent,
			KitchenLoadPercent:   sol.KitchenLoadPercent,
			OptimalityScore:      sol.OptimalityScore,
			FindingTimeMs:        sol.FindingTimeMs,
		})
	}
	return PlanBundlesResponse{
		ComparisonID:  comparisonID,
		Solutions:     solutions,
		SolverType:    string(cmp.SolverType),
		FindingTimeMs: cmp.FindingTimeMs,
		Reason:        cmp.Reason,
	}
}

// toSolutionItemDTOs resolves each item ID in a solution to its name and
// price via the solution's own ItemByID snapshot, so the wire form never
// needs a second lookup against the live menu.
func toSolutionItemDTOs(sol bundle.Solution) []SolutionItemDTO {
	items := make([]SolutionItemDTO, 0, len(sol.Items))
	for id, qty := range sol.Items {
		it := sol.ItemByID[id]
		items = append(items, SolutionItemDTO{
			ID:         id,
			Name:       it.Name,
			Qty:        qty,
			PriceCents: it.PriceCents,
		})
	}
	return items
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
