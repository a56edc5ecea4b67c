package greedysolver

import (
	"context"
	"reflect"
	"testing"

	"github.com/fdg312/health-hub/internal/bundle"
)

func items3Meat() []bundle.Item {
	return []bundle.Item{
		bundle.NewItem("a", "a", 1000, bundle.Meat, 100, 1, 0, 0, 0),
		bundle.NewItem("b", "b", 1100, bundle.Meat, 100, 1, 0, 0, 0),
		bundle.NewItem("c", "c", 1200, bundle.Meat, 100, 1, 0, 0, 0),
	}
}

func req3() bundle.Request {
	return bundle.Request{People: 3, MaxPricePerPersonCents: 2000, RequiredByDiet: map[bundle.DietTag]int{bundle.Meat: 3}, TopN: 1}
}

func TestSameSeedIsDeterministic(t *testing.T) {
	items := items3Meat()
	req := req3()

	s1 := New(7)
	sol1, err := s1.Solve(context.Background(), items, req, 100, 1)
	if err != nil {
		t.Fatalf("solve 1: %v", err)
	}
	s2 := New(7)
	sol2, err := s2.Solve(context.Background(), items, req, 100, 1)
	if err != nil {
		t.Fatalf("solve 2: %v", err)
	}
	if len(sol1) != 1 || len(sol2) != 1 {
		t.Fatalf("expected 1 solution each, got %d and %d", len(sol1), len(sol2))
	}
	if !reflect.DeepEqual(sol1[0].Items, sol2[0].Items) {
		t.Fatalf("same seed produced different bundles: %v vs %v", sol1[0].Items, sol2[0].Items)
	}
}

func TestSolveProducesValidBundle(t *testing.T) {
	items := items3Meat()
	req := req3()

	solver := New(1)
	solutions, err := solver.Solve(context.Background(), items, req, 100, 2)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if len(solutions) == 0 {
		t.Fatal("expected at least one solution")
	}
	for _, sol := range solutions {
		if err := bundle.Validate(items, sol.Items, req, 100); err != nil {
			t.Errorf("greedy solution failed validation: %v", err)
		}
		if sol.OptimalityScore < 60 || sol.OptimalityScore > 80 {
			t.Errorf("greedy score %d outside [60,80]", sol.OptimalityScore)
		}
	}
}

func TestSolveStopsOnDietUnsatisfiable(t *testing.T) {
	items := []bundle.Item{bundle.NewItem("a", "a", 1000, bundle.Meat, 1, 1, 0, 0, 0)}
	req := bundle.Request{People: 5, MaxPricePerPersonCents: 2000, RequiredByDiet: map[bundle.DietTag]int{bundle.Meat: 5}, TopN: 3}

	solver := New(1)
	solutions, err := solver.Solve(context.Background(), items, req, 100, 3)
	if err != nil {
		t.Fatalf("solve should not return an error, got %v", err)
	}
	if len(solutions) != 0 {
		t.Fatalf("expected no solutions for unsatisfiable diet requirement, got %d", len(solutions))
	}
}
