package cpsolver

import (
	"testing"

	"github.com/fdg312/health-hub/internal/bundle"
)

func TestDiversityAndRatingBonus(t *testing.T) {
	popular := bundle.NewItem("a", "a", 100, bundle.Meat, 10, 1, 900, 100, 1000)
	if got := diversityAndRatingBonus(popular); got != 1+2+1 {
		t.Fatalf("popular+highly-rated bonus = %d, want 4", got)
	}

	plain := bundle.NewItem("b", "b", 100, bundle.Meat, 10, 1, 0, 0, 0)
	if got := diversityAndRatingBonus(plain); got != 1 {
		t.Fatalf("plain item bonus = %d, want 1 (diversity only)", got)
	}
}

func TestCanBothBeSelected(t *testing.T) {
	a := bundle.NewItem("a", "a", 100, bundle.Meat, 5, 1, 0, 0, 0)
	b := bundle.NewItem("b", "b", 100, bundle.Meat, 5, 1, 0, 0, 0)
	if !canBothBeSelected(a, b, 8) {
		t.Fatalf("combined stock 10 >= people 8 should be eligible")
	}
	if canBothBeSelected(a, b, 20) {
		t.Fatalf("combined stock 10 < people 20 should be skipped")
	}

	zero := bundle.NewItem("z", "z", 100, bundle.Meat, 0, 1, 0, 0, 0)
	if canBothBeSelected(a, zero, 1) {
		t.Fatalf("zero-stock item should never be eligible")
	}
}

func TestCeilDiv(t *testing.T) {
	cases := []struct{ a, b, want int64 }{
		{10, 3, 4},
		{9, 3, 3},
		{0, 5, 0},
		{1, 100, 1},
	}
	for _, tc := range cases {
		if got := ceilDiv(tc.a, tc.b); got != tc.want {
			t.Errorf("ceilDiv(%d,%d) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}
