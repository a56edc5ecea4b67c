package menuadapter

import (
	"testing"

	"github.com/fdg312/health-hub/internal/bundle"
)

func TestSplitCeilingDivision(t *testing.T) {
	in := MenuItemInput{ID: "pizza", Name: "Pizza", PriceCents: 1000, Serves: 3, Diet: bundle.Vegetarian, Stock: 10, Load: 2}
	items := Split(in)
	if len(items) != 3 {
		t.Fatalf("want 3 items, got %d", len(items))
	}
	// ceil(1000/3) = 334
	for i, it := range items {
		if it.PriceCents != 334 {
			t.Errorf("item %d price = %d, want 334", i, it.PriceCents)
		}
		// floor(10/3) = 3
		if it.AvailableQty != 3 {
			t.Errorf("item %d stock = %d, want 3", i, it.AvailableQty)
		}
	}
	if items[0].ID != "pizza#1" || items[2].ID != "pizza#3" {
		t.Errorf("unexpected ids: %s, %s", items[0].ID, items[2].ID)
	}
}

func TestSplitOverstatesCostByUpToServesMinusOneCents(t *testing.T) {
	// Documented quirk: ceiling division can overstate total cost by up to
	// serves-1 cents per expanded bulk item. Not reconciled, per design.
	in := MenuItemInput{ID: "x", Name: "x", PriceCents: 1000, Serves: 3, Diet: bundle.Meat, Stock: 300, Load: 1}
	items := Split(in)
	perServing := items[0].PriceCents
	overstatement := perServing*in.Serves - in.PriceCents
	if overstatement < 0 || overstatement > in.Serves-1 {
		t.Fatalf("overstatement %d outside [0, serves-1]", overstatement)
	}
}

func TestSplitZeroServesContributesNothing(t *testing.T) {
	in := MenuItemInput{ID: "x", PriceCents: 500, Serves: 0, Diet: bundle.Meat, Stock: 10, Load: 1}
	if items := Split(in); items != nil {
		t.Fatalf("want nil for serves<=0, got %v", items)
	}
}

func TestSplitZeroPerServingStockContributesNothing(t *testing.T) {
	in := MenuItemInput{ID: "x", PriceCents: 500, Serves: 10, Diet: bundle.Meat, Stock: 5, Load: 1}
	if items := Split(in); items != nil {
		t.Fatalf("want nil when per-serving stock rounds to 0, got %v", items)
	}
}

func TestSplitCarriesRating(t *testing.T) {
	in := MenuItemInput{
		ID: "x", PriceCents: 500, Serves: 1, Diet: bundle.Vegan, Stock: 10, Load: 1,
		Rating: &Rating{UpvoteCount: 900, DownvoteCount: 100, ReviewCount: 1000},
	}
	items := Split(in)
	if len(items) != 1 {
		t.Fatalf("want 1 item, got %d", len(items))
	}
	if !items[0].Popular() {
		t.Errorf("expected rating to carry through to Popular()")
	}
}
