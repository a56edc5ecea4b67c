// Package bundle implements the group meal bundle optimization engine: the
// shared data model, the constraint predicate every solver validates
// against, the composite scoring function, and the orchestrator that
// dispatches a request to one of three interchangeable solvers.
package bundle

// DietTag is a dietary category. Solvers process diets in this declared
// order: VEGAN, then VEGETARIAN, then MEAT.
type DietTag string

const (
	Vegan      DietTag = "VEGAN"
	Vegetarian DietTag = "VEGETARIAN"
	Meat       DietTag = "MEAT"
)

// dietOrder fixes the pass order greedy construction walks diets in.
var dietOrder = []DietTag{Vegan, Vegetarian, Meat}

// Rating thresholds for the derived predicates below. These are invariants
// of the data model, not configuration: they must never drift from these
// exact values.
const (
	goodRatingThreshold    = 0.85
	highlyRatedMinVotes    = 50
	popularMinVotes        = 100
)

// Item is a single per-serving unit a solver can select. It is the result
// of splitting a bulk menu entry (see internal/menuadapter) into indivisible
// serving-sized units.
type Item struct {
	ID             string
	Name           string
	PriceCents     int
	Diet           DietTag
	AvailableQty   int
	LoadPerServing int
	UpvoteCount    int
	DownvoteCount  int
	ReviewCount    int

	// rating and the three derived predicates are computed once at
	// construction (NewItem) and cached, so every caller sees the same
	// answer without recomputing the vote arithmetic.
	rating      float64
	goodRating  bool
	highlyRated bool
	popular     bool
}

// NewItem constructs an Item and precomputes its rating-derived predicates.
func NewItem(id, name string, priceCents int, diet DietTag, availableQty, loadPerServing, upvotes, downvotes, reviews int) Item {
	it := Item{
		ID:             id,
		Name:           name,
		PriceCents:     priceCents,
		Diet:           diet,
		AvailableQty:   availableQty,
		LoadPerServing: loadPerServing,
		UpvoteCount:    upvotes,
		DownvoteCount:  downvotes,
		ReviewCount:    reviews,
	}
	it.rating = computeRating(upvotes, downvotes)
	it.goodRating = it.rating >= goodRatingThreshold
	votes := upvotes + downvotes
	it.highlyRated = it.goodRating && votes >= highlyRatedMinVotes
	it.popular = it.goodRating && votes >= popularMinVotes
	return it
}

func computeRating(upvotes, downvotes int) float64 {
	total := upvotes + downvotes
	if total <= 0 {
		return 0
	}
	return float64(upvotes) / float64(total)
}

// Rating returns upvotes/(upvotes+downvotes), or 0 if there are no votes.
func (it Item) Rating() float64 { return it.rating }

// GoodRating reports whether Rating is at least 0.85.
func (it Item) GoodRating() bool { return it.goodRating }

// HighlyRated reports GoodRating with at least 50 total votes.
func (it Item) HighlyRated() bool { return it.highlyRated }

// Popular reports GoodRating with at least 100 total votes.
func (it Item) Popular() bool { return it.popular }

// TotalVotes returns UpvoteCount + DownvoteCount.
func (it Item) TotalVotes() int { return it.UpvoteCount + it.DownvoteCount }
