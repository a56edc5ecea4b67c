// Package menuadapter expands bulk menu entries into the per-serving
// internal/bundle.Item units the solvers operate on.
package menuadapter

import (
	"fmt"

	"github.com/fdg312/health-hub/internal/bundle"
)

// Rating is the optional vote summary on a menu entry.
type Rating struct {
	UpvoteCount   int
	DownvoteCount int
	ReviewCount   int
}

// MenuItemInput is one bulk menu entry as received from the menu source.
type MenuItemInput struct {
	ID         string
	Name       string
	PriceCents int
	Serves     int
	Diet       bundle.DietTag
	Stock      int
	Load       int
	Rating     *Rating
}

// Split expands one bulk entry into up to Serves distinct per-serving
// bundle.Item values, id "{id}#{n}" for n in 1..Serves. Per-serving price
// is ceil(priceCents/serves); per-serving stock is floor(stock/serves).
// If Serves<=0 or the resulting per-serving stock is 0, the item
// contributes nothing -- Split returns an empty slice, not an error; this
// mirrors "bulk item temporarily unavailable", which is not a caller error.
func Split(in MenuItemInput) []bundle.Item {
	if in.Serves <= 0 {
		return nil
	}

	perServingPrice := ceilDiv(in.PriceCents, in.Serves)
	perServingStock := in.Stock / in.Serves
	if perServingStock <= 0 {
		return nil
	}

	upvotes, downvotes, reviews := 0, 0, 0
	if in.Rating != nil {
		upvotes, downvotes, reviews = in.Rating.UpvoteCount, in.Rating.DownvoteCount, in.Rating.ReviewCount
	}

	items := make([]bundle.Item, 0, in.Serves)
	for n := 1; n <= in.Serves; n++ {
		id := fmt.Sprintf("%s#%d", in.ID, n)
		items = append(items, bundle.NewItem(id, in.Name, perServingPrice, in.Diet, perServingStock, in.Load, upvotes, downvotes, reviews))
	}
	return items
}

// SplitAll applies Split to every entry and concatenates the results.
func SplitAll(entries []MenuItemInput) []bundle.Item {
	var out []bundle.Item
	for _, in := range entries {
		out = append(out, Split(in)...)
	}
	return out
}

func ceilDiv(a, b int) int {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}
