// Package menusource declares the external collaborators that populate
// menu entries and their ratings. Only the interfaces and a thin
// HTTP-backed implementation live here; internal/bundle never imports this
// package, matching the teacher's internal/ai.Provider pattern of a
// swappable external dependency behind a small interface.
package menusource

import (
	"context"

	"github.com/fdg312/health-hub/internal/menuadapter"
)

// MenuFetcher returns the current bulk menu for a given restaurant/kitchen.
type MenuFetcher interface {
	FetchMenu(ctx context.Context, kitchenID string) ([]menuadapter.MenuItemInput, error)
}

// RatingFetcher returns the current vote summary for a menu entry. It is
// kept separate from MenuFetcher because ratings often come from a
// different, slower-changing service than price/stock.
type RatingFetcher interface {
	FetchRating(ctx context.Context, itemID string) (*menuadapter.Rating, error)
}
