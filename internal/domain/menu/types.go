package menu

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("menu item not found")

// Item is one dish on the menu. ID is the external identifier the mini-app
// uses (slug-style, stable across price changes). Price is in whole rubles.
type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Price       int       `json:"price"`
	Weight      *string   `json:"weight,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	Category    string    `json:"category"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Store interface {
	List(ctx context.Context, category string, limit, offset int) ([]Item, int, error)
	GetByID(ctx context.Context, id string) (*Item, error)

	// PricesByIDs resolves current prices for the pricing engine. Ids that
	// are unknown or unavailable are absent from the result.
	PricesByIDs(ctx context.Context, ids []string) (map[string]int, error)
}
