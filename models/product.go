package models

import "github.com/shopspring/decimal"

// Product is a catalog entry. Products are never mutated after the catalog is loaded.
type Product struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Category    string          `json:"category"`
	Brand       string          `json:"brand"`
	Price       decimal.Decimal `json:"price"`
	Rating      float64         `json:"rating"`
	Thumbnail   string          `json:"thumbnail"`
	Description string          `json:"description"`
}
