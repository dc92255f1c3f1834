package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem is a purchased line as recorded at checkout.
type OrderItem struct {
	ID       int             `json:"id"`
	Title    string          `json:"title"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Order represents a finalized order.
type Order struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	CreatedAt   time.Time       `json:"createdAt"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Items       []OrderItem     `json:"items"`
}
