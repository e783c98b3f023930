// Package checkout turns the visitor's cart into a submitted order against
// the backend order API.
package checkout

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Order is the submission payload for the backend order API. Amounts carry
// the display rounding applied at submission time.
type Order struct {
	ID        string          `json:"id"`
	Items     []OrderItem     `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Shipping  decimal.Decimal `json:"shipping"`
	Tax       decimal.Decimal `json:"tax"`
	Discount  decimal.Decimal `json:"discount"`
	Total     decimal.Decimal `json:"total"`
	PromoCode string          `json:"promoCode,omitempty"`
	Address   Address         `json:"address"`
	CreatedAt time.Time       `json:"createdAt"`
}

// OrderItem is a single purchased line.
type OrderItem struct {
	BookID    int64           `json:"bookId"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

// Address is the shipping destination collected by the checkout form.
type Address struct {
	Name    string `json:"name"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// Submitter submits a completed order to the backend, which owns payment and
// fulfillment.
type Submitter interface {
	Submit(ctx context.Context, o *Order) error
}
