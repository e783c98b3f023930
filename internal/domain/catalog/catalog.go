// Package catalog defines the read models the storefront consumes from the
// remote bookstore backend. All catalog data is owned by that backend; the
// storefront only holds value snapshots of it.
package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested book does not exist.
var ErrNotFound = errors.New("book not found")

// Book is a catalog item snapshot. Cart and favorites capture the Book value
// visible at add time and never re-fetch it, so fields here are plain values
// with no live reference back to the backend.
type Book struct {
	ID         int64           `json:"id"`
	Title      string          `json:"title"`
	Author     string          `json:"author"`
	Price      decimal.Decimal `json:"price"`
	CoverImage string          `json:"coverImage"`
	CategoryID int64           `json:"categoryId"`
}

// Category groups books for browsing.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Repository defines read operations against the backend catalog.
type Repository interface {
	List(ctx context.Context) ([]Book, error)
	GetByID(ctx context.Context, id int64) (*Book, error)
	Categories(ctx context.Context) ([]Category, error)
}
