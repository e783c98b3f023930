package backend

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/leafbound/bookstall/internal/domain/catalog"
)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository over the backend API.
type CatalogRepository struct {
	client *Client
}

// NewCatalogRepository returns a CatalogRepository using the given client.
func NewCatalogRepository(client *Client) *CatalogRepository {
	return &CatalogRepository{client: client}
}

// bookJSON mirrors the backend's book payload. The backend exposes both a
// purchase and a selling price; the storefront only surfaces the latter.
type bookJSON struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	Author       string          `json:"author"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	CoverImage   string          `json:"coverImage"`
	CategoryID   int64           `json:"categoryId"`
}

func (b bookJSON) toDomain() catalog.Book {
	return catalog.Book{
		ID:         b.ID,
		Title:      b.Title,
		Author:     b.Author,
		Price:      b.SellingPrice,
		CoverImage: b.CoverImage,
		CategoryID: b.CategoryID,
	}
}

// List returns the full catalog.
func (r *CatalogRepository) List(ctx context.Context) ([]catalog.Book, error) {
	var rows []bookJSON
	if err := r.client.get(ctx, "/api/books", &rows); err != nil {
		return nil, errors.Wrap(err, "list books")
	}

	books := make([]catalog.Book, len(rows))
	for i, row := range rows {
		books[i] = row.toDomain()
	}
	return books, nil
}

// GetByID returns a single book, or catalog.ErrNotFound.
func (r *CatalogRepository) GetByID(ctx context.Context, id int64) (*catalog.Book, error) {
	var row bookJSON
	err := r.client.get(ctx, "/api/books/"+strconv.FormatInt(id, 10), &row)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.Status == http.StatusNotFound {
			return nil, catalog.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get book %d", id)
	}

	b := row.toDomain()
	return &b, nil
}

// Categories returns the browsing categories.
func (r *CatalogRepository) Categories(ctx context.Context) ([]catalog.Category, error) {
	var rows []catalog.Category
	if err := r.client.get(ctx, "/api/categories", &rows); err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	return rows, nil
}
