// Package handler exposes the storefront HTTP surface: catalog browsing,
// per-visitor cart and favorites operations, and checkout. Handlers own no
// state; all cart and favorites mutation flows through the visitor's stores.
package handler

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/leafbound/bookstall/internal/domain/catalog"
	"github.com/leafbound/bookstall/internal/domain/checkout"
	"github.com/leafbound/bookstall/internal/session"
)

// Handler serves the storefront API.
type Handler struct {
	catalog  catalog.Repository
	sessions *session.Manager
	checkout *checkout.Service
}

// New constructs a Handler with its collaborators.
func New(books catalog.Repository, sessions *session.Manager, co *checkout.Service) *Handler {
	return &Handler{
		catalog:  books,
		sessions: sessions,
		checkout: co,
	}
}

// Register mounts all storefront routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/books", h.listBooks)
	mux.HandleFunc("GET /api/books/{id}", h.getBook)
	mux.HandleFunc("GET /api/categories", h.listCategories)

	mux.HandleFunc("GET /api/cart", h.getCart)
	mux.HandleFunc("POST /api/cart/items", h.addCartItem)
	mux.HandleFunc("PATCH /api/cart/items/{id}", h.updateCartItem)
	mux.HandleFunc("DELETE /api/cart/items/{id}", h.removeCartItem)
	mux.HandleFunc("DELETE /api/cart", h.clearCart)
	mux.HandleFunc("GET /api/cart/summary", h.cartSummary)

	mux.HandleFunc("GET /api/favorites", h.listFavorites)
	mux.HandleFunc("PUT /api/favorites/{id}", h.addFavorite)
	mux.HandleFunc("DELETE /api/favorites/{id}", h.removeFavorite)
	mux.HandleFunc("DELETE /api/favorites", h.clearFavorites)

	mux.HandleFunc("POST /api/checkout", h.placeOrder)
}

// writeJSON streams a jx-encoded body with the given status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, encode func(e *jx.Encoder)) {
	var e jx.Encoder
	encode(&e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(e.Bytes()); err != nil {
		zctx.From(r.Context()).Debug("Write response", zap.Error(err))
	}
}

// writeError emits the API's error envelope.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("code")
		e.Int(status)
		e.FieldStart("message")
		e.Str(message)
		e.ObjEnd()
	})
}
