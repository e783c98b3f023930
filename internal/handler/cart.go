package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/leafbound/bookstall/internal/domain/cart"
	"github.com/leafbound/bookstall/internal/domain/catalog"
	"github.com/leafbound/bookstall/internal/promo"
)

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	v := h.sessions.FromRequest(w, r)
	writeCart(w, r, v.Cart)
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BookID int64 `json:"bookId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	// Snapshot the book as it is right now; the cart never re-fetches it.
	b, err := h.catalog.GetByID(r.Context(), req.BookID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, r, http.StatusUnprocessableEntity, "book not found")
			return
		}
		zctx.From(r.Context()).Error("Snapshot book", zap.Int64("id", req.BookID), zap.Error(err))
		writeError(w, r, http.StatusBadGateway, "catalog unavailable")
		return
	}

	v := h.sessions.FromRequest(w, r)
	v.Cart.Add(*b)
	writeCart(w, r, v.Cart)
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid book id")
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	v := h.sessions.FromRequest(w, r)
	v.Cart.UpdateQuantity(catalog.Book{ID: id}, req.Quantity)
	writeCart(w, r, v.Cart)
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid book id")
		return
	}

	v := h.sessions.FromRequest(w, r)
	v.Cart.Remove(catalog.Book{ID: id})
	writeCart(w, r, v.Cart)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	v := h.sessions.FromRequest(w, r)
	v.Cart.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) cartSummary(w http.ResponseWriter, r *http.Request) {
	v := h.sessions.FromRequest(w, r)

	discount := decimal.Zero
	if code := r.URL.Query().Get("promo"); code != "" {
		subtotal := v.Cart.Totals(decimal.Zero).Subtotal
		d, err := h.checkout.ValidatePromo(code, subtotal)
		if err != nil {
			if errors.Is(err, promo.ErrInvalidCode) {
				writeError(w, r, http.StatusUnprocessableEntity, "invalid promo code")
				return
			}
			writeError(w, r, http.StatusInternalServerError, "promo validation failed")
			return
		}
		discount = d
	}

	totals := v.Cart.Totals(discount)
	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("itemCount")
		e.Int(v.Cart.ItemCount())
		e.FieldStart("subtotal")
		encodeMoney(e, totals.Subtotal)
		e.FieldStart("shipping")
		encodeMoney(e, totals.Shipping)
		e.FieldStart("tax")
		encodeMoney(e, totals.Tax)
		e.FieldStart("discount")
		encodeMoney(e, totals.Discount)
		e.FieldStart("total")
		encodeMoney(e, totals.Total)
		e.ObjEnd()
	})
}

// writeCart renders the cart contents plus the badge count.
func writeCart(w http.ResponseWriter, r *http.Request, c *cart.Store) {
	items := c.Items()
	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("items")
		e.ArrStart()
		for _, ln := range items {
			e.ObjStart()
			e.FieldStart("book")
			catalog.EncodeBook(e, ln.Book)
			e.FieldStart("quantity")
			e.Int(ln.Quantity)
			e.ObjEnd()
		}
		e.ArrEnd()
		e.FieldStart("itemCount")
		e.Int(c.ItemCount())
		e.ObjEnd()
	})
}

// encodeMoney writes an amount rounded per the display convention.
func encodeMoney(e *jx.Encoder, d decimal.Decimal) {
	e.RawStr(d.Round(2).StringFixed(2))
}
