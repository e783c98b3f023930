package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/leafbound/bookstall/internal/domain/checkout"
	"github.com/leafbound/bookstall/internal/promo"
)

type checkoutRequest struct {
	PromoCode string `json:"promoCode"`
	Address   struct {
		Name    string `json:"name"`
		Street  string `json:"street"`
		City    string `json:"city"`
		State   string `json:"state"`
		Zip     string `json:"zip"`
		Country string `json:"country"`
	} `json:"address"`
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	v := h.sessions.FromRequest(w, r)

	order, err := h.checkout.PlaceOrder(r.Context(), v.Cart, checkout.PlaceOrderRequest{
		PromoCode: req.PromoCode,
		Address: checkout.Address{
			Name:    req.Address.Name,
			Street:  req.Address.Street,
			City:    req.Address.City,
			State:   req.Address.State,
			Zip:     req.Address.Zip,
			Country: req.Address.Country,
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			writeError(w, r, http.StatusBadRequest, "cart is empty")
		case errors.Is(err, promo.ErrInvalidCode):
			writeError(w, r, http.StatusUnprocessableEntity, "invalid promo code")
		default:
			zctx.From(r.Context()).Error("Place order", zap.Error(err))
			writeError(w, r, http.StatusBadGateway, "order submission failed")
		}
		return
	}

	writeJSON(w, r, http.StatusCreated, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("id")
		e.Str(order.ID)
		e.FieldStart("subtotal")
		encodeMoney(e, order.Subtotal)
		e.FieldStart("shipping")
		encodeMoney(e, order.Shipping)
		e.FieldStart("tax")
		encodeMoney(e, order.Tax)
		e.FieldStart("discount")
		encodeMoney(e, order.Discount)
		e.FieldStart("total")
		encodeMoney(e, order.Total)
		e.FieldStart("createdAt")
		e.Str(order.CreatedAt.Format(time.RFC3339))
		e.ObjEnd()
	})
}
