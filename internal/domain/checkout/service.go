package checkout

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/leafbound/bookstall/internal/domain/cart"
	"github.com/leafbound/bookstall/internal/promo"
)

// Sentinel errors for checkout validation.
var ErrEmptyCart = errors.New("cart is empty")

// PlaceOrderRequest holds the visitor's checkout form input.
type PlaceOrderRequest struct {
	PromoCode string
	Address   Address
}

// Service encapsulates order placement. It reads the cart, prices it,
// submits to the backend, and clears the cart exactly once on success. A
// failed submission leaves the cart intact for another attempt.
type Service struct {
	promos *promo.Set
	orders Submitter
	now    func() time.Time
}

// NewService creates a checkout Service.
func NewService(promos *promo.Set, orders Submitter) *Service {
	return &Service{
		promos: promos,
		orders: orders,
		now:    time.Now,
	}
}

// ValidatePromo checks a promo code against the given subtotal without
// placing an order; the cart summary uses it to preview the discount.
func (s *Service) ValidatePromo(code string, subtotal decimal.Decimal) (decimal.Decimal, error) {
	return s.promos.Validate(code, subtotal)
}

// PlaceOrder validates the cart and optional promo code, computes totals
// from current cart state, submits the order, and clears the cart after the
// backend reports success.
func (s *Service) PlaceOrder(ctx context.Context, c *cart.Store, req PlaceOrderRequest) (*Order, error) {
	lines := c.Items()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	subtotal := cart.ComputeTotals(lines, decimal.Zero).Subtotal

	discount := decimal.Zero
	if req.PromoCode != "" {
		d, err := s.promos.Validate(req.PromoCode, subtotal)
		if err != nil {
			return nil, errors.Wrap(err, "validate promo code")
		}
		discount = d
	}

	totals := cart.ComputeTotals(lines, discount)

	items := make([]OrderItem, len(lines))
	for i, ln := range lines {
		items[i] = OrderItem{
			BookID:    ln.Book.ID,
			Title:     ln.Book.Title,
			UnitPrice: ln.Book.Price,
			Quantity:  ln.Quantity,
		}
	}

	o := &Order{
		ID:        uuid.New().String(),
		Items:     items,
		Subtotal:  totals.Subtotal.Round(2),
		Shipping:  totals.Shipping.Round(2),
		Tax:       totals.Tax.Round(2),
		Discount:  totals.Discount.Round(2),
		Total:     totals.Total.Round(2),
		PromoCode: req.PromoCode,
		Address:   req.Address,
		CreatedAt: s.now().UTC(),
	}

	if err := s.orders.Submit(ctx, o); err != nil {
		return nil, errors.Wrap(err, "submit order")
	}

	// The backend accepted the order; the cart's job is done.
	c.Clear()

	return o, nil
}
