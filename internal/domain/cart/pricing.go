package cart

import "github.com/shopspring/decimal"

// Storefront pricing policy: flat shipping fee waived above the free-shipping
// threshold, sales tax as a fixed fraction of the subtotal.
var (
	freeShippingThreshold = decimal.NewFromInt(35)
	shippingFee           = decimal.RequireFromString("4.99")
	taxRate               = decimal.RequireFromString("0.05")
)

// Totals holds the derived checkout amounts for a cart state. Values are
// exact; callers round at the display edge with Round(2).
type Totals struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals derives checkout amounts from lines and an already-validated
// discount. Total is floored at zero so a discount can never produce a
// negative charge.
func ComputeTotals(lines []Line, discount decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, ln := range lines {
		qty := decimal.NewFromInt(int64(ln.Quantity))
		subtotal = subtotal.Add(ln.Book.Price.Mul(qty))
	}

	shipping := shippingFee
	if subtotal.GreaterThan(freeShippingThreshold) {
		shipping = decimal.Zero
	}

	tax := subtotal.Mul(taxRate)

	total := subtotal.Add(shipping).Add(tax).Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Discount: discount,
		Total:    total,
	}
}

// Totals derives checkout amounts from the current cart state. These are
// recomputed on every call, never cached.
func (s *Store) Totals(discount decimal.Decimal) Totals {
	return ComputeTotals(s.Items(), discount)
}
