package checkout

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/leafbound/bookstall/internal/domain/cart"
	"github.com/leafbound/bookstall/internal/domain/catalog"
	"github.com/leafbound/bookstall/internal/promo"
	"github.com/leafbound/bookstall/pkg/kv"
)

// --- Mock implementations ---

type mockSubmitter struct {
	lastOrder *Order
	calls     int
	err       error
}

func (m *mockSubmitter) Submit(_ context.Context, o *Order) error {
	m.calls++
	m.lastOrder = o
	return m.err
}

// --- Helpers ---

func testBook(id int64, title, price string) catalog.Book {
	return catalog.Book{
		ID:     id,
		Title:  title,
		Author: "Test Author",
		Price:  decimal.RequireFromString(price),
	}
}

func newCartWith(t *testing.T, books ...catalog.Book) *cart.Store {
	t.Helper()
	c := cart.NewStore(kv.NewMemStore(), zap.NewNop())
	for _, b := range books {
		c.Add(b)
	}
	return c
}

func testAddress() Address {
	return Address{
		Name:    "Pat Reader",
		Street:  "1 Library Way",
		City:    "Booktown",
		State:   "OR",
		Zip:     "97201",
		Country: "US",
	}
}

// --- Tests ---

func TestPlaceOrder_EmptyCart(t *testing.T) {
	svc := NewService(promo.NewSet(nil), &mockSubmitter{})
	c := newCartWith(t)

	_, err := svc.PlaceOrder(context.Background(), c, PlaceOrderRequest{Address: testAddress()})
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestPlaceOrder_NoPromo(t *testing.T) {
	submitter := &mockSubmitter{}
	svc := NewService(promo.NewSet(nil), submitter)

	dune := testBook(1, "Dune", "24.99")
	c := newCartWith(t, dune, testBook(2, "Solaris", "10.00"))
	c.Add(dune)

	o, err := svc.PlaceOrder(context.Background(), c, PlaceOrderRequest{Address: testAddress()})
	require.NoError(t, err)

	require.Len(t, o.Items, 2)
	assert.Equal(t, int64(1), o.Items[0].BookID)
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.Equal(t, "59.98", o.Subtotal.StringFixed(2))
	assert.Equal(t, "0.00", o.Shipping.StringFixed(2), "59.98 clears the free shipping threshold")
	assert.Equal(t, "3.00", o.Tax.StringFixed(2))
	assert.Equal(t, "62.98", o.Total.StringFixed(2))
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, 1, submitter.calls)
}

func TestPlaceOrder_PromoDiscount(t *testing.T) {
	submitter := &mockSubmitter{}
	svc := NewService(promo.NewSet([]string{"welcome10"}), submitter)

	dune := testBook(1, "Dune", "24.99")
	c := newCartWith(t, dune, testBook(2, "Solaris", "10.00"))
	c.Add(dune)

	o, err := svc.PlaceOrder(context.Background(), c, PlaceOrderRequest{
		PromoCode: "WELCOME10",
		Address:   testAddress(),
	})
	require.NoError(t, err)

	assert.Equal(t, "6.00", o.Discount.StringFixed(2))
	// 59.98 + 0 + 2.999 - 6.00 = 56.979 -> 56.98
	assert.Equal(t, "56.98", o.Total.StringFixed(2))
	assert.Equal(t, "WELCOME10", o.PromoCode)
}

func TestPlaceOrder_InvalidPromo(t *testing.T) {
	submitter := &mockSubmitter{}
	svc := NewService(promo.NewSet([]string{"welcome10"}), submitter)
	c := newCartWith(t, testBook(1, "Dune", "24.99"))

	_, err := svc.PlaceOrder(context.Background(), c, PlaceOrderRequest{
		PromoCode: "bogus",
		Address:   testAddress(),
	})

	require.ErrorIs(t, err, promo.ErrInvalidCode)
	assert.Equal(t, 0, submitter.calls, "invalid promo must not reach the backend")
	assert.Equal(t, 1, c.ItemCount(), "cart stays intact")
}

func TestPlaceOrder_ClearsCartOnSuccess(t *testing.T) {
	backing := kv.NewMemStore()
	c := cart.NewStore(backing, zap.NewNop())
	c.Add(testBook(1, "Dune", "24.99"))

	svc := NewService(promo.NewSet(nil), &mockSubmitter{})

	_, err := svc.PlaceOrder(context.Background(), c, PlaceOrderRequest{Address: testAddress()})
	require.NoError(t, err)

	assert.Equal(t, 0, c.ItemCount())
	_, err = backing.Load("cart")
	assert.ErrorIs(t, err, kv.ErrNotFound, "successful checkout erases the persisted cart")
}

func TestPlaceOrder_SubmitFailureKeepsCart(t *testing.T) {
	submitter := &mockSubmitter{err: errors.New("backend down")}
	svc := NewService(promo.NewSet(nil), submitter)
	c := newCartWith(t, testBook(1, "Dune", "24.99"))

	_, err := svc.PlaceOrder(context.Background(), c, PlaceOrderRequest{Address: testAddress()})

	require.Error(t, err)
	assert.Equal(t, 1, c.ItemCount(), "failed submission must leave the cart for retry")
}
