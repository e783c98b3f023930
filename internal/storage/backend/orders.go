package backend

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/leafbound/bookstall/internal/domain/checkout"
)

var _ checkout.Submitter = (*OrderSubmitter)(nil)

// OrderSubmitter implements checkout.Submitter over the backend API, which
// owns payment processing and fulfillment.
type OrderSubmitter struct {
	client *Client
}

// NewOrderSubmitter returns an OrderSubmitter using the given client.
func NewOrderSubmitter(client *Client) *OrderSubmitter {
	return &OrderSubmitter{client: client}
}

// Submit posts the order. A non-2xx response is an error; the caller decides
// whether the cart survives.
func (s *OrderSubmitter) Submit(ctx context.Context, o *checkout.Order) error {
	if err := s.client.post(ctx, "/api/orders", o, nil); err != nil {
		return errors.Wrapf(err, "submit order %s", o.ID)
	}
	return nil
}
