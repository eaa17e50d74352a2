// Package payment wraps the external payment collaborator: order creation,
// order lookup, and signature verification for its asynchronous events.
package payment

import "context"

// Order is the provider-side order an out-of-band checkout completes.
// Notes carry opaque metadata embedded at creation time so a confirmation
// can be reconstructed even if the local booking row is lost.
type Order struct {
	ID       string
	Amount   int64
	Currency string
	Notes    map[string]string
}

type CreateOrderInput struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

type Provider interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (Order, error)
	FetchOrder(ctx context.Context, orderID string) (Order, error)
}
