package port

import (
	"context"

	"github.com/velocar/velocar/internal/core/domain"
)

// OrderRepository persists orders created from carts.
type OrderRepository interface {
	// CreateFromCart converts the user's whole cart into one order inside a
	// single transaction: it reads and locks the cart lines, prices each
	// from the catalog rows current at that moment, inserts the order and
	// its items, deletes the lines, and commits. On any failure nothing is
	// persisted and the cart is untouched. Returns (nil, nil) when the cart
	// has no lines (no order is created) and ErrConflict when the store
	// detects a race.
	CreateFromCart(ctx context.Context, userID int64, shipping domain.ShippingInfo) (*domain.Order, error)

	// GetOrder returns (nil, nil) when the order does not exist.
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)

	// ListByUser returns the user's orders newest-first, items included.
	// Prices are read back from the store, never recomputed.
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
}
