package port

import (
	"context"

	"github.com/velocar/velocar/internal/core/domain"
)

// CartRepository owns durable cart state.
type CartRepository interface {
	// UpsertLine inserts a cart line or, when a line with the same
	// (user, selection) identity already exists, atomically adds qty to its
	// quantity. Never returns ErrDuplicateKey; the merge is the resolution.
	UpsertLine(ctx context.Context, userID int64, sel domain.Selection, qty int) (*domain.CartLine, error)

	// GetLine returns (nil, nil) when the line does not exist.
	GetLine(ctx context.Context, lineID int64) (*domain.CartLine, error)

	// UpdateQuantity overwrites a line's quantity. Returns (nil, nil) when
	// the line does not exist.
	UpdateQuantity(ctx context.Context, lineID int64, qty int) (*domain.CartLine, error)

	// DeleteLine reports whether a row was actually removed.
	DeleteLine(ctx context.Context, lineID int64) (bool, error)

	// Clear removes every line for the user and returns the count removed.
	Clear(ctx context.Context, userID int64) (int64, error)

	// ListByUser returns the user's lines in reverse-creation order, each
	// joined with its current product/variant rows for display.
	ListByUser(ctx context.Context, userID int64) ([]domain.CartLineView, error)
}
