package port

import (
	"context"

	"github.com/velocar/velocar/internal/core/domain"
)

// FavoriteRepository owns durable favorite state.
type FavoriteRepository interface {
	// Insert adds a favorite. Returns ErrDuplicateKey when the
	// (user, product) pair already exists; the row is not modified.
	Insert(ctx context.Context, userID, productID int64) (*domain.Favorite, error)

	// Delete reports whether a row was actually removed.
	Delete(ctx context.Context, userID, productID int64) (bool, error)

	// Clear removes every favorite for the user and returns the count removed.
	Clear(ctx context.Context, userID int64) (int64, error)

	// ListByUser returns the user's favorites newest-first, products joined in.
	ListByUser(ctx context.Context, userID int64) ([]domain.FavoriteView, error)
}
