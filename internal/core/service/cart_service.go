package service

import (
	"context"
	"fmt"

	"github.com/velocar/velocar/internal/core/domain"
	"github.com/velocar/velocar/internal/port"
)

// CartService owns the cart line aggregate: one line per configuration tuple
// per user, merged on repeated adds. Pricing happens at checkout, never here.
type CartService struct {
	validator *RefValidator
	cart      port.CartRepository
}

func NewCartService(validator *RefValidator, cart port.CartRepository) *CartService {
	return &CartService{validator: validator, cart: cart}
}

// AddLine validates every referenced id, then inserts the line or merges into
// the existing line with the same selection. The merge is atomic in the
// store, so two concurrent adds of the same selection end up as one line
// carrying the summed quantity.
func (s *CartService) AddLine(ctx context.Context, userID int64, sel domain.Selection, qty int) (*domain.CartLine, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	if err := s.validator.User(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.validator.Selection(ctx, sel); err != nil {
		return nil, err
	}

	line, err := s.cart.UpsertLine(ctx, userID, sel, qty)
	if err != nil {
		return nil, fmt.Errorf("add cart line: %w", err)
	}
	return line, nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, lineID int64, qty int) (*domain.CartLine, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	line, err := s.cart.UpdateQuantity(ctx, lineID, qty)
	if err != nil {
		return nil, fmt.Errorf("update cart line: %w", err)
	}
	if line == nil {
		return nil, ErrCartLineNotFound
	}
	return line, nil
}

func (s *CartService) RemoveLine(ctx context.Context, lineID int64) error {
	removed, err := s.cart.DeleteLine(ctx, lineID)
	if err != nil {
		return fmt.Errorf("remove cart line: %w", err)
	}
	if !removed {
		return ErrCartLineNotFound
	}
	return nil
}

// Clear empties the user's cart and returns how many lines were removed.
// An already-empty cart is not an error.
func (s *CartService) Clear(ctx context.Context, userID int64) (int64, error) {
	removed, err := s.cart.Clear(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("clear cart: %w", err)
	}
	return removed, nil
}

// ListLines returns the user's cart newest-first, each line enriched with
// current catalog data. The included unit price is display-only.
func (s *CartService) ListLines(ctx context.Context, userID int64) ([]domain.CartLineView, error) {
	views, err := s.cart.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	return views, nil
}
