package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/velocar/velocar/internal/core/domain"
	"github.com/velocar/velocar/internal/port"
)

// FavoriteService shares the cart's idempotent-insert pattern but resolves a
// duplicate the other way: instead of merging, the caller is told the
// favorite already exists.
type FavoriteService struct {
	validator *RefValidator
	favorites port.FavoriteRepository
}

func NewFavoriteService(validator *RefValidator, favorites port.FavoriteRepository) *FavoriteService {
	return &FavoriteService{validator: validator, favorites: favorites}
}

func (s *FavoriteService) Add(ctx context.Context, userID, productID int64) (*domain.Favorite, error) {
	if err := s.validator.User(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.validator.Product(ctx, productID); err != nil {
		return nil, err
	}

	fav, err := s.favorites.Insert(ctx, userID, productID)
	if errors.Is(err, port.ErrDuplicateKey) {
		return nil, ErrAlreadyExists
	}
	if err != nil {
		return nil, fmt.Errorf("add favorite: %w", err)
	}
	return fav, nil
}

func (s *FavoriteService) Remove(ctx context.Context, userID, productID int64) error {
	removed, err := s.favorites.Delete(ctx, userID, productID)
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	if !removed {
		return ErrFavoriteNotFound
	}
	return nil
}

// Clear empties the user's favorites and returns how many were removed.
// An already-empty list is not an error.
func (s *FavoriteService) Clear(ctx context.Context, userID int64) (int64, error) {
	removed, err := s.favorites.Clear(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("clear favorites: %w", err)
	}
	return removed, nil
}

func (s *FavoriteService) List(ctx context.Context, userID int64) ([]domain.FavoriteView, error) {
	views, err := s.favorites.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return views, nil
}
