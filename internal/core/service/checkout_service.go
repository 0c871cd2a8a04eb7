package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/velocar/velocar/internal/core/domain"
	"github.com/velocar/velocar/internal/port"
)

// CheckoutService drives the cart-to-order transition. The repository does
// the atomic work (read+price+insert+clear in one transaction); this layer
// adds reference validation, request idempotency, a per-user single-flight
// lock and one transparent retry on a store-detected race.
type CheckoutService struct {
	validator *RefValidator
	orders    port.OrderRepository
	cache     port.CacheRepository
}

func NewCheckoutService(validator *RefValidator, orders port.OrderRepository, cache port.CacheRepository) *CheckoutService {
	return &CheckoutService{validator: validator, orders: orders, cache: cache}
}

// Checkout converts the user's whole cart into an immutable order. requestID
// is optional; when supplied, a repeated request with the same id is rejected
// with ErrDuplicateRequest unless the original attempt failed, in which case
// the id is released so the caller can retry safely.
func (s *CheckoutService) Checkout(ctx context.Context, userID int64, shipping domain.ShippingInfo, requestID string) (*domain.Order, error) {
	if err := s.validator.User(ctx, userID); err != nil {
		return nil, err
	}

	if requestID != "" {
		ok, err := s.cache.SetIdempotency(ctx, requestID)
		if err != nil {
			return nil, fmt.Errorf("idempotency check: %w", err)
		}
		if !ok {
			return nil, ErrDuplicateRequest
		}
	}

	ok, err := s.cache.AcquireCheckoutLock(ctx, userID)
	if err != nil {
		s.releaseRequest(ctx, requestID)
		return nil, fmt.Errorf("checkout lock: %w", err)
	}
	if !ok {
		s.releaseRequest(ctx, requestID)
		return nil, ErrCheckoutInProgress
	}
	defer func() {
		if err := s.cache.ReleaseCheckoutLock(ctx, userID); err != nil {
			log.Printf("release checkout lock for user %d: %v", userID, err)
		}
	}()

	order, err := s.orders.CreateFromCart(ctx, userID, shipping)
	if errors.Is(err, port.ErrConflict) {
		// The transaction rolled back cleanly; retry once before surfacing.
		order, err = s.orders.CreateFromCart(ctx, userID, shipping)
	}
	if err != nil {
		s.releaseRequest(ctx, requestID)
		return nil, fmt.Errorf("create order: %w", err)
	}
	if order == nil {
		s.releaseRequest(ctx, requestID)
		return nil, ErrEmptyCart
	}
	return order, nil
}

// releaseRequest frees an idempotency key claimed by a checkout that did not
// produce an order, keeping the operation safe to retry end-to-end.
func (s *CheckoutService) releaseRequest(ctx context.Context, requestID string) {
	if requestID == "" {
		return
	}
	if err := s.cache.ClearIdempotency(ctx, requestID); err != nil {
		log.Printf("release checkout request %s: %v", requestID, err)
	}
}

func (s *CheckoutService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListOrders returns the user's orders newest-first with their frozen items.
func (s *CheckoutService) ListOrders(ctx context.Context, userID int64) ([]domain.Order, error) {
	if err := s.validator.User(ctx, userID); err != nil {
		return nil, err
	}
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}
