package service

import "errors"

var (
	ErrInvalidQuantity    = errors.New("quantity must be greater than zero")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrAlreadyExists      = errors.New("already exists")
	ErrVariantMismatch    = errors.New("variant does not belong to the product")
	ErrCartLineNotFound   = errors.New("cart line not found")
	ErrFavoriteNotFound   = errors.New("favorite not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrDuplicateRequest   = errors.New("duplicate request")
	ErrCheckoutInProgress = errors.New("checkout already in progress")
)
