package checkout

import (
	"errors"
	"fmt"
)

// Validation errors. Nothing has been touched when these are returned.
var (
	ErrEmptyCart            = errors.New("checkout: cart is empty")
	ErrMissingAddress       = errors.New("checkout: shipping address is required")
	ErrInvalidQuantity      = errors.New("checkout: quantity must be at least 1")
	ErrInvalidPaymentMethod = errors.New("checkout: unsupported payment method")
)

// Inventory errors, always delivered inside a *LineItemError.
var (
	ErrProductNotFound   = errors.New("checkout: product not found")
	ErrProductInactive   = errors.New("checkout: product is not available")
	ErrInsufficientStock = errors.New("checkout: insufficient stock")
)

// ErrPersistence means storage failed part way; every reservation of the
// checkout has been released before it is returned.
var ErrPersistence = errors.New("checkout: could not place order")

// LineItemError names the product that made the checkout fail.
type LineItemError struct {
	ProductID uint
	Err       error
}

func (e *LineItemError) Error() string {
	return fmt.Sprintf("%v (product %d)", e.Err, e.ProductID)
}

func (e *LineItemError) Unwrap() error { return e.Err }

func persistenceError(err error) error {
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}
