// Package inventory is the stock ledger: the only code path allowed to move
// a product's stock counter.
//
// A reservation is an eager decrement. TryReserve lowers stock immediately
// through the store's conditional decrement; Release gives the units back;
// Commit marks them as consumed by a persisted order.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/store"
	"go.uber.org/zap"
)

var (
	ErrProductNotFound   = errors.New("inventory: product not found")
	ErrProductInactive   = errors.New("inventory: product inactive")
	ErrInsufficientStock = errors.New("inventory: insufficient stock")
	ErrInvalidQuantity   = errors.New("inventory: quantity must be positive")
	ErrReleased          = errors.New("inventory: reservation already released")
)

// ProductStore is the slice of the catalog store the ledger needs.
type ProductStore interface {
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	ConditionalDecrement(ctx context.Context, id uint, qty int) (*models.Product, error)
	Increment(ctx context.Context, id uint, qty int) error
}

const (
	stateHeld int32 = iota
	stateReleasing
	stateReleased
	stateCommitted
)

// Reservation is the token returned by TryReserve.
type Reservation struct {
	ID        string
	ProductID uint
	Quantity  int
	// Product is the catalog row as it was right after the decrement. Order
	// pricing reads from here so price and stock come from the same write.
	Product models.Product

	state atomic.Int32
}

func (r *Reservation) Committed() bool { return r.state.Load() == stateCommitted }
func (r *Reservation) Released() bool  { return r.state.Load() == stateReleased }

type Ledger struct {
	products ProductStore
	logger   *zap.Logger
}

func NewLedger(products ProductStore, logger *zap.Logger) *Ledger {
	return &Ledger{products: products, logger: logger}
}

// TryReserve claims qty units of productID in one atomic storage step.
//
// A cancelled ctx is honoured before the decrement starts. Once started the
// decrement runs detached from cancellation so its outcome is always known:
// either a reservation comes back or the stock was not touched.
func (l *Ledger) TryReserve(ctx context.Context, productID uint, qty int) (*Reservation, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	product, err := l.products.ConditionalDecrement(context.WithoutCancel(ctx), productID, qty)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, ErrProductNotFound
	case errors.Is(err, store.ErrInactive):
		return nil, ErrProductInactive
	case errors.Is(err, store.ErrInsufficientStock):
		return nil, ErrInsufficientStock
	case err != nil:
		return nil, fmt.Errorf("reserve product %d: %w", productID, err)
	}

	r := &Reservation{
		ID:        uuid.NewString(),
		ProductID: productID,
		Quantity:  qty,
		Product:   *product,
	}
	l.logger.Debug("stock reserved",
		zap.String("reservation_id", r.ID),
		zap.Uint("product_id", productID),
		zap.Int("quantity", qty),
		zap.Int("remaining", product.Stock))
	return r, nil
}

// Release returns the reserved units. Releasing a token twice, or releasing
// a committed token, does nothing. The store call runs detached from ctx's
// cancellation: once started, a release is finished.
//
// If the increment fails the token goes back to held and the error is
// returned, so a later Release can retry it.
func (l *Ledger) Release(ctx context.Context, r *Reservation) error {
	if r == nil || !r.state.CompareAndSwap(stateHeld, stateReleasing) {
		return nil
	}

	if err := l.products.Increment(context.WithoutCancel(ctx), r.ProductID, r.Quantity); err != nil {
		r.state.Store(stateHeld)
		return fmt.Errorf("release reservation %s: %w", r.ID, err)
	}
	r.state.Store(stateReleased)
	l.logger.Debug("stock released",
		zap.String("reservation_id", r.ID),
		zap.Uint("product_id", r.ProductID),
		zap.Int("quantity", r.Quantity))
	return nil
}

// Commit makes the decrement permanent. Committing twice is a no-op;
// committing a released token is a caller bug and reports ErrReleased.
func (l *Ledger) Commit(r *Reservation) error {
	if r.state.CompareAndSwap(stateHeld, stateCommitted) {
		return nil
	}
	switch r.state.Load() {
	case stateCommitted:
		return nil
	default:
		return ErrReleased
	}
}

// Restock adds units to a product, e.g. after a delivery from a supplier.
func (l *Ledger) Restock(ctx context.Context, productID uint, qty int) (*models.Product, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	if err := l.products.Increment(ctx, productID, qty); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("restock product %d: %w", productID, err)
	}
	l.logger.Info("stock received", zap.Uint("product_id", productID), zap.Int("quantity", qty))

	product, err := l.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("reload product %d: %w", productID, err)
	}
	return product, nil
}
