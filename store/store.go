// Package store holds the persistence layer: the gorm/postgres repositories,
// the redis order cache and the in-memory driver under store/memory.
package store

import (
	"context"
	"errors"

	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("store: record not found")
	ErrInactive          = errors.New("store: product inactive")
	ErrInsufficientStock = errors.New("store: insufficient stock")
)

// ProductUpdate carries the catalog fields an admin may edit. Stock is
// deliberately absent: it only moves through the stock ledger.
type ProductUpdate struct {
	EName         *string
	ARName        *string
	EDescription  *string
	ARDescription *string
	Image         *string
	Price         *decimal.Decimal
	Discount      *decimal.Decimal
	IsActive      *bool
}

// Apply copies the present fields onto p.
func (u ProductUpdate) Apply(p *models.Product) {
	if u.EName != nil {
		p.EName = *u.EName
	}
	if u.ARName != nil {
		p.ARName = *u.ARName
	}
	if u.EDescription != nil {
		p.EDescription = *u.EDescription
	}
	if u.ARDescription != nil {
		p.ARDescription = *u.ARDescription
	}
	if u.Image != nil {
		p.Image = *u.Image
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Discount != nil {
		p.Discount = *u.Discount
	}
	if u.IsActive != nil {
		p.IsActive = *u.IsActive
	}
}

// OrderMutation edits an order in place while its row is locked. Only the
// status fields of the result are persisted.
type OrderMutation func(o *models.Order) error

type Store interface {
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, id uint, u ProductUpdate) (*models.Product, error)
	// ConditionalDecrement subtracts qty from the product's stock in a single
	// statement guarded by stock >= qty and returns the product as it is
	// after the decrement.
	ConditionalDecrement(ctx context.Context, id uint, qty int) (*models.Product, error)
	Increment(ctx context.Context, id uint, qty int) error

	GetCart(ctx context.Context, userID string) ([]models.CartItem, error)
	AddCartItem(ctx context.Context, userID string, productID uint, qty int) (*models.CartItem, error)
	SetCartItemQuantity(ctx context.Context, userID string, productID uint, qty int) (*models.CartItem, error)
	RemoveCartItem(ctx context.Context, userID string, productID uint) error
	ClearCart(ctx context.Context, userID string) error

	CreateOrder(ctx context.Context, o *models.Order) error
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	GetOrderByRef(ctx context.Context, ref string) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id uint, mutate OrderMutation) (before, after *models.Order, err error)
}

// ApplyStatusChange copies the status fields of updated onto locked and
// stamps nothing else. Both drivers use it so item lists and totals can
// never be rewritten by a lifecycle mutation.
func ApplyStatusChange(locked *models.Order, updated models.Order) bool {
	changed := locked.OrderStatus != updated.OrderStatus || locked.PaymentStatus != updated.PaymentStatus
	locked.OrderStatus = updated.OrderStatus
	locked.PaymentStatus = updated.PaymentStatus
	return changed
}
