// Package checkout turns a cart or an explicit item list into a persisted
// order. A checkout either places the whole order or leaves stock exactly
// as it found it.
package checkout

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/junaidrashid-git/storefront-api/inventory"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StockLedger is implemented by *inventory.Ledger.
type StockLedger interface {
	TryReserve(ctx context.Context, productID uint, qty int) (*inventory.Reservation, error)
	Release(ctx context.Context, r *inventory.Reservation) error
	Commit(r *inventory.Reservation) error
}

// OrderWriter persists orders. GetOrderByRef settles writes whose outcome
// is unknown and reports store.ErrNotFound when the order is absent.
type OrderWriter interface {
	CreateOrder(ctx context.Context, o *models.Order) error
	GetOrderByRef(ctx context.Context, ref string) (*models.Order, error)
}

// CartStore is the cart snapshot: read at checkout, cleared on success.
type CartStore interface {
	GetCart(ctx context.Context, userID string) ([]models.CartItem, error)
	ClearCart(ctx context.Context, userID string) error
}

// Notifier receives the placed order after commit. Implementations must not
// block; delivery is best effort.
type Notifier interface {
	OrderPlaced(order models.Order)
}

type Item struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type Request struct {
	UserID          string
	Items           []Item
	ShippingAddress *models.Address
	PaymentMethod   string
}

type Builder struct {
	ledger   StockLedger
	orders   OrderWriter
	carts    CartStore
	notifier Notifier
	logger   *zap.Logger
}

func NewBuilder(ledger StockLedger, orders OrderWriter, carts CartStore, notifier Notifier, logger *zap.Logger) *Builder {
	return &Builder{
		ledger:   ledger,
		orders:   orders,
		carts:    carts,
		notifier: notifier,
		logger:   logger,
	}
}

// BuildFromCart checks out the user's current cart.
func (b *Builder) BuildFromCart(ctx context.Context, req Request) (*models.Order, error) {
	cart, err := b.carts.GetCart(ctx, req.UserID)
	if err != nil {
		return nil, persistenceError(err)
	}
	req.Items = make([]Item, 0, len(cart))
	for _, ci := range cart {
		req.Items = append(req.Items, Item{ProductID: ci.ProductID, Quantity: ci.Quantity})
	}
	return b.Build(ctx, req)
}

// Build places an order for req.Items.
//
// Items are reserved in ascending product id order. The first failed
// reservation releases everything reserved before it, in reverse, and the
// error names the failing product. Once all reservations are held the
// order is written; a failed write releases them all as well, unless the
// order turns out to have been committed after all.
func (b *Builder) Build(ctx context.Context, req Request) (*models.Order, error) {
	lines, method, err := validate(req)
	if err != nil {
		return nil, err
	}

	log := b.logger.With(zap.String("user_id", req.UserID))

	held := make([]*inventory.Reservation, 0, len(lines))
	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			b.rollback(ctx, log, held)
			return nil, persistenceError(err)
		}
		r, err := b.ledger.TryReserve(ctx, line.ProductID, line.Quantity)
		if err != nil {
			b.rollback(ctx, log, held)
			log.Info("checkout rejected", zap.Uint("product_id", line.ProductID), zap.Error(err))
			return nil, reserveError(line.ProductID, err)
		}
		held = append(held, r)
	}

	// Last point at which an abandoned request is honoured. Past here the
	// order is written on a detached context so a disconnect cannot cut the
	// write short.
	if err := ctx.Err(); err != nil {
		b.rollback(ctx, log, held)
		return nil, persistenceError(err)
	}

	order := assemble(req.UserID, *req.ShippingAddress, method, held)
	if err := b.orders.CreateOrder(context.WithoutCancel(ctx), order); err != nil {
		saved, serr := b.settleWrite(ctx, log, order, held, err)
		if serr != nil {
			return nil, serr
		}
		order = saved
	}

	for _, r := range held {
		if err := b.ledger.Commit(r); err != nil {
			log.Error("commit of reservation failed",
				zap.String("reservation_id", r.ID), zap.Uint("product_id", r.ProductID), zap.Error(err))
		}
	}

	if err := b.carts.ClearCart(context.WithoutCancel(ctx), req.UserID); err != nil {
		log.Warn("cart not cleared after checkout", zap.String("order_ref", order.OrderRef), zap.Error(err))
	}

	log.Info("order placed",
		zap.Uint("order_id", order.ID),
		zap.String("order_ref", order.OrderRef),
		zap.Int("lines", len(order.Items)),
		zap.String("total", order.TotalAmount.StringFixed(2)))

	b.notifier.OrderPlaced(order.Clone())
	return order, nil
}

// validate normalises the request: duplicate products are merged and the
// lines come back sorted by product id.
func validate(req Request) ([]Item, models.PaymentMethod, error) {
	if len(req.Items) == 0 {
		return nil, "", ErrEmptyCart
	}
	if req.ShippingAddress == nil || req.ShippingAddress.IsZero() {
		return nil, "", ErrMissingAddress
	}

	qty := make(map[uint]int, len(req.Items))
	for _, it := range req.Items {
		if it.Quantity < 1 {
			return nil, "", &LineItemError{ProductID: it.ProductID, Err: ErrInvalidQuantity}
		}
		qty[it.ProductID] += it.Quantity
	}

	method, ok := models.ParsePaymentMethod(req.PaymentMethod)
	if !ok {
		return nil, "", ErrInvalidPaymentMethod
	}

	lines := make([]Item, 0, len(qty))
	for id, q := range qty {
		lines = append(lines, Item{ProductID: id, Quantity: q})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines, method, nil
}

func reserveError(productID uint, err error) error {
	switch {
	case errors.Is(err, inventory.ErrProductNotFound):
		return &LineItemError{ProductID: productID, Err: ErrProductNotFound}
	case errors.Is(err, inventory.ErrProductInactive):
		return &LineItemError{ProductID: productID, Err: ErrProductInactive}
	case errors.Is(err, inventory.ErrInsufficientStock):
		return &LineItemError{ProductID: productID, Err: ErrInsufficientStock}
	case errors.Is(err, inventory.ErrInvalidQuantity):
		return &LineItemError{ProductID: productID, Err: ErrInvalidQuantity}
	default:
		return persistenceError(err)
	}
}

// rollback releases in reverse acquisition order. Release already ignores
// cancellation; failures are logged for reconciliation.
func (b *Builder) rollback(ctx context.Context, log *zap.Logger, held []*inventory.Reservation) {
	for i := len(held) - 1; i >= 0; i-- {
		r := held[i]
		if err := b.ledger.Release(ctx, r); err != nil {
			log.Error("stock release failed, manual reconciliation needed",
				zap.String("reservation_id", r.ID),
				zap.Uint("product_id", r.ProductID),
				zap.Int("quantity", r.Quantity),
				zap.Error(err))
		}
	}
}

// settleWrite decides what a failed CreateOrder means for the held stock.
// A timed-out write may still have committed, so the order is looked up by
// its ref first: found means the checkout succeeded, not found means the
// stock is released. If the lookup fails too the stock stays held and the
// order is logged as in doubt for reconciliation.
func (b *Builder) settleWrite(ctx context.Context, log *zap.Logger, order *models.Order, held []*inventory.Reservation, err error) (*models.Order, error) {
	if !errors.Is(err, context.DeadlineExceeded) {
		b.rollback(ctx, log, held)
		log.Error("order persistence failed", zap.Error(err))
		return nil, persistenceError(err)
	}

	saved, lerr := b.orders.GetOrderByRef(context.WithoutCancel(ctx), order.OrderRef)
	switch {
	case lerr == nil:
		log.Warn("order write timed out but was committed", zap.String("order_ref", order.OrderRef))
		return saved, nil
	case errors.Is(lerr, store.ErrNotFound):
		b.rollback(ctx, log, held)
		log.Error("order persistence failed", zap.Error(err))
		return nil, persistenceError(err)
	default:
		log.Error("order write in doubt, stock left reserved for reconciliation",
			zap.String("order_ref", order.OrderRef), zap.Error(err), zap.NamedError("lookup_error", lerr))
		return nil, persistenceError(err)
	}
}

func assemble(userID string, addr models.Address, method models.PaymentMethod, held []*inventory.Reservation) *models.Order {
	items := make([]models.OrderItem, 0, len(held))
	total := decimal.Zero
	for _, r := range held {
		item := models.OrderItem{
			ProductID:           r.ProductID,
			ProductEName:        r.Product.EName,
			Quantity:            r.Quantity,
			UnitPriceAtPurchase: r.Product.EffectivePrice(),
		}
		total = total.Add(item.LineTotal())
		items = append(items, item)
	}

	return &models.Order{
		OrderRef:        generateOrderRef(),
		UserID:          userID,
		Items:           items,
		ShippingAddress: addr,
		PaymentMethod:   method,
		TotalAmount:     total,
		OrderStatus:     models.OrderStatusPending,
		PaymentStatus:   method.InitialPaymentStatus(),
	}
}

// Example: 20250908130500-<uuid4>
func generateOrderRef() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()
}
