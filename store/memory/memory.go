// Package memory is an in-process Store. It backs STORE_DRIVER=memory for
// local runs and the unit tests of the packages built on store.Store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/store"
)

// Store keeps every table behind one mutex, which makes each method a
// single atomic step with respect to the others.
type Store struct {
	mu sync.Mutex

	products    map[uint]*models.Product
	carts       map[string][]models.CartItem
	orders      map[uint]*models.Order
	nextProduct uint
	nextOrder   uint
	nextItem    uint
}

func New() *Store {
	return &Store{
		products: make(map[uint]*models.Product),
		carts:    make(map[string][]models.CartItem),
		orders:   make(map[uint]*models.Order),
	}
}

var _ store.Store = (*Store)(nil)

// -------- Products --------

func (s *Store) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextProduct++
	p.ID = s.nextProduct
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	cp := *p
	s.products[p.ID] = &cp
	return nil
}

func (s *Store) UpdateProduct(ctx context.Context, id uint, u store.ProductUpdate) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	u.Apply(p)
	p.UpdatedAt = time.Now()
	cp := *p
	return &cp, nil
}

func (s *Store) ConditionalDecrement(ctx context.Context, id uint, qty int) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	switch {
	case !ok:
		return nil, store.ErrNotFound
	case !p.IsActive:
		return nil, store.ErrInactive
	case p.Stock < qty:
		return nil, store.ErrInsufficientStock
	}
	p.Stock -= qty
	cp := *p
	return &cp, nil
}

func (s *Store) Increment(ctx context.Context, id uint, qty int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return store.ErrNotFound
	}
	p.Stock += qty
	return nil
}

// -------- Cart --------

func (s *Store) GetCart(ctx context.Context, userID string) ([]models.CartItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]models.CartItem{}, s.carts[userID]...), nil
}

func (s *Store) AddCartItem(ctx context.Context, userID string, productID uint, qty int) (*models.CartItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[userID]
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity += qty
			items[i].AddedAt = time.Now()
			cp := items[i]
			return &cp, nil
		}
	}
	s.nextItem++
	item := models.CartItem{ID: s.nextItem, ProductID: productID, Quantity: qty, AddedAt: time.Now()}
	s.carts[userID] = append(items, item)
	return &item, nil
}

func (s *Store) SetCartItemQuantity(ctx context.Context, userID string, productID uint, qty int) (*models.CartItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[userID]
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = qty
			items[i].AddedAt = time.Now()
			cp := items[i]
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) RemoveCartItem(ctx context.Context, userID string, productID uint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[userID]
	for i := range items {
		if items[i].ProductID == productID {
			s.carts[userID] = append(items[:i:i], items[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) ClearCart(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, userID)
	return nil
}

// -------- Orders --------

func (s *Store) CreateOrder(ctx context.Context, o *models.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextOrder++
	o.ID = s.nextOrder
	now := time.Now()
	o.CreatedAt, o.UpdatedAt = now, now
	for i := range o.Items {
		s.nextItem++
		o.Items[i].ID = s.nextItem
		o.Items[i].OrderID = o.ID
	}
	cp := o.Clone()
	s.orders[o.ID] = &cp
	return nil
}

func (s *Store) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := o.Clone()
	return &cp, nil
}

func (s *Store) GetOrderByRef(ctx context.Context, ref string) (*models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orders {
		if o.OrderRef == ref {
			cp := o.Clone()
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.listOrders(ctx, func(*models.Order) bool { return true })
}

func (s *Store) ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return s.listOrders(ctx, func(o *models.Order) bool { return o.UserID == userID })
}

func (s *Store) listOrders(ctx context.Context, keep func(*models.Order) bool) ([]models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Order{}
	for _, o := range s.orders {
		if keep(o) {
			out = append(out, o.Clone())
		}
	}
	// newest first; ids break ties between orders created in the same instant
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id uint, mutate store.OrderMutation) (*models.Order, *models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, nil, store.ErrNotFound
	}
	before := o.Clone()
	working := o.Clone()
	if err := mutate(&working); err != nil {
		return nil, nil, err
	}
	if store.ApplyStatusChange(o, working) {
		o.UpdatedAt = time.Now()
	}
	after := o.Clone()
	return &before, &after, nil
}
