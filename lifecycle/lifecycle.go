// Package lifecycle moves placed orders through their fulfillment and
// payment states.
package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/store"
	"go.uber.org/zap"
)

var (
	ErrNotFound          = errors.New("order: not found")
	ErrForbidden         = errors.New("order: forbidden")
	ErrInvalidStatus     = errors.New("order: invalid status")
	ErrEmptyUpdate       = errors.New("order: nothing to update")
	ErrInvalidTransition = errors.New("order: invalid status transition")
)

type Repository interface {
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id uint, mutate store.OrderMutation) (before, after *models.Order, err error)
}

// Notifier is told about every real change of order status. It must not
// block.
type Notifier interface {
	OrderStatusChanged(order models.Order, oldStatus, newStatus models.OrderStatus)
}

// StatusUpdate carries the raw requested values; empty means "leave as is".
type StatusUpdate struct {
	OrderStatus   string `json:"order_status"`
	PaymentStatus string `json:"payment_status"`
}

type Service struct {
	repo     Repository
	policy   Policy
	notifier Notifier
	logger   *zap.Logger
}

func NewService(repo Repository, policy Policy, notifier Notifier, logger *zap.Logger) *Service {
	if policy == nil {
		policy = Permissive{}
	}
	return &Service{repo: repo, policy: policy, notifier: notifier, logger: logger}
}

func repoError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// Get returns the order if actor owns it or holds an elevated role.
func (s *Service) Get(ctx context.Context, id uint, actor models.Actor) (*models.Order, error) {
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, repoError(err)
	}
	if order.UserID != actor.UserID && !actor.Elevated() {
		return nil, ErrForbidden
	}
	return order, nil
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]models.Order, error) {
	return s.repo.ListOrdersByUser(ctx, userID)
}

func (s *Service) ListAll(ctx context.Context, actor models.Actor) ([]models.Order, error) {
	if !actor.Elevated() {
		return nil, ErrForbidden
	}
	return s.repo.ListOrders(ctx)
}

// UpdateStatus applies whichever of the two fields is set. Only staff and
// admins may call it. A change of order status to a different value is
// reported to the notifier with the old and new values.
func (s *Service) UpdateStatus(ctx context.Context, id uint, upd StatusUpdate, actor models.Actor) (*models.Order, error) {
	if !actor.Elevated() {
		return nil, ErrForbidden
	}
	if upd.OrderStatus == "" && upd.PaymentStatus == "" {
		return nil, ErrEmptyUpdate
	}

	var (
		newStatus  models.OrderStatus
		newPayment models.PaymentStatus
		ok         bool
	)
	if upd.OrderStatus != "" {
		if newStatus, ok = models.ParseOrderStatus(upd.OrderStatus); !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, upd.OrderStatus)
		}
	}
	if upd.PaymentStatus != "" {
		if newPayment, ok = models.ParsePaymentStatus(upd.PaymentStatus); !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, upd.PaymentStatus)
		}
	}

	before, after, err := s.repo.UpdateOrderStatus(ctx, id, func(o *models.Order) error {
		if newStatus != "" {
			if err := s.policy.Allow(o.OrderStatus, newStatus); err != nil {
				return err
			}
			o.OrderStatus = newStatus
		}
		if newPayment != "" {
			o.PaymentStatus = newPayment
		}
		return nil
	})
	if err != nil {
		return nil, repoError(err)
	}

	s.logger.Info("order status updated",
		zap.Uint("order_id", id),
		zap.String("actor", actor.UserID),
		zap.String("order_status", string(after.OrderStatus)),
		zap.String("payment_status", string(after.PaymentStatus)))

	if before.OrderStatus != after.OrderStatus {
		s.notifier.OrderStatusChanged(after.Clone(), before.OrderStatus, after.OrderStatus)
	}
	return after, nil
}

// Pay is the mocked gateway confirmation: payment status becomes paid no
// matter what it was. Calling it again changes nothing.
func (s *Service) Pay(ctx context.Context, id uint, actor models.Actor) (*models.Order, error) {
	if _, err := s.Get(ctx, id, actor); err != nil {
		return nil, err
	}

	_, after, err := s.repo.UpdateOrderStatus(ctx, id, func(o *models.Order) error {
		o.PaymentStatus = models.PaymentStatusPaid
		return nil
	})
	if err != nil {
		return nil, repoError(err)
	}
	s.logger.Info("order paid", zap.Uint("order_id", id), zap.String("order_ref", after.OrderRef))
	return after, nil
}
