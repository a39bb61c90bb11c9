// Package notify delivers order notifications (confirmation mails, staff
// dashboards, downstream consumers) off the request path.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/junaidrashid-git/storefront-api/models"
)

const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
)

// Sender is one notification channel. Callers treat every error as
// non-fatal.
type Sender interface {
	SendOrderConfirmation(ctx context.Context, order models.Order) error
	SendOrderStatusUpdate(ctx context.Context, order models.Order, oldStatus, newStatus models.OrderStatus) error
}

// Event is the wire shape shared by the kafka and websocket senders.
type Event struct {
	Type       string             `json:"type"`
	OrderID    uint               `json:"order_id"`
	OrderRef   string             `json:"order_ref"`
	UserID     string             `json:"user_id"`
	OldStatus  models.OrderStatus `json:"old_status,omitempty"`
	NewStatus  models.OrderStatus `json:"new_status,omitempty"`
	Order      models.Order       `json:"order"`
	OccurredAt time.Time          `json:"occurred_at"`
}

func placedEvent(order models.Order) Event {
	return Event{
		Type:       EventOrderPlaced,
		OrderID:    order.ID,
		OrderRef:   order.OrderRef,
		UserID:     order.UserID,
		Order:      order,
		OccurredAt: time.Now().UTC(),
	}
}

func statusEvent(order models.Order, oldStatus, newStatus models.OrderStatus) Event {
	e := placedEvent(order)
	e.Type = EventOrderStatusChanged
	e.OldStatus = oldStatus
	e.NewStatus = newStatus
	return e
}

// Multi fans a notification out to every sender and joins their errors.
type Multi []Sender

func (m Multi) SendOrderConfirmation(ctx context.Context, order models.Order) error {
	var errs []error
	for _, s := range m {
		if err := s.SendOrderConfirmation(ctx, order); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) SendOrderStatusUpdate(ctx context.Context, order models.Order, oldStatus, newStatus models.OrderStatus) error {
	var errs []error
	for _, s := range m {
		if err := s.SendOrderStatusUpdate(ctx, order, oldStatus, newStatus); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
