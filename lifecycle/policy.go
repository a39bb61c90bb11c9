package lifecycle

import (
	"fmt"

	"github.com/junaidrashid-git/storefront-api/models"
)

// Policy decides whether an order may move from one status to another.
type Policy interface {
	Allow(from, to models.OrderStatus) error
}

// Permissive lets staff set any status from any status, including moving
// back to an earlier stage or out of delivered/cancelled.
type Permissive struct{}

func (Permissive) Allow(_, _ models.OrderStatus) error { return nil }

var strictTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending:    {models.OrderStatusProcessing, models.OrderStatusCancelled},
	models.OrderStatusProcessing: {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:    {models.OrderStatusDelivered},
	models.OrderStatusDelivered:  {},
	models.OrderStatusCancelled:  {},
}

// Strict only allows forward moves; delivered and cancelled are terminal.
// Re-setting the current status is always allowed.
type Strict struct{}

func (Strict) Allow(from, to models.OrderStatus) error {
	if from == to {
		return nil
	}
	for _, next := range strictTransitions[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// PolicyFor maps the ORDER_STATUS_POLICY setting to a Policy.
func PolicyFor(name string) Policy {
	if name == "strict" {
		return Strict{}
	}
	return Permissive{}
}
