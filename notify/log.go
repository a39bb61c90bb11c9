package notify

import (
	"context"

	"github.com/junaidrashid-git/storefront-api/models"
	"go.uber.org/zap"
)

// LogSender writes notifications to the log. It stands in for the broker
// when KAFKA_BROKERS is not set.
type LogSender struct {
	Logger *zap.Logger
}

func (s LogSender) SendOrderConfirmation(_ context.Context, order models.Order) error {
	s.Logger.Info("order confirmation",
		zap.String("order_ref", order.OrderRef),
		zap.String("user_id", order.UserID),
		zap.String("total", order.TotalAmount.StringFixed(2)))
	return nil
}

func (s LogSender) SendOrderStatusUpdate(_ context.Context, order models.Order, oldStatus, newStatus models.OrderStatus) error {
	s.Logger.Info("order status update",
		zap.String("order_ref", order.OrderRef),
		zap.String("user_id", order.UserID),
		zap.String("old_status", string(oldStatus)),
		zap.String("new_status", string(newStatus)))
	return nil
}
