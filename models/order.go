package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string
type PaymentStatus string
type PaymentMethod string

const (
	// Order statuses
	OrderStatusPending    OrderStatus = "pending"    // Order placed, awaiting handling
	OrderStatusProcessing OrderStatus = "processing" // Being packed
	OrderStatusShipped    OrderStatus = "shipped"    // Out for delivery
	OrderStatusDelivered  OrderStatus = "delivered"  // Customer received the items
	OrderStatusCancelled  OrderStatus = "cancelled"

	// Payment statuses
	PaymentStatusPending PaymentStatus = "pending" // Cash on delivery, not collected yet
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusUnpaid  PaymentStatus = "unpaid"

	// Payment methods
	PaymentMethodCOD    PaymentMethod = "cod"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodWallet PaymentMethod = "wallet"
)

// ParseOrderStatus maps user input onto a known OrderStatus.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch st := OrderStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return st, true
	}
	return "", false
}

// ParsePaymentStatus maps user input onto a known PaymentStatus.
func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch st := PaymentStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusUnpaid:
		return st, true
	}
	return "", false
}

// ParsePaymentMethod maps user input onto a known PaymentMethod.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch m := PaymentMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case PaymentMethodCOD, PaymentMethodCard, PaymentMethodWallet:
		return m, true
	}
	return "", false
}

// InitialPaymentStatus is pending for cash on delivery and paid for every
// other method.
func (m PaymentMethod) InitialPaymentStatus() PaymentStatus {
	if m == PaymentMethodCOD {
		return PaymentStatusPending
	}
	return PaymentStatusPaid
}

// Order is a permanent record. After creation only OrderStatus,
// PaymentStatus and UpdatedAt change.
type Order struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	OrderRef        string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"order_ref"`
	UserID          string          `gorm:"index;not null" json:"user_id"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:RESTRICT" json:"items"`
	ShippingAddress Address         `gorm:"embedded;embeddedPrefix:ship_" json:"shipping_address"`
	PaymentMethod   PaymentMethod   `gorm:"type:VARCHAR(20);not null" json:"payment_method"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_amount"`
	OrderStatus     OrderStatus     `gorm:"type:VARCHAR(20);not null;index" json:"order_status"`
	PaymentStatus   PaymentStatus   `gorm:"type:VARCHAR(20);not null" json:"payment_status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type OrderItem struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	OrderID             uint            `gorm:"index" json:"order_id"`
	ProductID           uint            `gorm:"not null" json:"product_id"`
	ProductEName        string          `json:"product_ename"`
	Quantity            int             `gorm:"not null" json:"quantity"`
	UnitPriceAtPurchase decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price_at_purchase"`
}

// LineTotal is UnitPriceAtPurchase x Quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPriceAtPurchase.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Clone returns a deep copy so callers can hand orders to other goroutines.
func (o Order) Clone() Order {
	c := o
	c.Items = append([]OrderItem(nil), o.Items...)
	return c
}
