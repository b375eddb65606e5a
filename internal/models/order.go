package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the backend-owned lifecycle value of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

var orderStatuses = map[OrderStatus]struct{}{
	OrderPending:    {},
	OrderConfirmed:  {},
	OrderProcessing: {},
	OrderShipped:    {},
	OrderDelivered:  {},
	OrderCancelled:  {},
}

// ParseOrderStatus matches case-insensitively and rejects unknown values.
func ParseOrderStatus(value string) (OrderStatus, error) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := orderStatuses[status]; !ok {
		return "", fmt.Errorf("unknown order status %q", value)
	}
	return status, nil
}

// OrderReference is what the storefront keeps about an order it placed.
type OrderReference struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	OrderNumber     string             `bson:"order_number" json:"order_number"`
	SessionID       string             `bson:"session_id" json:"session_id"`
	CustomerEmail   string             `bson:"customer_email" json:"customer_email"`
	TotalAmount     int64              `bson:"total_amount" json:"total_amount"`
	LastKnownStatus OrderStatus        `bson:"last_known_status" json:"last_known_status"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	StatusCheckedAt *time.Time         `bson:"status_checked_at,omitempty" json:"status_checked_at,omitempty"`
}
