package repositories

import (
	"context"
	"errors"

	"storefront-checkout/internal/models"
)

// ErrNotFound is returned when a key or record does not exist.
var ErrNotFound = errors.New("not found")

// CartStorage is the durable mirror of a cart. It stores opaque bytes under
// a key; encoding is the caller's concern.
type CartStorage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// CouponRepository interface for the PostgreSQL coupon catalog
type CouponRepository interface {
	List(ctx context.Context) ([]models.Coupon, error)
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
}

// OrderReferenceRepository interface for MongoDB order reference operations
type OrderReferenceRepository interface {
	Create(ctx context.Context, ref *models.OrderReference) error
	GetByOrderNumber(ctx context.Context, orderNumber string) (*models.OrderReference, error)
	UpdateStatus(ctx context.Context, orderNumber string, status models.OrderStatus) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]models.OrderReference, error)
}
