package services

import (
	"context"
	"errors"
	"time"

	"storefront-checkout/internal/clients"
	"storefront-checkout/internal/models"
	"storefront-checkout/internal/repositories"

	"go.uber.org/zap"
)

// ErrOrderNotFound is returned when neither the order service nor the local
// references know the order.
var ErrOrderNotFound = clients.ErrOrderNotFound

type OrderStatusReader interface {
	GetOrderStatus(ctx context.Context, orderNumber string) (models.OrderStatus, error)
}

// TrackedOrder is an order's progress plus where the status came from.
// Stale is set when the order service could not be reached and the last
// known status was used instead.
type TrackedOrder struct {
	OrderNumber string        `json:"order_number"`
	Progress    OrderProgress `json:"progress"`
	Stale       bool          `json:"stale"`
	CheckedAt   *time.Time    `json:"checked_at,omitempty"`
}

type OrderTrackingService struct {
	orders OrderStatusReader
	refs   repositories.OrderReferenceRepository
	logger *zap.Logger
}

func NewOrderTrackingService(orders OrderStatusReader, refs repositories.OrderReferenceRepository, logger *zap.Logger) *OrderTrackingService {
	return &OrderTrackingService{
		orders: orders,
		refs:   refs,
		logger: logger,
	}
}

func (s *OrderTrackingService) Track(ctx context.Context, orderNumber string) (*TrackedOrder, error) {
	status, err := s.orders.GetOrderStatus(ctx, orderNumber)
	if err == nil {
		now := time.Now().UTC()
		s.rememberStatus(ctx, orderNumber, status)
		return &TrackedOrder{
			OrderNumber: orderNumber,
			Progress:    TrackOrderStatus(status),
			CheckedAt:   &now,
		}, nil
	}

	if errors.Is(err, ErrOrderNotFound) {
		return nil, ErrOrderNotFound
	}

	s.logger.Warn("Failed to fetch order status, trying last known status",
		zap.String("order_number", orderNumber),
		zap.Error(err),
	)

	if s.refs == nil {
		return nil, newCheckoutError(KindServiceError, serviceMessage(err, "Failed to fetch order status"), err)
	}

	ref, refErr := s.refs.GetByOrderNumber(ctx, orderNumber)
	if refErr != nil || ref.LastKnownStatus == "" {
		return nil, newCheckoutError(KindServiceError, serviceMessage(err, "Failed to fetch order status"), err)
	}

	return &TrackedOrder{
		OrderNumber: orderNumber,
		Progress:    TrackOrderStatus(ref.LastKnownStatus),
		Stale:       true,
		CheckedAt:   ref.StatusCheckedAt,
	}, nil
}

func (s *OrderTrackingService) rememberStatus(ctx context.Context, orderNumber string, status models.OrderStatus) {
	if s.refs == nil {
		return
	}
	err := s.refs.UpdateStatus(ctx, orderNumber, status)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		s.logger.Warn("Failed to store order status",
			zap.String("order_number", orderNumber),
			zap.Error(err),
		)
	}
}
