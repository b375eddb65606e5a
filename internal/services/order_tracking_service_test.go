package services_test

import (
	"context"
	"fmt"
	"testing"

	"storefront-checkout/internal/models"
	"storefront-checkout/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubStatusReader struct {
	status models.OrderStatus
	err    error
}

func (s *stubStatusReader) GetOrderStatus(context.Context, string) (models.OrderStatus, error) {
	return s.status, s.err
}

func TestOrderTracking_FreshStatusIsRemembered(t *testing.T) {
	ctx := context.Background()
	refs := newMockOrderRefs()
	require.NoError(t, refs.Create(ctx, &models.OrderReference{OrderNumber: "ORD-1", LastKnownStatus: models.OrderPending}))

	svc := services.NewOrderTrackingService(&stubStatusReader{status: models.OrderShipped}, refs, zap.NewNop())

	tracked, err := svc.Track(ctx, "ORD-1")
	require.NoError(t, err)
	assert.False(t, tracked.Stale)
	assert.Equal(t, 2, tracked.Progress.CurrentStage)
	assert.NotNil(t, tracked.CheckedAt)

	ref, err := refs.GetByOrderNumber(ctx, "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, ref.LastKnownStatus)
}

func TestOrderTracking_FallsBackToLastKnownStatus(t *testing.T) {
	ctx := context.Background()
	refs := newMockOrderRefs()
	require.NoError(t, refs.Create(ctx, &models.OrderReference{OrderNumber: "ORD-2", LastKnownStatus: models.OrderProcessing}))

	svc := services.NewOrderTrackingService(&stubStatusReader{err: errNetwork}, refs, zap.NewNop())

	tracked, err := svc.Track(ctx, "ORD-2")
	require.NoError(t, err)
	assert.True(t, tracked.Stale)
	assert.Equal(t, models.OrderProcessing, tracked.Progress.Status)
	assert.Equal(t, 1, tracked.Progress.CurrentStage)
}

func TestOrderTracking_UnknownOrder(t *testing.T) {
	svc := services.NewOrderTrackingService(
		&stubStatusReader{err: fmt.Errorf("lookup: %w", services.ErrOrderNotFound)},
		newMockOrderRefs(),
		zap.NewNop(),
	)

	_, err := svc.Track(context.Background(), "ORD-404")
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
}

func TestOrderTracking_ServiceErrorWithoutFallback(t *testing.T) {
	svc := services.NewOrderTrackingService(&stubStatusReader{err: &serviceError{message: "maintenance"}}, nil, zap.NewNop())

	_, err := svc.Track(context.Background(), "ORD-3")
	cerr := requireKind(t, err, services.KindServiceError)
	assert.Equal(t, "maintenance", cerr.Message)
}
