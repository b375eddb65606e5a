package services

import (
	"context"

	"storefront-checkout/internal/repositories"

	"go.uber.org/zap"
)

// LoadCouponCatalog builds a DiscountEngine from the coupon table. A nil
// repository, a read error or an empty table all fall back to
// DefaultCoupons.
func LoadCouponCatalog(ctx context.Context, repo repositories.CouponRepository, logger *zap.Logger) *DiscountEngine {
	if repo == nil {
		return NewDiscountEngine(DefaultCoupons())
	}

	coupons, err := repo.List(ctx)
	if err != nil {
		logger.Warn("Failed to load coupons, using built-in catalog", zap.Error(err))
		return NewDiscountEngine(DefaultCoupons())
	}
	if len(coupons) == 0 {
		logger.Info("Coupon table is empty, using built-in catalog")
		return NewDiscountEngine(DefaultCoupons())
	}

	logger.Info("Loaded coupon catalog", zap.Int("count", len(coupons)))
	return NewDiscountEngine(coupons)
}
