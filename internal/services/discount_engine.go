package services

import (
	"math"
	"strings"
	"time"

	"storefront-checkout/internal/models"
)

// DefaultCoupons is the built-in catalog used when no coupon table is
// configured.
func DefaultCoupons() []models.Coupon {
	return []models.Coupon{
		{
			Code:          "WELCOME10",
			Kind:          models.DiscountPercentage,
			Percentage:    0.10,
			MinimumAmount: 0,
			Description:   "10% off your first order",
		},
		{
			Code:          "NUTRA20",
			Kind:          models.DiscountPercentage,
			Percentage:    0.20,
			MinimumAmount: 2000,
			Description:   "20% off orders of 2000 or more",
		},
		{
			Code:          "FLAT100",
			Kind:          models.DiscountFixed,
			FixedAmount:   100,
			MinimumAmount: 1000,
			Description:   "100 off orders of 1000 or more",
		},
	}
}

// DiscountEngine evaluates coupon codes against a subtotal. It has no state
// beyond the catalog it was built with.
type DiscountEngine struct {
	coupons map[string]models.Coupon
}

func NewDiscountEngine(coupons []models.Coupon) *DiscountEngine {
	catalog := make(map[string]models.Coupon, len(coupons))
	for _, coupon := range coupons {
		coupon.Code = normalizeCode(coupon.Code)
		if coupon.Code == "" {
			continue
		}
		catalog[coupon.Code] = coupon
	}
	return &DiscountEngine{coupons: catalog}
}

// Len returns the number of coupons in the catalog.
func (e *DiscountEngine) Len() int {
	return len(e.coupons)
}

// Evaluate resolves code against subtotal (minor units).
func (e *DiscountEngine) Evaluate(code string, subtotal int64) models.DiscountResult {
	key := normalizeCode(code)
	result := models.DiscountResult{Code: key}

	if key == "" {
		result.Reason = models.RejectBlankCode
		return result
	}

	coupon, ok := e.coupons[key]
	if !ok {
		result.Reason = models.RejectInvalidCode
		return result
	}

	if subtotal < coupon.MinimumAmount {
		result.Reason = models.RejectMinimumNotMet
		result.MinimumAmount = coupon.MinimumAmount
		return result
	}

	result.Accepted = true
	result.Description = coupon.Description
	if coupon.Kind == models.DiscountFixed {
		result.Amount = coupon.FixedAmount
	} else {
		result.Amount = roundHalfUp(float64(subtotal) * coupon.Percentage)
	}
	return result
}

// Apply evaluates code and, when accepted, returns the discount to hold for
// the session. Rejections come back as a *CheckoutError.
func (e *DiscountEngine) Apply(code string, subtotal int64) (*models.AppliedDiscount, models.DiscountResult, error) {
	result := e.Evaluate(code, subtotal)
	if !result.Accepted {
		return nil, result, rejectionError(result)
	}
	return &models.AppliedDiscount{
		Code:        result.Code,
		Amount:      result.Amount,
		Description: result.Description,
		AppliedAt:   time.Now().UTC(),
	}, result, nil
}

func rejectionError(result models.DiscountResult) *CheckoutError {
	switch result.Reason {
	case models.RejectBlankCode:
		return newCheckoutError(KindValidation, "Please enter a coupon code", nil)
	case models.RejectMinimumNotMet:
		return newCheckoutError(KindMinimumNotMet, "Minimum order amount not met for this coupon", nil)
	default:
		return newCheckoutError(KindInvalidCode, "Invalid coupon code", nil)
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// roundHalfUp rounds to the nearest integer, halves away from zero. The small
// epsilon absorbs binary float error such as 1005 × 0.1 = 100.49999….
func roundHalfUp(v float64) int64 {
	const epsilon = 1e-9
	if v < 0 {
		return -int64(math.Floor(-v + 0.5 + epsilon))
	}
	return int64(math.Floor(v + 0.5 + epsilon))
}
