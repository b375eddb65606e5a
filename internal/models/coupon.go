package models

import "time"

type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountFixed      DiscountKind = "fixed"
)

// Coupon is a read-only catalog entry. Amounts are in minor currency units;
// Percentage is a fraction between 0 and 1.
type Coupon struct {
	Code          string       `gorm:"type:varchar(64);primaryKey" json:"code"`
	Kind          DiscountKind `gorm:"type:varchar(20);not null" json:"kind"`
	Percentage    float64      `gorm:"not null;default:0" json:"percentage,omitempty"`
	FixedAmount   int64        `gorm:"not null;default:0" json:"fixed_amount,omitempty"`
	MinimumAmount int64        `gorm:"not null;default:0" json:"minimum_amount"`
	Description   string       `gorm:"type:text" json:"description"`
}

func (Coupon) TableName() string {
	return "coupons"
}

// RejectionReason explains why a code produced no discount.
type RejectionReason string

const (
	RejectBlankCode     RejectionReason = "validation"
	RejectInvalidCode   RejectionReason = "invalid_code"
	RejectMinimumNotMet RejectionReason = "minimum_not_met"
)

// DiscountResult is the outcome of evaluating a code against a subtotal.
type DiscountResult struct {
	Accepted    bool            `json:"accepted"`
	Code        string          `json:"code"`
	Amount      int64           `json:"amount,omitempty"`
	Description string          `json:"description,omitempty"`
	Reason      RejectionReason `json:"reason,omitempty"`
	// MinimumAmount is set when Reason is RejectMinimumNotMet.
	MinimumAmount int64 `json:"minimum_amount,omitempty"`
}

// AppliedDiscount is the discount held by a session until checkout.
type AppliedDiscount struct {
	Code        string    `json:"code"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	AppliedAt   time.Time `json:"applied_at"`
}
