package handlers

import (
	"net/http"
	"strconv"

	"storefront-checkout/internal/models"

	"github.com/gin-gonic/gin"
)

// CouponEvaluator checks a code against a subtotal without applying it.
type CouponEvaluator interface {
	Evaluate(code string, subtotal int64) models.DiscountResult
}

type CouponHandler struct {
	coupons CouponEvaluator
}

func NewCouponHandler(coupons CouponEvaluator) *CouponHandler {
	return &CouponHandler{coupons: coupons}
}

func (h *CouponHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/coupons/:code", h.CheckCoupon)
}

// @Summary Check a coupon code
// @Description Evaluates the code against the given subtotal. Nothing is applied.
// @Tags coupons
// @Produce json
// @Param code path string true "Coupon code"
// @Param subtotal query int false "Subtotal in minor units" default(0)
// @Success 200 {object} models.DiscountResult
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/coupons/{code} [get]
func (h *CouponHandler) CheckCoupon(c *gin.Context) {
	subtotal, err := strconv.ParseInt(c.DefaultQuery("subtotal", "0"), 10, 64)
	if err != nil || subtotal < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid subtotal",
			Message: "subtotal must be a non-negative integer in minor units",
		})
		return
	}

	c.JSON(http.StatusOK, h.coupons.Evaluate(c.Param("code"), subtotal))
}
