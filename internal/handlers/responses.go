package handlers

import (
	"errors"
	"net/http"

	"storefront-checkout/internal/services"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// DiscountErrorResponse is returned when a coupon is rejected.
type DiscountErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	MinimumAmount int64  `json:"minimum_amount,omitempty"`
}

func statusForKind(kind services.ErrorKind) int {
	switch kind {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindInvalidCode, services.KindMinimumNotMet:
		return http.StatusUnprocessableEntity
	case services.KindCheckoutInProgress:
		return http.StatusConflict
	case services.KindServiceError, services.KindMissingRedirectURL:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// respondError writes err using the status that matches its kind.
func respondError(c *gin.Context, fallback string, err error) {
	var cerr *services.CheckoutError
	if errors.As(err, &cerr) {
		c.JSON(statusForKind(cerr.Kind), ErrorResponse{
			Error:   string(cerr.Kind),
			Message: cerr.Message,
		})
		return
	}

	if errors.Is(err, services.ErrOrderNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Order not found",
			Message: err.Error(),
		})
		return
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   fallback,
		Message: err.Error(),
	})
}

func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, ErrorResponse{
		Error:   "Unauthorized",
		Message: "Session ID not found",
	})
}

func errorMessage(err error) string {
	var cerr *services.CheckoutError
	if errors.As(err, &cerr) {
		return cerr.Message
	}
	return err.Error()
}
