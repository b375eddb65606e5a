package handlers

import (
	"net/http"
	"strconv"

	"storefront-checkout/internal/middleware"
	"storefront-checkout/internal/models"
	"storefront-checkout/internal/services"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	storefront StorefrontServiceInterface
	tracking   OrderTrackingServiceInterface
}

func NewOrderHandler(storefront StorefrontServiceInterface, tracking OrderTrackingServiceInterface) *OrderHandler {
	return &OrderHandler{
		storefront: storefront,
		tracking:   tracking,
	}
}

func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup, sessionRequired gin.HandlerFunc) {
	checkout := router.Group("/checkout", sessionRequired)
	{
		checkout.POST("", h.Checkout)
		checkout.GET("", h.GetCheckoutState)
	}

	orders := router.Group("/orders", sessionRequired)
	{
		orders.GET("", h.ListOrders)
		orders.GET("/:order_number/status", h.GetOrderStatus)
	}

	router.GET("/order-status/:status", h.ProjectStatus)
}

// @Summary Check out the session's cart
// @Description Creates the order, opens a payment session and returns the payment page URL
// @Tags checkout
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.Customer true "Customer details"
// @Success 200 {object} models.CheckoutResult
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/v1/checkout [post]
func (h *OrderHandler) Checkout(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	if sessionID == "" {
		unauthorized(c)
		return
	}

	var customer models.Customer
	if err := c.ShouldBindJSON(&customer); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	result, err := h.storefront.Checkout(c.Request.Context(), sessionID, customer)
	if err != nil {
		respondError(c, "Checkout failed", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *OrderHandler) GetCheckoutState(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	if sessionID == "" {
		unauthorized(c)
		return
	}

	c.JSON(http.StatusOK, h.storefront.CheckoutState(sessionID))
}

// @Summary List orders placed from this session
// @Tags orders
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Maximum number of orders" default(20)
// @Success 200 {array} models.OrderReference
// @Router /api/v1/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	if sessionID == "" {
		unauthorized(c)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	orders, err := h.storefront.ListOrders(c.Request.Context(), sessionID, limit)
	if err != nil {
		respondError(c, "Failed to list orders", err)
		return
	}

	c.JSON(http.StatusOK, orders)
}

// @Summary Track an order
// @Description Fetches the order status and projects it onto the fulfilment timeline
// @Tags orders
// @Security BearerAuth
// @Produce json
// @Param order_number path string true "Order number"
// @Success 200 {object} services.TrackedOrder
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/v1/orders/{order_number}/status [get]
func (h *OrderHandler) GetOrderStatus(c *gin.Context) {
	orderNumber := c.Param("order_number")

	tracked, err := h.tracking.Track(c.Request.Context(), orderNumber)
	if err != nil {
		respondError(c, "Failed to track order", err)
		return
	}

	c.JSON(http.StatusOK, tracked)
}

type StatusProjectionResponse struct {
	services.OrderProgress
	CompletionRatio *float64 `json:"completion_ratio"`
}

// ProjectStatus maps a raw status value onto the timeline without any lookup.
func (h *OrderHandler) ProjectStatus(c *gin.Context) {
	status, err := models.ParseOrderStatus(c.Param("status"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid order status",
			Message: err.Error(),
		})
		return
	}

	progress := services.TrackOrderStatus(status)
	resp := StatusProjectionResponse{OrderProgress: progress}
	if ratio, ok := progress.CompletionRatio(); ok {
		resp.CompletionRatio = &ratio
	}
	c.JSON(http.StatusOK, resp)
}
