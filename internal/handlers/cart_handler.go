package handlers

import (
	"net/http"

	"storefront-checkout/internal/middleware"
	"storefront-checkout/internal/models"

	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	storefront StorefrontServiceInterface
}

func NewCartHandler(storefront StorefrontServiceInterface) *CartHandler {
	return &CartHandler{
		storefront: storefront,
	}
}

type AddToCartRequest struct {
	ID       models.ProductID `json:"id" binding:"required"`
	Name     string           `json:"name" binding:"required"`
	Price    int64            `json:"price" binding:"min=0"`
	Image    string           `json:"image,omitempty"`
	Variant  string           `json:"variant,omitempty"`
	Quantity int              `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type ApplyDiscountRequest struct {
	Code string `json:"code"`
}

// RegisterRoutes registers the routes for cart management
func (h *CartHandler) RegisterRoutes(router *gin.RouterGroup, sessionRequired gin.HandlerFunc) {
	cart := router.Group("/cart", sessionRequired)
	{
		cart.GET("", h.GetCart)
		cart.DELETE("", h.ClearCart)
		cart.POST("/items", h.AddToCart)
		cart.PUT("/items/:product_id", h.UpdateCartItem)
		cart.DELETE("/items/:product_id", h.RemoveFromCart)
		cart.POST("/discount", h.ApplyDiscount)
		cart.DELETE("/discount", h.RemoveDiscount)
	}
}

// GetCart godoc
// @Summary Get the session's cart
// @Tags cart
// @Produce json
// @Success 200 {object} services.CartSummary
// @Failure 401 {object} ErrorResponse
// @Router /cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	if sessionID == "" {
		unauthorized(c)
		return
	}

	c.JSON(http.StatusOK, h.storefront.GetCart(c.Request.Context(), sessionID))
}

// AddToCart godoc
// @Summary Add item to cart
// @Description Adds the quantity to an existing line with the same id, or appends a new line
// @Tags cart
// @Accept json
// @Produce json
// @Param item body AddToCartRequest true "Cart item data"
// @Success 200 {object} services.CartSummary
// @Failure 400 {object} ErrorResponse
// @Router /cart/items [post]
func (h *CartHandler) AddToCart(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	if sessionID == "" {
		unauthorized(c)
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	cart := h.storefront.AddItem(c.Request.Context(), sessionID, models.CartLine{
		ID:        req.ID,
		Name:      req.Name,
		UnitPrice: req.Price,
		Image:     req.Image,
		Variant:   req.Variant,
		Quantity:  req.Quantity,
	})
	c.JSON(http.StatusOK, cart)
}

// UpdateCartItem godoc
// @Summary Set the quantity of a cart line
// @Description A quantity of zero or less removes the line
// @Tags cart
// @Accept json
// @Produce json
// @Param product_id path string true "Product ID"
// @Param item body UpdateCartItemRequest true "New quantity"
// @Success 200 {object} services.CartSummary
// @Failure 400 {object} ErrorResponse
// @Router /cart/items/{product_id} [put]
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	if sessionID == "" {
		unauthorized(c)
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	productID := models.ProductID(c.Param("product_id"))
	c.JSON(http.StatusOK, h.storefront.UpdateQuantity(c.Request.Context(), sessionID, productID, *req.Quantity))
}

func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	if sessionID == "" {
		unauthorized(c)
		return
	}

	productID := models.ProductID(c.Param("product_id"))
	c.JSON(http.StatusOK, h.storefront.RemoveItem(c.Request.Context(), sessionID, productID))
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	if sessionID == "" {
		unauthorized(c)
		return
	}

	c.JSON(http.StatusOK, h.storefront.ClearCart(c.Request.Context(), sessionID))
}

// ApplyDiscount godoc
// @Summary Apply a coupon code to the cart
// @Tags cart
// @Accept json
// @Produce json
// @Param coupon body ApplyDiscountRequest true "Coupon code"
// @Success 200 {object} services.CartSummary
// @Failure 400 {object} DiscountErrorResponse
// @Failure 422 {object} DiscountErrorResponse
// @Router /cart/discount [post]
func (h *CartHandler) ApplyDiscount(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	if sessionID == "" {
		unauthorized(c)
		return
	}

	var req ApplyDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	cart, result, err := h.storefront.ApplyDiscount(c.Request.Context(), sessionID, req.Code)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if result.Reason == models.RejectBlankCode {
			status = http.StatusBadRequest
		}
		c.JSON(status, DiscountErrorResponse{
			Error:         string(result.Reason),
			Message:       errorMessage(err),
			MinimumAmount: result.MinimumAmount,
		})
		return
	}

	c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) RemoveDiscount(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	if sessionID == "" {
		unauthorized(c)
		return
	}

	c.JSON(http.StatusOK, h.storefront.RemoveDiscount(c.Request.Context(), sessionID))
}
