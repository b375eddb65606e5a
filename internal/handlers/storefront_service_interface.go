package handlers

import (
	"context"

	"storefront-checkout/internal/models"
	"storefront-checkout/internal/services"
	"storefront-checkout/pkg/auth"
)

// StorefrontServiceInterface defines the contract for the per-session cart,
// discount and checkout operations
type StorefrontServiceInterface interface {
	GetCart(ctx context.Context, sessionID string) services.CartSummary
	AddItem(ctx context.Context, sessionID string, line models.CartLine) services.CartSummary
	UpdateQuantity(ctx context.Context, sessionID string, id models.ProductID, quantity int) services.CartSummary
	RemoveItem(ctx context.Context, sessionID string, id models.ProductID) services.CartSummary
	ClearCart(ctx context.Context, sessionID string) services.CartSummary
	ApplyDiscount(ctx context.Context, sessionID, code string) (services.CartSummary, models.DiscountResult, error)
	RemoveDiscount(ctx context.Context, sessionID string) services.CartSummary
	Checkout(ctx context.Context, sessionID string, customer models.Customer) (*models.CheckoutResult, error)
	CheckoutState(sessionID string) services.CheckoutState
	ListOrders(ctx context.Context, sessionID string, limit int) ([]models.OrderReference, error)
}

// OrderTrackingServiceInterface defines the contract for order status lookups
type OrderTrackingServiceInterface interface {
	Track(ctx context.Context, orderNumber string) (*services.TrackedOrder, error)
}

// SessionIssuer creates anonymous session tokens
type SessionIssuer interface {
	NewSession() (*auth.SessionTokenResponse, error)
}
