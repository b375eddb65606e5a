package clients

import (
	"context"
	"fmt"

	"storefront-checkout/configs"
	"storefront-checkout/internal/models"
)

// PaymentSessionClient opens a hosted payment page and returns its URL.
type PaymentSessionClient interface {
	CreatePaymentSession(ctx context.Context, req *models.PaymentSessionRequest) (string, error)
}

// NewPaymentSessionClient picks the provider named in cfg.
func NewPaymentSessionClient(cfg configs.PaymentConfig) (PaymentSessionClient, error) {
	switch cfg.Provider {
	case "", "stripe":
		if cfg.Stripe.SecretKey == "" {
			return nil, fmt.Errorf("stripe provider selected but STRIPE_SECRET_KEY is empty")
		}
		return NewStripeSessionClient(cfg.Stripe.SecretKey), nil
	case "razorpay":
		return NewRazorpaySessionClient(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, cfg.Razorpay.BaseURL), nil
	}
	return nil, fmt.Errorf("unknown payment provider %q", cfg.Provider)
}
