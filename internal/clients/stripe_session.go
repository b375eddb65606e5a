package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront-checkout/internal/models"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
)

// StripeSessionClient opens Stripe Checkout Sessions.
type StripeSessionClient struct {
	sessions session.Client
}

func NewStripeSessionClient(secretKey string) *StripeSessionClient {
	return &StripeSessionClient{
		sessions: session.Client{
			B:   stripe.GetBackend(stripe.APIBackend),
			Key: secretKey,
		},
	}
}

// NewStripeSessionClientWithBackend is used to point the client at a
// different API host.
func NewStripeSessionClientWithBackend(secretKey string, backend stripe.Backend) *StripeSessionClient {
	return &StripeSessionClient{
		sessions: session.Client{B: backend, Key: secretKey},
	}
}

// CreatePaymentSession charges the order total as a single line so that any
// discount is already reflected in the amount.
func (c *StripeSessionClient) CreatePaymentSession(ctx context.Context, req *models.PaymentSessionRequest) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.OrderNumber),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(req.Currency)),
					UnitAmount: stripe.Int64(req.Amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(fmt.Sprintf("Order %s", req.OrderNumber)),
						Description: stripe.String(describeItems(req.Items)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	params.AddMetadata("order_number", req.OrderNumber)
	params.Context = ctx

	s, err := c.sessions.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			return "", &APIError{
				Service:    "stripe",
				StatusCode: stripeErr.HTTPStatusCode,
				Message:    stripeErr.Msg,
				Body:       stripeErr.Error(),
			}
		}
		return "", fmt.Errorf("failed to create stripe checkout session: %w", err)
	}
	return s.URL, nil
}

func describeItems(items []models.CheckoutItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%d x %s", item.Quantity, item.Name))
	}
	desc := strings.Join(parts, ", ")
	if desc == "" {
		return "Storefront order"
	}
	return desc
}
