package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storefront-checkout/internal/models"
)

// RazorpaySessionClient creates Razorpay Payment Links. The link's short URL
// is the hosted payment page.
type RazorpaySessionClient struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
}

func NewRazorpaySessionClient(keyID, keySecret, baseURL string) *RazorpaySessionClient {
	if baseURL == "" {
		baseURL = "https://api.razorpay.com/v1"
	}
	return &RazorpaySessionClient{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type RazorpayPaymentLinkRequest struct {
	Amount         int64                  `json:"amount"` // minor units (paise)
	Currency       string                 `json:"currency"`
	ReferenceID    string                 `json:"reference_id"`
	Description    string                 `json:"description"`
	Customer       RazorpayCustomer       `json:"customer"`
	Notify         RazorpayNotify         `json:"notify"`
	CallbackURL    string                 `json:"callback_url"`
	CallbackMethod string                 `json:"callback_method"`
	Notes          map[string]interface{} `json:"notes,omitempty"`
}

type RazorpayCustomer struct {
	Email   string `json:"email,omitempty"`
	Contact string `json:"contact,omitempty"`
}

type RazorpayNotify struct {
	SMS   bool `json:"sms"`
	Email bool `json:"email"`
}

type RazorpayPaymentLinkResponse struct {
	ID          string `json:"id"`
	ShortURL    string `json:"short_url"`
	Status      string `json:"status"`
	ReferenceID string `json:"reference_id"`
}

// CreatePaymentSession creates a payment link for the order. Razorpay has a
// single callback, so the cancel URL is carried in the notes only.
func (c *RazorpaySessionClient) CreatePaymentSession(ctx context.Context, req *models.PaymentSessionRequest) (string, error) {
	linkReq := &RazorpayPaymentLinkRequest{
		Amount:      req.Amount,
		Currency:    strings.ToUpper(req.Currency),
		ReferenceID: req.OrderNumber,
		Description: fmt.Sprintf("Payment for order %s", req.OrderNumber),
		Customer: RazorpayCustomer{
			Email:   req.CustomerEmail,
			Contact: req.CustomerPhone,
		},
		Notify:         RazorpayNotify{SMS: false, Email: false},
		CallbackURL:    req.SuccessURL,
		CallbackMethod: "get",
		Notes: map[string]interface{}{
			"order_number": req.OrderNumber,
			"cancel_url":   req.CancelURL,
		},
	}

	jsonBody, err := json.Marshal(linkReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payment link request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payment_links", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.SetBasicAuth(c.keyID, c.keySecret)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", newAPIError("razorpay", resp.StatusCode, respBody)
	}

	var link RazorpayPaymentLinkResponse
	if err := json.Unmarshal(respBody, &link); err != nil {
		return "", fmt.Errorf("failed to parse payment link response: %w", err)
	}
	return link.ShortURL, nil
}
