package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storefront-checkout/internal/models"
)

// ErrOrderNotFound is returned when the order service answers 404.
var ErrOrderNotFound = errors.New("order not found")

// APIError is a non-2xx answer from a remote service. Message holds the
// service's own error text when the body carried one.
type APIError struct {
	Service    string
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s API error (status %d): %s", e.Service, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s API error (status %d): %s", e.Service, e.StatusCode, e.Body)
}

// ServiceMessage returns the text the service reported, if any.
func (e *APIError) ServiceMessage() string {
	return e.Message
}

func (e *APIError) Is(target error) bool {
	return target == ErrOrderNotFound && e.Service == "order" && e.StatusCode == http.StatusNotFound
}

type OrderClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewOrderClient(baseURL, apiKey string, timeout time.Duration) *OrderClient {
	return &OrderClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type createOrderResponse struct {
	OrderNumber string `json:"orderNumber"`
}

type orderStatusResponse struct {
	OrderNumber string `json:"orderNumber"`
	Status      string `json:"status"`
}

// CreateOrder posts the checkout request and returns the assigned order
// number. The idempotency key is forwarded so a retried request does not
// create a second order.
func (c *OrderClient) CreateOrder(ctx context.Context, req *models.CheckoutRequest, idempotencyKey string) (string, error) {
	headers := map[string]string{}
	if idempotencyKey != "" {
		headers["Idempotency-Key"] = idempotencyKey
	}

	respBody, err := c.makeRequest(ctx, http.MethodPost, c.baseURL+"/orders", req, headers)
	if err != nil {
		return "", err
	}

	var result createOrderResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse order response: %w", err)
	}
	return result.OrderNumber, nil
}

// GetOrderStatus returns the backend-owned status of an order.
func (c *OrderClient) GetOrderStatus(ctx context.Context, orderNumber string) (models.OrderStatus, error) {
	respBody, err := c.makeRequest(ctx, http.MethodGet, c.baseURL+"/orders/"+url.PathEscape(orderNumber), nil, nil)
	if err != nil {
		return "", err
	}

	var result orderStatusResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse order status response: %w", err)
	}
	return models.ParseOrderStatus(result.Status)
}

func (c *OrderClient) makeRequest(ctx context.Context, method, endpoint string, body interface{}, headers map[string]string) ([]byte, error) {
	var reqBody io.Reader

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError("order", resp.StatusCode, respBody)
	}

	return respBody, nil
}

// newAPIError pulls "error" or "message" out of a JSON error body.
func newAPIError(service string, status int, body []byte) *APIError {
	apiErr := &APIError{
		Service:    service,
		StatusCode: status,
		Body:       strings.TrimSpace(string(body)),
	}

	var payload struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return apiErr
	}

	var errText string
	if len(payload.Error) > 0 && json.Unmarshal(payload.Error, &errText) == nil && errText != "" {
		apiErr.Message = errText
		return apiErr
	}

	// Some providers nest the error: {"error": {"description": "..."}}
	var nested struct {
		Description string `json:"description"`
		Message     string `json:"message"`
	}
	if len(payload.Error) > 0 && json.Unmarshal(payload.Error, &nested) == nil {
		if nested.Description != "" {
			apiErr.Message = nested.Description
			return apiErr
		}
		if nested.Message != "" {
			apiErr.Message = nested.Message
			return apiErr
		}
	}

	apiErr.Message = payload.Message
	return apiErr
}
