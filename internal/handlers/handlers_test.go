package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-checkout/internal/middleware"
	"storefront-checkout/internal/models"
	"storefront-checkout/internal/services"
	"storefront-checkout/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mock Services ---
type MockStorefrontService struct {
	mock.Mock
}

func (m *MockStorefrontService) GetCart(ctx context.Context, sessionID string) services.CartSummary {
	return m.Called(ctx, sessionID).Get(0).(services.CartSummary)
}

func (m *MockStorefrontService) AddItem(ctx context.Context, sessionID string, line models.CartLine) services.CartSummary {
	return m.Called(ctx, sessionID, line).Get(0).(services.CartSummary)
}

func (m *MockStorefrontService) UpdateQuantity(ctx context.Context, sessionID string, id models.ProductID, quantity int) services.CartSummary {
	return m.Called(ctx, sessionID, id, quantity).Get(0).(services.CartSummary)
}

func (m *MockStorefrontService) RemoveItem(ctx context.Context, sessionID string, id models.ProductID) services.CartSummary {
	return m.Called(ctx, sessionID, id).Get(0).(services.CartSummary)
}

func (m *MockStorefrontService) ClearCart(ctx context.Context, sessionID string) services.CartSummary {
	return m.Called(ctx, sessionID).Get(0).(services.CartSummary)
}

func (m *MockStorefrontService) ApplyDiscount(ctx context.Context, sessionID, code string) (services.CartSummary, models.DiscountResult, error) {
	args := m.Called(ctx, sessionID, code)
	return args.Get(0).(services.CartSummary), args.Get(1).(models.DiscountResult), args.Error(2)
}

func (m *MockStorefrontService) RemoveDiscount(ctx context.Context, sessionID string) services.CartSummary {
	return m.Called(ctx, sessionID).Get(0).(services.CartSummary)
}

func (m *MockStorefrontService) Checkout(ctx context.Context, sessionID string, customer models.Customer) (*models.CheckoutResult, error) {
	args := m.Called(ctx, sessionID, customer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CheckoutResult), args.Error(1)
}

func (m *MockStorefrontService) CheckoutState(sessionID string) services.CheckoutState {
	return m.Called(sessionID).Get(0).(services.CheckoutState)
}

func (m *MockStorefrontService) ListOrders(ctx context.Context, sessionID string, limit int) ([]models.OrderReference, error) {
	args := m.Called(ctx, sessionID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.OrderReference), args.Error(1)
}

type MockTrackingService struct {
	mock.Mock
}

func (m *MockTrackingService) Track(ctx context.Context, orderNumber string) (*services.TrackedOrder, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TrackedOrder), args.Error(1)
}

type stubIssuer struct {
	err error
}

func (s stubIssuer) NewSession() (*auth.SessionTokenResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &auth.SessionTokenResponse{SessionID: "s-new", Token: "tok"}, nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(storefront StorefrontServiceInterface, tracking OrderTrackingServiceInterface) *gin.Engine {
	router := gin.New()
	api := router.Group("/api/v1")
	sessionRequired := middleware.SetSessionID("s1")

	NewCartHandler(storefront).RegisterRoutes(api, sessionRequired)
	NewOrderHandler(storefront, tracking).RegisterRoutes(api, sessionRequired)
	NewCouponHandler(services.NewDiscountEngine(services.DefaultCoupons())).RegisterRoutes(api)
	NewAuthHandler(stubIssuer{}).RegisterRoutes(api)
	return router
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestCartHandler_AddToCart(t *testing.T) {
	t.Run("Success - numeric id", func(t *testing.T) {
		storefront := new(MockStorefrontService)
		expected := models.CartLine{ID: "42", Name: "Oats", UnitPrice: 450, Quantity: 2}
		storefront.On("AddItem", mock.Anything, "s1", expected).
			Return(services.CartSummary{Lines: []models.CartLine{expected}, TotalItems: 2, Subtotal: 900, Total: 900}).Once()

		recorder := doJSON(newTestRouter(storefront, nil), http.MethodPost, "/api/v1/cart/items",
			`{"id": 42, "name": "Oats", "price": 450, "quantity": 2}`)

		assert.Equal(t, http.StatusOK, recorder.Code)
		var summary services.CartSummary
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &summary))
		assert.Equal(t, int64(900), summary.Total)
		storefront.AssertExpectations(t)
	})

	t.Run("Failure - missing name", func(t *testing.T) {
		storefront := new(MockStorefrontService)

		recorder := doJSON(newTestRouter(storefront, nil), http.MethodPost, "/api/v1/cart/items", `{"id": "42", "price": 450}`)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		storefront.AssertNotCalled(t, "AddItem", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCartHandler_UpdateCartItem(t *testing.T) {
	storefront := new(MockStorefrontService)
	storefront.On("UpdateQuantity", mock.Anything, "s1", models.ProductID("42"), 0).Return(services.CartSummary{}).Once()

	recorder := doJSON(newTestRouter(storefront, nil), http.MethodPut, "/api/v1/cart/items/42", `{"quantity": 0}`)
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder = doJSON(newTestRouter(storefront, nil), http.MethodPut, "/api/v1/cart/items/42", `{}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	storefront.AssertExpectations(t)
}

func TestCartHandler_ApplyDiscount(t *testing.T) {
	tests := []struct {
		name   string
		result models.DiscountResult
		err    error
		status int
	}{
		{
			name:   "accepted",
			result: models.DiscountResult{Accepted: true, Code: "WELCOME10", Amount: 100},
			status: http.StatusOK,
		},
		{
			name:   "blank code",
			result: models.DiscountResult{Reason: models.RejectBlankCode},
			err:    &services.CheckoutError{Kind: services.KindValidation, Message: "Please enter a discount code"},
			status: http.StatusBadRequest,
		},
		{
			name:   "minimum not met",
			result: models.DiscountResult{Code: "NUTRA20", Reason: models.RejectMinimumNotMet, MinimumAmount: 2000},
			err:    &services.CheckoutError{Kind: services.KindMinimumNotMet, Message: "Minimum order amount is 2000"},
			status: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storefront := new(MockStorefrontService)
			storefront.On("ApplyDiscount", mock.Anything, "s1", "code").Return(services.CartSummary{}, tt.result, tt.err).Once()

			recorder := doJSON(newTestRouter(storefront, nil), http.MethodPost, "/api/v1/cart/discount", `{"code": "code"}`)
			assert.Equal(t, tt.status, recorder.Code)

			if tt.err != nil {
				var resp DiscountErrorResponse
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
				assert.Equal(t, string(tt.result.Reason), resp.Error)
				assert.Equal(t, tt.result.MinimumAmount, resp.MinimumAmount)
				assert.NotEmpty(t, resp.Message)
			}
			storefront.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_CheckoutStatusMapping(t *testing.T) {
	customer := models.Customer{Name: "Asha", Email: "asha@example.com", Phone: "9876543210"}
	body := `{"name": "Asha", "email": "asha@example.com", "phone": "9876543210"}`

	tests := []struct {
		name    string
		result  *models.CheckoutResult
		err     error
		status  int
		message string
	}{
		{"success", &models.CheckoutResult{OrderNumber: "ORD-1", RedirectURL: "https://pay/1"}, nil, http.StatusOK, ""},
		{"validation", nil, &services.CheckoutError{Kind: services.KindValidation, Message: "Your cart is empty"}, http.StatusBadRequest, "Your cart is empty"},
		{"in progress", nil, services.ErrCheckoutInProgress, http.StatusConflict, "A checkout is already in progress"},
		{"service error", nil, &services.CheckoutError{Kind: services.KindServiceError, Message: "Item 42 is out of stock"}, http.StatusBadGateway, "Item 42 is out of stock"},
		{"missing redirect", nil, &services.CheckoutError{Kind: services.KindMissingRedirectURL, Message: "Payment service returned no redirect URL"}, http.StatusBadGateway, "Payment service returned no redirect URL"},
		{"unexpected", nil, errors.New("boom"), http.StatusInternalServerError, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storefront := new(MockStorefrontService)
			storefront.On("Checkout", mock.Anything, "s1", customer).Return(tt.result, tt.err).Once()

			recorder := doJSON(newTestRouter(storefront, nil), http.MethodPost, "/api/v1/checkout", body)
			assert.Equal(t, tt.status, recorder.Code)

			if tt.err == nil {
				var result models.CheckoutResult
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
				assert.Equal(t, "https://pay/1", result.RedirectURL)
			} else {
				var resp ErrorResponse
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
				assert.Equal(t, tt.message, resp.Message)
			}
			storefront.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_GetCheckoutState(t *testing.T) {
	storefront := new(MockStorefrontService)
	storefront.On("CheckoutState", "s1").Return(services.CheckoutState{Phase: services.PhaseFailed, ErrorMessage: "declined"}).Once()

	recorder := doJSON(newTestRouter(storefront, nil), http.MethodGet, "/api/v1/checkout", "")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"phase":"failed"`)
	storefront.AssertExpectations(t)
}

func TestOrderHandler_ListOrdersClampsLimit(t *testing.T) {
	storefront := new(MockStorefrontService)
	storefront.On("ListOrders", mock.Anything, "s1", 20).Return([]models.OrderReference{{OrderNumber: "ORD-1"}}, nil).Twice()

	router := newTestRouter(storefront, nil)
	assert.Equal(t, http.StatusOK, doJSON(router, http.MethodGet, "/api/v1/orders", "").Code)
	assert.Equal(t, http.StatusOK, doJSON(router, http.MethodGet, "/api/v1/orders?limit=500", "").Code)
	storefront.AssertExpectations(t)
}

func TestOrderHandler_GetOrderStatus(t *testing.T) {
	tracking := new(MockTrackingService)
	tracking.On("Track", mock.Anything, "ORD-1").
		Return(&services.TrackedOrder{OrderNumber: "ORD-1", Progress: services.TrackOrderStatus(models.OrderShipped)}, nil).Once()
	tracking.On("Track", mock.Anything, "ORD-404").
		Return(nil, fmt.Errorf("lookup: %w", services.ErrOrderNotFound)).Once()

	router := newTestRouter(new(MockStorefrontService), tracking)

	recorder := doJSON(router, http.MethodGet, "/api/v1/orders/ORD-1/status", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"current_stage":2`)

	recorder = doJSON(router, http.MethodGet, "/api/v1/orders/ORD-404/status", "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	tracking.AssertExpectations(t)
}

func TestOrderHandler_ProjectStatus(t *testing.T) {
	router := newTestRouter(new(MockStorefrontService), nil)

	recorder := doJSON(router, http.MethodGet, "/api/v1/order-status/processing", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	var resp StatusProjectionResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	require.NotNil(t, resp.CompletionRatio)
	assert.InDelta(t, 0.5, *resp.CompletionRatio, 1e-9)

	recorder = doJSON(router, http.MethodGet, "/api/v1/order-status/cancelled", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"completion_ratio":null`)

	recorder = doJSON(router, http.MethodGet, "/api/v1/order-status/lost", "")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestCouponHandler_CheckCoupon(t *testing.T) {
	router := newTestRouter(new(MockStorefrontService), nil)

	recorder := doJSON(router, http.MethodGet, "/api/v1/coupons/nutra20?subtotal=2500", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	var result models.DiscountResult
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	assert.True(t, result.Accepted)
	assert.Equal(t, int64(500), result.Amount)

	recorder = doJSON(router, http.MethodGet, "/api/v1/coupons/NUTRA20?subtotal=-1", "")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestAuthHandler_CreateSession(t *testing.T) {
	router := newTestRouter(new(MockStorefrontService), nil)

	recorder := doJSON(router, http.MethodPost, "/api/v1/sessions", "")
	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"session_id":"s-new"`)

	failing := gin.New()
	NewAuthHandler(stubIssuer{err: errors.New("signing failed")}).RegisterRoutes(failing.Group("/api/v1"))
	recorder = doJSON(failing, http.MethodPost, "/api/v1/sessions", "")
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}
