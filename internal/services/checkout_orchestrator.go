package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"sync"

	"storefront-checkout/internal/models"
	"storefront-checkout/pkg/messaging"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderCreator places an order and returns its order number.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req *models.CheckoutRequest, idempotencyKey string) (string, error)
}

// PaymentSessionCreator opens a hosted payment page and returns its URL.
type PaymentSessionCreator interface {
	CreatePaymentSession(ctx context.Context, req *models.PaymentSessionRequest) (string, error)
}

type EventPublisher interface {
	PublishCheckoutEvent(ctx context.Context, event messaging.CheckoutEvent) error
}

// CheckoutHooks are invoked once a payment page URL is available. OnSuccess
// always runs before Navigate.
type CheckoutHooks struct {
	OnSuccess func(ctx context.Context, orderNumber string)
	Navigate  func(ctx context.Context, redirectURL string)
}

type CheckoutConfig struct {
	SessionID  string
	SuccessURL string
	CancelURL  string
	Currency   string
}

var idempotencyNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("storefront-checkout/idempotency"))

// IdempotencyKey is stable for identical requests from the same session.
func IdempotencyKey(sessionID string, req *models.CheckoutRequest) string {
	payload, _ := json.Marshal(req)
	name := append([]byte(sessionID+"\x00"), payload...)
	return uuid.NewSHA1(idempotencyNamespace, name).String()
}

// CheckoutOrchestrator drives one checkout attempt at a time through order
// creation and payment session creation.
type CheckoutOrchestrator struct {
	orders   OrderCreator
	payments PaymentSessionCreator
	events   EventPublisher
	config   CheckoutConfig
	validate *validator.Validate
	logger   *zap.Logger

	mu    sync.Mutex
	state CheckoutState
	// idempotency key -> order number of an order created but never paid
	pending map[string]string
}

func NewCheckoutOrchestrator(
	orders OrderCreator,
	payments PaymentSessionCreator,
	events EventPublisher,
	config CheckoutConfig,
	logger *zap.Logger,
) *CheckoutOrchestrator {
	return &CheckoutOrchestrator{
		orders:   orders,
		payments: payments,
		events:   events,
		config:   config,
		validate: validator.New(),
		logger:   logger.With(zap.String("session_id", config.SessionID)),
		state:    CheckoutState{Phase: PhaseIdle},
		pending:  make(map[string]string),
	}
}

// State returns a copy of the current state.
func (o *CheckoutOrchestrator) State() CheckoutState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Reset returns a finished attempt to idle. It has no effect while busy.
func (o *CheckoutOrchestrator) Reset() {
	o.dispatch(CheckoutEvent{Type: EventReset})
}

// Submit runs a full checkout attempt. On success the shopper should be sent
// to the returned redirect URL; hooks have already been called by then.
func (o *CheckoutOrchestrator) Submit(
	ctx context.Context,
	lines []models.CartLine,
	customer models.Customer,
	discount *models.AppliedDiscount,
	hooks CheckoutHooks,
) (*models.CheckoutResult, error) {
	o.mu.Lock()
	if o.state.Phase.IsBusy() {
		o.mu.Unlock()
		return nil, ErrCheckoutInProgress
	}
	o.state = ReduceCheckout(o.state, CheckoutEvent{Type: EventSubmit})
	o.mu.Unlock()

	customer = models.Customer{
		Name:  strings.TrimSpace(customer.Name),
		Email: strings.TrimSpace(customer.Email),
		Phone: strings.TrimSpace(customer.Phone),
	}
	if err := o.validateInput(lines, customer); err != nil {
		return nil, o.fail(ctx, err, nil, "")
	}

	req := models.NewCheckoutRequest(lines, customer, discount)
	key := IdempotencyKey(o.config.SessionID, req)

	orderNumber, resumed := o.pendingOrder(key)
	if resumed {
		o.logger.Info("Resuming checkout for unpaid order",
			zap.String("order_number", orderNumber),
			zap.String("idempotency_key", key),
		)
	} else {
		o.dispatch(CheckoutEvent{Type: EventValidated})

		var err error
		orderNumber, err = o.orders.CreateOrder(ctx, req, key)
		if err != nil {
			return nil, o.fail(ctx, newCheckoutError(KindServiceError, serviceMessage(err, "Failed to create order"), err), req, key)
		}
		if orderNumber == "" {
			return nil, o.fail(ctx, newCheckoutError(KindServiceError, "Order service returned no order number", nil), req, key)
		}
	}
	o.dispatch(CheckoutEvent{Type: EventOrderCreated, OrderNumber: orderNumber})

	redirectURL, err := o.payments.CreatePaymentSession(ctx, &models.PaymentSessionRequest{
		OrderNumber:   orderNumber,
		SuccessURL:    withOrderParam(o.config.SuccessURL, orderNumber),
		CancelURL:     withOrderParam(o.config.CancelURL, orderNumber),
		Amount:        req.TotalAmount,
		Currency:      o.config.Currency,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		Items:         req.Items,
	})
	if err != nil {
		o.rememberPending(key, orderNumber)
		o.publish(ctx, messaging.CheckoutOrderUnpaid, req, key, orderNumber, nil)
		return nil, o.fail(ctx, newCheckoutError(KindServiceError, serviceMessage(err, "Failed to create payment session"), err), req, key)
	}

	o.dispatch(CheckoutEvent{Type: EventPaymentSessionCreated, RedirectURL: redirectURL})
	if redirectURL == "" {
		o.rememberPending(key, orderNumber)
		o.publish(ctx, messaging.CheckoutOrderUnpaid, req, key, orderNumber, nil)
		return nil, o.fail(ctx, newCheckoutError(KindMissingRedirectURL, "Payment service returned no redirect URL", nil), req, key)
	}
	o.forgetPending(key)

	if hooks.OnSuccess != nil {
		hooks.OnSuccess(ctx, orderNumber)
	}
	if hooks.Navigate != nil {
		hooks.Navigate(ctx, redirectURL)
	}
	o.dispatch(CheckoutEvent{Type: EventRedirected})

	o.logger.Info("Checkout succeeded", zap.String("order_number", orderNumber))
	o.publish(ctx, messaging.CheckoutSucceeded, req, key, orderNumber, nil)

	return &models.CheckoutResult{OrderNumber: orderNumber, RedirectURL: redirectURL}, nil
}

func (o *CheckoutOrchestrator) validateInput(lines []models.CartLine, customer models.Customer) *CheckoutError {
	if len(lines) == 0 {
		return newCheckoutError(KindValidation, "Your cart is empty", nil)
	}

	err := o.validate.Struct(customer)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return newCheckoutError(KindValidation, "Invalid customer details", err)
	}

	fe := fieldErrors[0]
	var message string
	switch {
	case fe.Tag() == "required":
		message = "Please fill in all required fields"
	case fe.Field() == "Email":
		message = "Please enter a valid email address"
	case fe.Field() == "Phone":
		message = "Please enter a valid phone number"
	default:
		message = "Invalid customer details"
	}
	return newCheckoutError(KindValidation, message, err)
}

func (o *CheckoutOrchestrator) dispatch(event CheckoutEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = ReduceCheckout(o.state, event)
}

func (o *CheckoutOrchestrator) fail(ctx context.Context, cerr *CheckoutError, req *models.CheckoutRequest, key string) error {
	o.dispatch(CheckoutEvent{Type: EventFailed, ErrorKind: cerr.Kind, Message: cerr.Message})

	state := o.State()
	o.logger.Warn("Checkout failed",
		zap.String("kind", string(cerr.Kind)),
		zap.String("message", cerr.Message),
		zap.String("order_number", state.OrderNumber),
		zap.Error(cerr.Err),
	)
	if req != nil {
		o.publish(ctx, messaging.CheckoutFailed, req, key, state.OrderNumber, cerr)
	}
	return cerr
}

func (o *CheckoutOrchestrator) publish(ctx context.Context, eventType string, req *models.CheckoutRequest, key, orderNumber string, cerr *CheckoutError) {
	if o.events == nil {
		return
	}

	event := messaging.CheckoutEvent{
		Type:           eventType,
		SessionID:      o.config.SessionID,
		OrderNumber:    orderNumber,
		IdempotencyKey: key,
		TotalAmount:    req.TotalAmount,
		DiscountCode:   req.DiscountCode,
	}
	if cerr != nil {
		event.ErrorKind = string(cerr.Kind)
		event.ErrorMessage = cerr.Message
	}

	if err := o.events.PublishCheckoutEvent(ctx, event); err != nil {
		o.logger.Warn("Failed to publish checkout event", zap.String("type", eventType), zap.Error(err))
	}
}

func (o *CheckoutOrchestrator) pendingOrder(key string) (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	orderNumber, ok := o.pending[key]
	return orderNumber, ok
}

func (o *CheckoutOrchestrator) rememberPending(key, orderNumber string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending[key] = orderNumber
}

func (o *CheckoutOrchestrator) forgetPending(key string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.pending, key)
}

// serviceMessage returns the text reported by a remote service when err
// carries one.
func serviceMessage(err error, fallback string) string {
	var reported interface{ ServiceMessage() string }
	if errors.As(err, &reported) {
		if msg := strings.TrimSpace(reported.ServiceMessage()); msg != "" {
			return msg
		}
	}
	return fallback
}

func withOrderParam(rawURL, orderNumber string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		sep := "?"
		if strings.Contains(rawURL, "?") {
			sep = "&"
		}
		return rawURL + sep + "order=" + url.QueryEscape(orderNumber)
	}
	q := u.Query()
	q.Set("order", orderNumber)
	u.RawQuery = q.Encode()
	return u.String()
}
