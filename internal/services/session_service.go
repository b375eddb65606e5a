package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"storefront-checkout/internal/models"
	"storefront-checkout/internal/repositories"

	"go.uber.org/zap"
)

// DefaultCartNamespace prefixes every cart storage key.
const DefaultCartNamespace = "storefront:cart"

// OrderNotifier tells a shopper their order was placed.
type OrderNotifier interface {
	SendOrderPlaced(ctx context.Context, phone, orderNumber string) error
}

type SessionConfig struct {
	CartNamespace string
	SuccessURL    string
	CancelURL     string
	Currency      string
}

// SessionDependencies groups the collaborators shared by every session.
// OrderRefs, Events and Notifier are optional.
type SessionDependencies struct {
	Storage   repositories.CartStorage
	Discounts *DiscountEngine
	Orders    OrderCreator
	Payments  PaymentSessionCreator
	Events    EventPublisher
	OrderRefs repositories.OrderReferenceRepository
	Notifier  OrderNotifier
}

// Session is one shopper's cart, checkout and applied discount.
type Session struct {
	ID       string
	Cart     *CartStore
	Checkout *CheckoutOrchestrator

	mu       sync.Mutex
	discount *models.AppliedDiscount
	lastSeen time.Time
}

func (s *Session) Discount() *models.AppliedDiscount {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.discount == nil {
		return nil
	}
	d := *s.discount
	return &d
}

func (s *Session) setDiscount(d *models.AppliedDiscount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discount = d
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// CartSummary is the cart as shown to the shopper.
type CartSummary struct {
	Lines      []models.CartLine       `json:"lines"`
	TotalItems int                     `json:"total_items"`
	Subtotal   int64                   `json:"subtotal"`
	Discount   *models.AppliedDiscount `json:"discount,omitempty"`
	Total      int64                   `json:"total"`
	Revision   int64                   `json:"revision"`
}

type SessionService struct {
	deps   SessionDependencies
	config SessionConfig
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewSessionService(deps SessionDependencies, config SessionConfig, logger *zap.Logger) *SessionService {
	if config.CartNamespace == "" {
		config.CartNamespace = DefaultCartNamespace
	}
	if deps.Discounts == nil {
		deps.Discounts = NewDiscountEngine(DefaultCoupons())
	}
	return &SessionService{
		deps:     deps,
		config:   config,
		logger:   logger,
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// CartKey is the storage key for a session's cart.
func (s *SessionService) CartKey(sessionID string) string {
	return s.config.CartNamespace + ":" + sessionID
}

// Session returns the bundle for sessionID, creating it on first use.
func (s *SessionService) Session(sessionID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if sess, ok := s.sessions[sessionID]; ok {
		sess.touch(now)
		return sess
	}

	sess := &Session{
		ID:   sessionID,
		Cart: NewCartStore(s.deps.Storage, s.CartKey(sessionID), s.logger),
		Checkout: NewCheckoutOrchestrator(s.deps.Orders, s.deps.Payments, s.deps.Events, CheckoutConfig{
			SessionID:  sessionID,
			SuccessURL: s.config.SuccessURL,
			CancelURL:  s.config.CancelURL,
			Currency:   s.config.Currency,
		}, s.logger),
		lastSeen: now,
	}
	s.sessions[sessionID] = sess
	return sess
}

// EvictIdle drops in-memory sessions not used for maxIdle. Carts survive in
// storage; sessions with a checkout running are kept.
func (s *SessionService) EvictIdle(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxIdle)
	evicted := 0
	for id, sess := range s.sessions {
		if sess.idleSince().After(cutoff) || sess.Checkout.State().Phase.IsBusy() {
			continue
		}
		delete(s.sessions, id)
		evicted++
	}
	return evicted
}

// ActiveSessions returns the number of sessions held in memory.
func (s *SessionService) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionService) GetCart(ctx context.Context, sessionID string) CartSummary {
	return s.summary(ctx, s.Session(sessionID))
}

func (s *SessionService) AddItem(ctx context.Context, sessionID string, line models.CartLine) CartSummary {
	sess := s.Session(sessionID)
	sess.Cart.AddItem(ctx, line)
	return s.summary(ctx, sess)
}

func (s *SessionService) UpdateQuantity(ctx context.Context, sessionID string, id models.ProductID, quantity int) CartSummary {
	sess := s.Session(sessionID)
	sess.Cart.UpdateQuantity(ctx, id, quantity)
	return s.summary(ctx, sess)
}

func (s *SessionService) RemoveItem(ctx context.Context, sessionID string, id models.ProductID) CartSummary {
	sess := s.Session(sessionID)
	sess.Cart.RemoveItem(ctx, id)
	return s.summary(ctx, sess)
}

// ClearCart empties the cart and drops any applied discount.
func (s *SessionService) ClearCart(ctx context.Context, sessionID string) CartSummary {
	sess := s.Session(sessionID)
	sess.Cart.Clear(ctx)
	sess.setDiscount(nil)
	return s.summary(ctx, sess)
}

// ApplyDiscount evaluates code against the current subtotal and keeps it on
// success. A rejected code leaves any previous discount in place.
func (s *SessionService) ApplyDiscount(ctx context.Context, sessionID, code string) (CartSummary, models.DiscountResult, error) {
	sess := s.Session(sessionID)
	applied, result, err := s.deps.Discounts.Apply(code, sess.Cart.TotalPrice(ctx))
	if err != nil {
		return s.summary(ctx, sess), result, err
	}
	sess.setDiscount(applied)
	return s.summary(ctx, sess), result, nil
}

func (s *SessionService) RemoveDiscount(ctx context.Context, sessionID string) CartSummary {
	sess := s.Session(sessionID)
	sess.setDiscount(nil)
	return s.summary(ctx, sess)
}

func (s *SessionService) CheckoutState(sessionID string) CheckoutState {
	return s.Session(sessionID).Checkout.State()
}

// Checkout submits the session's cart. On success the cart is cleared, the
// discount dropped and an order reference recorded before the redirect URL is
// returned.
func (s *SessionService) Checkout(ctx context.Context, sessionID string, customer models.Customer) (*models.CheckoutResult, error) {
	sess := s.Session(sessionID)
	lines := sess.Cart.Lines(ctx)
	discount := sess.Discount()
	req := models.NewCheckoutRequest(lines, customer, discount)

	hooks := CheckoutHooks{
		OnSuccess: func(ctx context.Context, orderNumber string) {
			sess.Cart.Clear(ctx)
			sess.setDiscount(nil)
			s.recordOrder(ctx, sessionID, orderNumber, req)
			s.notifyOrderPlaced(customer.Phone, orderNumber)
		},
		Navigate: func(ctx context.Context, redirectURL string) {
			s.logger.Debug("Redirecting shopper to payment page",
				zap.String("session_id", sessionID),
				zap.String("redirect_url", redirectURL),
			)
		},
	}

	return sess.Checkout.Submit(ctx, lines, customer, discount, hooks)
}

func (s *SessionService) recordOrder(ctx context.Context, sessionID, orderNumber string, req *models.CheckoutRequest) {
	if s.deps.OrderRefs == nil {
		return
	}

	ref := &models.OrderReference{
		OrderNumber:     orderNumber,
		SessionID:       sessionID,
		CustomerEmail:   strings.TrimSpace(req.CustomerEmail),
		TotalAmount:     req.TotalAmount,
		LastKnownStatus: models.OrderPending,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.deps.OrderRefs.Create(ctx, ref); err != nil {
		s.logger.Warn("Failed to record order reference",
			zap.String("order_number", orderNumber),
			zap.Error(err),
		)
	}
}

func (s *SessionService) notifyOrderPlaced(phone, orderNumber string) {
	if s.deps.Notifier == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.deps.Notifier.SendOrderPlaced(ctx, phone, orderNumber); err != nil {
			s.logger.Warn("Failed to send order SMS",
				zap.String("order_number", orderNumber),
				zap.Error(err),
			)
		}
	}()
}

// ListOrders returns the orders placed from a session, newest first.
func (s *SessionService) ListOrders(ctx context.Context, sessionID string, limit int) ([]models.OrderReference, error) {
	if s.deps.OrderRefs == nil {
		return []models.OrderReference{}, nil
	}
	refs, err := s.deps.OrderRefs.ListBySession(ctx, sessionID, limit)
	if errors.Is(err, repositories.ErrNotFound) {
		return []models.OrderReference{}, nil
	}
	return refs, err
}

func (s *SessionService) summary(ctx context.Context, sess *Session) CartSummary {
	snapshot := sess.Cart.Snapshot(ctx)
	cart := models.Cart{Lines: snapshot.Lines}
	discount := sess.Discount()

	subtotal := cart.TotalPrice()
	total := subtotal
	if discount != nil {
		total -= discount.Amount
		if total < 0 {
			total = 0
		}
	}

	return CartSummary{
		Lines:      snapshot.Lines,
		TotalItems: cart.TotalItems(),
		Subtotal:   subtotal,
		Discount:   discount,
		Total:      total,
		Revision:   snapshot.Revision,
	}
}
