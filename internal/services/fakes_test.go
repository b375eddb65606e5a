package services_test

import (
	"context"
	"errors"
	"sync"

	"storefront-checkout/internal/models"
	"storefront-checkout/internal/repositories"
	"storefront-checkout/pkg/messaging"
)

// --- Mock cart storage ---

type memoryStorage struct {
	mu      sync.Mutex
	data    map[string][]byte
	saves   int
	loadErr error
	saveErr error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{data: make(map[string][]byte)}
}

func (m *memoryStorage) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	data, ok := m.data[key]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *memoryStorage) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *memoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memoryStorage) raw(key string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key]
}

// --- Mock order service ---

type mockOrders struct {
	mu          sync.Mutex
	calls       int
	keys        []string
	requests    []*models.CheckoutRequest
	orderNumber string
	err         error
	// block, when set, is waited on before answering
	block chan struct{}
}

func (m *mockOrders) CreateOrder(_ context.Context, req *models.CheckoutRequest, key string) (string, error) {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.keys = append(m.keys, key)
	m.requests = append(m.requests, req)
	if m.err != nil {
		return "", m.err
	}
	return m.orderNumber, nil
}

func (m *mockOrders) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// --- Mock payment sessions ---

type mockPayments struct {
	mu       sync.Mutex
	calls    int
	requests []*models.PaymentSessionRequest
	url      string
	err      error
}

func (m *mockPayments) CreatePaymentSession(_ context.Context, req *models.PaymentSessionRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.requests = append(m.requests, req)
	if m.err != nil {
		return "", m.err
	}
	return m.url, nil
}

// --- Mock event publisher ---

type mockEvents struct {
	mu     sync.Mutex
	events []messaging.CheckoutEvent
	err    error
}

func (m *mockEvents) PublishCheckoutEvent(_ context.Context, event messaging.CheckoutEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.err
}

func (m *mockEvents) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.Type)
	}
	return out
}

// --- Mock order references ---

type mockOrderRefs struct {
	mu   sync.Mutex
	refs map[string]*models.OrderReference
	err  error
}

func newMockOrderRefs() *mockOrderRefs {
	return &mockOrderRefs{refs: make(map[string]*models.OrderReference)}
}

func (m *mockOrderRefs) Create(_ context.Context, ref *models.OrderReference) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	copied := *ref
	m.refs[ref.OrderNumber] = &copied
	return nil
}

func (m *mockOrderRefs) GetByOrderNumber(_ context.Context, orderNumber string) (*models.OrderReference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ref, ok := m.refs[orderNumber]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *ref
	return &copied, nil
}

func (m *mockOrderRefs) UpdateStatus(_ context.Context, orderNumber string, status models.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ref, ok := m.refs[orderNumber]
	if !ok {
		return repositories.ErrNotFound
	}
	ref.LastKnownStatus = status
	return nil
}

func (m *mockOrderRefs) ListBySession(_ context.Context, sessionID string, limit int) ([]models.OrderReference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.OrderReference
	for _, ref := range m.refs {
		if ref.SessionID == sessionID && len(out) < limit {
			out = append(out, *ref)
		}
	}
	return out, nil
}

// serviceError mimics a remote error that carries the service's own text.
type serviceError struct {
	message string
}

func (e *serviceError) Error() string          { return "remote: " + e.message }
func (e *serviceError) ServiceMessage() string { return e.message }

var errNetwork = errors.New("connection refused")

func line(id string, price int64, qty int) models.CartLine {
	return models.CartLine{
		ID:        models.ProductID(id),
		Name:      "Product " + id,
		UnitPrice: price,
		Quantity:  qty,
	}
}
