package orders

import (
	"context"

	"github.com/vladislavdragonenkov/waterdesk/internal/domain"
)

// MockService — конфигурируемая заглушка OrderSubmitter для тестов.
type MockService struct {
	CreateOrder domain.Order
	CreateErr   error
	History     []domain.Order
	ListErr     error

	CreateCalls  int
	ListCalls    int
	LastPayload  domain.OrderPayload
	LastCustomer string
}

// NewMockService возвращает mock с успешным сценарием по умолчанию.
func NewMockService() *MockService {
	return &MockService{
		CreateOrder: domain.Order{ID: "order-1", Status: domain.OrderStatusPending},
	}
}

// Create возвращает заранее настроенный результат и запоминает payload.
func (m *MockService) Create(_ context.Context, payload domain.OrderPayload) (domain.Order, error) {
	m.CreateCalls++
	m.LastPayload = payload
	if m.CreateErr != nil {
		return domain.Order{}, m.CreateErr
	}
	return m.CreateOrder, nil
}

// ListByCustomer возвращает настроенную историю и считает вызовы.
func (m *MockService) ListByCustomer(_ context.Context, customerID string, limit int) ([]domain.Order, error) {
	m.ListCalls++
	m.LastCustomer = customerID
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	orders := m.History
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

var _ domain.OrderSubmitter = (*MockService)(nil)
