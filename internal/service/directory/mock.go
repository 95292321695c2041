package directory

import (
	"context"

	"github.com/vladislavdragonenkov/waterdesk/internal/domain"
)

// MockService — конфигурируемая заглушка CustomerDirectory для тестов.
type MockService struct {
	Customers []domain.Customer
	ListErr   error

	ListCalls   int
	SearchCalls int
}

// NewMockService возвращает mock с пустым справочником.
func NewMockService(customers ...domain.Customer) *MockService {
	return &MockService{Customers: customers}
}

// List возвращает настроенных клиентов либо заданную ошибку и считает вызовы.
func (m *MockService) List(_ context.Context) ([]domain.Customer, error) {
	m.ListCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Customers, nil
}

// Search фильтрует настроенных клиентов и считает вызовы.
func (m *MockService) Search(_ context.Context, query string) ([]domain.Customer, error) {
	m.SearchCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var filtered []domain.Customer
	for _, customer := range m.Customers {
		if customer.MatchesQuery(query) {
			filtered = append(filtered, customer)
		}
	}
	return filtered, nil
}

var _ domain.CustomerDirectory = (*MockService)(nil)
