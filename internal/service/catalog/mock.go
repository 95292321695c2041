package catalog

import (
	"context"

	"github.com/vladislavdragonenkov/waterdesk/internal/domain"
)

// MockService — конфигурируемая заглушка ProductCatalog для тестов.
type MockService struct {
	Products []domain.Product
	ListErr  error

	ListCalls   int
	SearchCalls int
}

// NewMockService возвращает mock с заданными товарами.
func NewMockService(products ...domain.Product) *MockService {
	return &MockService{Products: products}
}

// List возвращает настроенные товары либо заданную ошибку и считает вызовы.
func (m *MockService) List(_ context.Context) ([]domain.Product, error) {
	m.ListCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Products, nil
}

// Search фильтрует настроенные товары и считает вызовы.
func (m *MockService) Search(_ context.Context, query string) ([]domain.Product, error) {
	m.SearchCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var filtered []domain.Product
	for _, product := range m.Products {
		if product.MatchesQuery(query) {
			filtered = append(filtered, product)
		}
	}
	return filtered, nil
}

var _ domain.ProductCatalog = (*MockService)(nil)
