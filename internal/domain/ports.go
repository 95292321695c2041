package domain

import "context"

// CustomerDirectory — внешний справочник клиентов.
type CustomerDirectory interface {
	// List возвращает всех клиентов.
	List(ctx context.Context) ([]Customer, error)
	// Search фильтрует клиентов по подстроке имени (без учёта регистра) или телефона.
	Search(ctx context.Context, query string) ([]Customer, error)
}

// ProductCatalog — внешний каталог товаров с остатками и признаком возвратной тары.
type ProductCatalog interface {
	// List возвращает все товары.
	List(ctx context.Context) ([]Product, error)
	// Search фильтрует товары по подстроке имени без учёта регистра.
	Search(ctx context.Context, query string) ([]Product, error)
}

// OrderSubmitter — внешняя точка создания заказов.
type OrderSubmitter interface {
	// Create передаёт заказ backend и возвращает сохранённую запись.
	Create(ctx context.Context, payload OrderPayload) (Order, error)
	// ListByCustomer возвращает историю заказов клиента, новые первыми;
	// limit > 0 ограничивает выборку.
	ListByCustomer(ctx context.Context, customerID string, limit int) ([]Order, error)
}
