package catalog

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/waterdesk/internal/apiclient"
	"github.com/vladislavdragonenkov/waterdesk/internal/domain"
)

// Client — REST-клиент каталога товаров внешнего API.
type Client struct {
	api    *apiclient.Client
	logger *log.Entry
}

// NewClient создаёт клиент каталога поверх общего ядра API.
func NewClient(api *apiclient.Client, logger *log.Entry) *Client {
	if logger == nil {
		logger = log.New().WithField("component", "catalog")
	}
	return &Client{api: api, logger: logger}
}

// productDTO — форма товара во внешнем API.
type productDTO struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Price        int64     `json:"price"`
	Stock        int32     `json:"stock"`
	IsReturnable bool      `json:"is_returnable"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (d productDTO) toDomain() domain.Product {
	return domain.Product{
		ID:         d.ID,
		Name:       d.Name,
		PriceMinor: d.Price,
		Stock:      d.Stock,
		Returnable: d.IsReturnable,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

// List возвращает все товары каталога.
func (c *Client) List(ctx context.Context) ([]domain.Product, error) {
	var dtos []productDTO
	if err := c.api.GetJSON(ctx, "/products", &dtos); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	products := make([]domain.Product, 0, len(dtos))
	for _, dto := range dtos {
		products = append(products, dto.toDomain())
	}
	return products, nil
}

// Search фильтрует товары по подстроке имени без учёта регистра.
func (c *Client) Search(ctx context.Context, query string) ([]domain.Product, error) {
	products, err := c.List(ctx)
	if err != nil {
		return nil, err
	}

	filtered := products[:0]
	for _, product := range products {
		if product.MatchesQuery(query) {
			filtered = append(filtered, product)
		}
	}
	return filtered, nil
}

var _ domain.ProductCatalog = (*Client)(nil)
