package directory

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/waterdesk/internal/apiclient"
	"github.com/vladislavdragonenkov/waterdesk/internal/domain"
)

// Client — REST-клиент справочника клиентов внешнего API.
type Client struct {
	api    *apiclient.Client
	logger *log.Entry
}

// NewClient создаёт клиент справочника поверх общего ядра API.
func NewClient(api *apiclient.Client, logger *log.Entry) *Client {
	if logger == nil {
		logger = log.New().WithField("component", "directory")
	}
	return &Client{api: api, logger: logger}
}

// customerDTO — форма клиента во внешнем API.
type customerDTO struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	AgencyLevel int       `json:"agency_level,omitempty"`
	Debt        int64     `json:"debt"`
	EmptyDebt   int       `json:"empty_debt"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (d customerDTO) toDomain() domain.Customer {
	return domain.Customer{
		ID:          d.ID,
		Name:        d.Name,
		Phone:       d.Phone,
		Address:     d.Address,
		Type:        domain.CustomerType(d.Type),
		AgencyLevel: d.AgencyLevel,
		DebtMinor:   d.Debt,
		EmptyDebt:   d.EmptyDebt,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// List возвращает всех клиентов справочника.
func (c *Client) List(ctx context.Context) ([]domain.Customer, error) {
	var dtos []customerDTO
	if err := c.api.GetJSON(ctx, "/customers", &dtos); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}

	customers := make([]domain.Customer, 0, len(dtos))
	for _, dto := range dtos {
		customers = append(customers, dto.toDomain())
	}
	return customers, nil
}

// Search фильтрует клиентов по подстроке имени или телефона. Фильтрация
// выполняется на клиенте: внешний API поиска не предоставляет.
func (c *Client) Search(ctx context.Context, query string) ([]domain.Customer, error) {
	customers, err := c.List(ctx)
	if err != nil {
		return nil, err
	}

	filtered := customers[:0]
	for _, customer := range customers {
		if customer.MatchesQuery(query) {
			filtered = append(filtered, customer)
		}
	}
	return filtered, nil
}

var _ domain.CustomerDirectory = (*Client)(nil)
