package orders

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/waterdesk/internal/apiclient"
	"github.com/vladislavdragonenkov/waterdesk/internal/domain"
)

// partialFailureMarker — подстрока сообщения backend, после которой заказ
// фактически создан, несмотря на ошибку в ответе. Временный контракт:
// подлежит замене на явный признак в ответе API, когда backend починит
// отчёт об ошибках позиций.
const partialFailureMarker = "OrderItem validation failed"

// Client — REST-клиент создания заказов и истории заказов.
type Client struct {
	api    *apiclient.Client
	logger *log.Entry
}

// NewClient создаёт клиент заказов поверх общего ядра API.
func NewClient(api *apiclient.Client, logger *log.Entry) *Client {
	if logger == nil {
		logger = log.New().WithField("component", "orders")
	}
	return &Client{api: api, logger: logger}
}

// payloadItemDTO и payloadDTO — форма создаваемого заказа во внешнем API.
type payloadItemDTO struct {
	ProductID string `json:"productId"`
	Quantity  int32  `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
	Total     int64  `json:"total"`
}

type payloadDTO struct {
	CustomerID    string           `json:"customerId"`
	OrderItems    []payloadItemDTO `json:"orderItems"`
	PaidAmount    int64            `json:"paidAmount"`
	TotalAmount   int64            `json:"totalAmount"`
	DepositAmount int64            `json:"depositAmount"`
	TotalPayment  int64            `json:"totalPayment"`
}

func toPayloadDTO(payload domain.OrderPayload) payloadDTO {
	items := make([]payloadItemDTO, 0, len(payload.Items))
	for _, item := range payload.Items {
		items = append(items, payloadItemDTO{
			ProductID: item.ProductID,
			Quantity:  item.Qty,
			UnitPrice: item.UnitPriceMinor,
			Total:     item.TotalMinor,
		})
	}
	return payloadDTO{
		CustomerID:    payload.CustomerID,
		OrderItems:    items,
		PaidAmount:    payload.PaidMinor,
		TotalAmount:   payload.TotalMinor,
		DepositAmount: payload.DepositMinor,
		TotalPayment:  payload.TotalPaymentMinor,
	}
}

// orderDTO — форма сохранённого заказа во внешнем API.
type orderDTO struct {
	ID            string    `json:"_id"`
	CustomerID    string    `json:"customerId"`
	CustomerName  string    `json:"customerName"`
	OrderDate     time.Time `json:"orderDate"`
	Status        string    `json:"status"`
	TotalAmount   int64     `json:"totalAmount"`
	PaidAmount    int64     `json:"paidAmount"`
	DebtRemaining int64     `json:"debtRemaining"`
	ReturnableOut int32     `json:"returnableOut"`
	ReturnableIn  int32     `json:"returnableIn"`
	CreatedBy     string    `json:"createdBy"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (d orderDTO) toDomain() domain.Order {
	return domain.Order{
		ID:                 d.ID,
		CustomerID:         d.CustomerID,
		CustomerName:       d.CustomerName,
		OrderDate:          d.OrderDate,
		Status:             domain.OrderStatus(d.Status),
		TotalMinor:         d.TotalAmount,
		PaidMinor:          d.PaidAmount,
		DebtRemainingMinor: d.DebtRemaining,
		ReturnableOut:      d.ReturnableOut,
		ReturnableIn:       d.ReturnableIn,
		CreatedBy:          d.CreatedBy,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

// Create передаёт заказ backend. Отказ с маркером частичного сбоя
// переклассифицируется в CategorySoftSuccess: заказ создан, ответ сломан.
func (c *Client) Create(ctx context.Context, payload domain.OrderPayload) (domain.Order, error) {
	var dto orderDTO
	err := c.api.PostJSON(ctx, "/orders", toPayloadDTO(payload), &dto)
	if err == nil {
		return dto.toDomain(), nil
	}

	if apiErr, ok := domain.AsAPIError(err); ok &&
		apiErr.Category == domain.CategoryRejected &&
		strings.Contains(apiErr.Message, partialFailureMarker) {
		c.logger.WithFields(log.Fields{
			"customer_id": payload.CustomerID,
			"status":      apiErr.StatusCode,
		}).Warn("backend отклонил ответ, но заказ создан: частичный сбой")
		return domain.Order{}, &domain.APIError{
			StatusCode: apiErr.StatusCode,
			Message:    apiErr.Message,
			Category:   domain.CategorySoftSuccess,
		}
	}

	return domain.Order{}, fmt.Errorf("create order: %w", err)
}

// ListByCustomer возвращает историю заказов клиента, новые первыми.
func (c *Client) ListByCustomer(ctx context.Context, customerID string, limit int) ([]domain.Order, error) {
	var dtos []orderDTO
	path := "/orders?customerId=" + url.QueryEscape(customerID)
	if err := c.api.GetJSON(ctx, path, &dtos); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	orders := make([]domain.Order, 0, len(dtos))
	for _, dto := range dtos {
		orders = append(orders, dto.toDomain())
	}
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

var _ domain.OrderSubmitter = (*Client)(nil)
