package domain

import "time"

// OrderStatus описывает состояние заказа на стороне backend.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан и ожидает доставки.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusCompleted — заказ доставлен и закрыт.
	OrderStatusCompleted OrderStatus = "completed"
	// OrderStatusCanceled — заказ отменён.
	OrderStatusCanceled OrderStatus = "canceled"
)

// PayloadItem — позиция заказа в отправляемых данных.
type PayloadItem struct {
	ProductID      string
	Qty            int32
	UnitPriceMinor int64
	TotalMinor     int64
}

// OrderPayload — данные нового заказа для внешнего API. Собирается один раз
// при отправке и после этого не изменяется.
type OrderPayload struct {
	CustomerID        string
	Items             []PayloadItem
	PaidMinor         int64
	TotalMinor        int64
	DepositMinor      int64
	TotalPaymentMinor int64
}

// Order — сохранённый заказ, как его возвращает backend.
type Order struct {
	ID           string
	CustomerID   string
	CustomerName string
	OrderDate    time.Time
	Status       OrderStatus
	TotalMinor   int64
	PaidMinor    int64
	// DebtRemainingMinor — не оплаченный остаток по заказу.
	DebtRemainingMinor int64
	// ReturnableOut/ReturnableIn — выданная и возвращённая тара по заказу.
	ReturnableOut int32
	ReturnableIn  int32
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	// Provisional отмечает локально синтезированный заказ: backend принял
	// заказ с частичной ошибкой, и список нужно перечитать.
	Provisional bool
}
