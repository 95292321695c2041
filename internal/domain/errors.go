package domain

import (
	"errors"
	"fmt"
)

var (
	// Ошибка отправки заказа без выбранного клиента.
	ErrCustomerRequired = errors.New("customer is required")
	// Ошибка отправки пустой корзины.
	ErrCartEmpty = errors.New("cart must contain at least one line")
	// Ошибка при некорректном количестве в позиции (<= 0).
	ErrLineQtyInvalid = errors.New("line qty must be greater than zero")
	// Ошибка, если цена позиции отрицательная.
	ErrLinePriceInvalid = errors.New("line price must be non-negative")
	// Ошибка несоответствия суммы позиции количеству и цене.
	ErrLineTotalMismatch = errors.New("line total does not match qty and price")
	// Ошибка дублирования позиции: на один товар допустима одна строка корзины.
	ErrLineDuplicate = errors.New("duplicate cart line for product")
	// Ошибка отрицательной внесённой суммы.
	ErrPaidAmountNegative = errors.New("paid amount must be non-negative")
	// ErrSubmitInFlight возвращается при повторной отправке, пока предыдущая не завершена.
	ErrSubmitInFlight = errors.New("order submit already in flight")
	// ErrComposerFinalized возвращается при операции над завершённым composer
	// (заказ отправлен или форма отменена).
	ErrComposerFinalized = errors.New("composer is already finalized")
)

// ProductNotFoundError — позиция корзины не найдена в снимке каталога.
type ProductNotFoundError struct {
	ProductID   string
	ProductName string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %q (%s) not found in catalog", e.ProductName, e.ProductID)
}

// InsufficientStockError — остаток по снимку каталога меньше запрошенного.
// Снимок может устареть, авторитетную проверку выполняет backend.
type InsufficientStockError struct {
	ProductName string
	Available   int32
	Requested   int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("product %q has only %d in stock, %d requested",
		e.ProductName, e.Available, e.Requested)
}

// ErrorCategory классифицирует ошибки внешнего API по явным вариантам вместо
// разбора произвольной формы ответа.
type ErrorCategory string

const (
	// CategoryNetwork — ответ от сервера не получен.
	CategoryNetwork ErrorCategory = "network"
	// CategoryRejected — сервер отклонил запрос с сообщением.
	CategoryRejected ErrorCategory = "rejected"
	// CategorySoftSuccess — сервер сообщил об ошибке, но заказ создан:
	// частичный сбой трактуется как успех с предупреждением.
	CategorySoftSuccess ErrorCategory = "soft_success"
)

// APIError — типизированная ошибка внешнего API с явными полями статуса,
// сообщения и категории.
type APIError struct {
	StatusCode int
	Message    string
	Category   ErrorCategory
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("api error (%s, status %d): %s", e.Category, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error (%s): %s", e.Category, e.Message)
}

// AsAPIError извлекает APIError из цепочки ошибок.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsNetworkError проверяет, что ошибка означает отсутствие ответа от сервера.
func IsNetworkError(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Category == CategoryNetwork
}

// IsSoftSuccess проверяет, что ошибка означает частично успешное создание заказа.
func IsSoftSuccess(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Category == CategorySoftSuccess
}
