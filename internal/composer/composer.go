package composer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/waterdesk/internal/domain"
	"github.com/vladislavdragonenkov/waterdesk/internal/metrics"
)

// State описывает жизненный цикл сборки заказа.
type State string

const (
	// StateEmpty — корзина создана, позиций ещё нет.
	StateEmpty State = "empty"
	// StateBuilding — корзина наполняется.
	StateBuilding State = "building"
	// StateSubmitting — заказ отправляется; повторная отправка запрещена.
	StateSubmitting State = "submitting"
	// StateSubmitted — заказ принят backend; дальнейшие мутации запрещены.
	StateSubmitted State = "submitted"
	// StateFailed — отправка не удалась; корзина сохранена для повтора.
	StateFailed State = "failed"
	// StateCanceled — форма отменена пользователем.
	StateCanceled State = "canceled"
)

// Callbacks — уведомления родительского контекста UI.
type Callbacks struct {
	// OnOrderCreated вызывается при успехе и при частичном успехе.
	OnOrderCreated func(domain.Order)
	// OnCancel вызывается при отмене формы.
	OnCancel func()
}

// Summary — снимок состояния корзины с производными суммами для отображения.
type Summary struct {
	State             State
	Customer          *domain.Customer
	Lines             []domain.CartLine
	TotalAmountMinor  int64
	TotalReturnable   int32
	DepositMinor      int64
	TotalPaymentMinor int64
	PaidMinor         int64
	RemainingMinor    int64
	Valid             bool
}

// Composer собирает заказ: накапливает позиции по выбранному клиенту,
// пересчитывает производные суммы после каждой мутации и отправляет
// готовый заказ внешнему API. Снимки справочника и каталога загружаются
// один раз при создании и не обновляются; устаревание остатков — принятое
// ограничение, авторитетную проверку выполняет backend.
type Composer struct {
	mu        sync.Mutex
	cart      domain.Cart
	customers []domain.Customer
	products  []domain.Product
	submitter domain.OrderSubmitter
	state     State
	inFlight  bool
	callbacks Callbacks
	logger    *log.Entry
	metrics   *metrics.ComposerMetrics
}

// New создаёт composer и загружает снимки справочника клиентов и каталога.
func New(
	ctx context.Context,
	directory domain.CustomerDirectory,
	catalog domain.ProductCatalog,
	submitter domain.OrderSubmitter,
	callbacks Callbacks,
	logger *log.Entry,
) (*Composer, error) {
	return newComposer(ctx, directory, catalog, submitter, callbacks, logger, metrics.NewComposerMetrics())
}

// NewWithoutMetrics создаёт composer без метрик (для тестов).
func NewWithoutMetrics(
	ctx context.Context,
	directory domain.CustomerDirectory,
	catalog domain.ProductCatalog,
	submitter domain.OrderSubmitter,
	callbacks Callbacks,
	logger *log.Entry,
) (*Composer, error) {
	return newComposer(ctx, directory, catalog, submitter, callbacks, logger, nil)
}

func newComposer(
	ctx context.Context,
	directory domain.CustomerDirectory,
	catalog domain.ProductCatalog,
	submitter domain.OrderSubmitter,
	callbacks Callbacks,
	logger *log.Entry,
	m *metrics.ComposerMetrics,
) (*Composer, error) {
	if logger == nil {
		logger = log.New().WithField("component", "composer")
	}

	customers, err := directory.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load customer snapshot: %w", err)
	}
	products, err := catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load product snapshot: %w", err)
	}

	logger.WithFields(log.Fields{
		"customers": len(customers),
		"products":  len(products),
	}).Info("composer открыт, снимки загружены")

	if m != nil {
		m.RecordComposerOpened()
	}

	return &Composer{
		cart:      domain.Cart{},
		customers: customers,
		products:  products,
		submitter: submitter,
		state:     StateEmpty,
		callbacks: callbacks,
		logger:    logger,
		metrics:   m,
	}, nil
}

// State возвращает текущее состояние жизненного цикла.
func (c *Composer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Customers возвращает снимок справочника клиентов.
func (c *Composer) Customers() []domain.Customer {
	return c.customers
}

// Products возвращает снимок каталога.
func (c *Composer) Products() []domain.Product {
	return c.products
}

// FilterCustomers фильтрует снимок справочника по имени или телефону.
func (c *Composer) FilterCustomers(query string) []domain.Customer {
	var filtered []domain.Customer
	for _, customer := range c.customers {
		if customer.MatchesQuery(query) {
			filtered = append(filtered, customer)
		}
	}
	return filtered
}

// FilterProducts фильтрует снимок каталога по имени.
func (c *Composer) FilterProducts(query string) []domain.Product {
	var filtered []domain.Product
	for _, product := range c.products {
		if product.MatchesQuery(query) {
			filtered = append(filtered, product)
		}
	}
	return filtered
}

// SelectCustomer выбирает клиента заказа.
func (c *Composer) SelectCustomer(customer domain.Customer) error {
	return c.mutate("select_customer", func() {
		c.cart.SelectCustomer(customer)
	})
}

// ClearCustomer сбрасывает выбранного клиента.
func (c *Composer) ClearCustomer() error {
	return c.mutate("clear_customer", func() {
		c.cart.ClearCustomer()
	})
}

// AddProduct добавляет товар в корзину; повторное добавление увеличивает
// количество существующей позиции.
func (c *Composer) AddProduct(product domain.Product) error {
	return c.mutate("add", func() {
		c.cart.AddProduct(product)
	})
}

// AddProductByID добавляет товар из снимка каталога по идентификатору.
func (c *Composer) AddProductByID(productID string) error {
	product, ok := c.findProduct(productID)
	if !ok {
		return &domain.ProductNotFoundError{ProductID: productID}
	}
	return c.AddProduct(product)
}

// UpdateQuantity задаёт количество позиции; qty < 1 молча игнорируется.
func (c *Composer) UpdateQuantity(productID string, qty int32) error {
	return c.mutate("update_qty", func() {
		c.cart.UpdateQuantity(productID, qty)
	})
}

// RemoveLine удаляет позицию; отсутствующая позиция — no-op.
func (c *Composer) RemoveLine(productID string) error {
	return c.mutate("remove", func() {
		c.cart.RemoveLine(productID)
	})
}

// SetPaidAmount фиксирует внесённую сумму, прижимая отрицательные значения к нулю.
func (c *Composer) SetPaidAmount(minor int64) error {
	return c.mutate("set_paid", func() {
		c.cart.SetPaidAmount(minor)
	})
}

// Summary возвращает снимок корзины с производными суммами.
func (c *Composer) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := make([]domain.CartLine, len(c.cart.Lines))
	copy(lines, c.cart.Lines)

	return Summary{
		State:             c.state,
		Customer:          c.cart.Customer,
		Lines:             lines,
		TotalAmountMinor:  c.cart.TotalAmountMinor(),
		TotalReturnable:   c.cart.TotalReturnable(),
		DepositMinor:      c.cart.DepositAmountMinor(),
		TotalPaymentMinor: c.cart.TotalPaymentMinor(),
		PaidMinor:         c.cart.PaidMinor,
		RemainingMinor:    c.cart.RemainingMinor(),
		Valid:             c.cart.IsValid(),
	}
}

// Submit проверяет корзину, сверяет остатки по снимку каталога и передаёт
// заказ внешнему API. Частичный сбой backend трактуется как успех: корзина
// очищается и синтезируется provisional-заказ для обновления списка.
func (c *Composer) Submit(ctx context.Context) (domain.Order, error) {
	c.mu.Lock()

	if c.state == StateSubmitted || c.state == StateCanceled {
		c.mu.Unlock()
		return domain.Order{}, domain.ErrComposerFinalized
	}
	if c.inFlight {
		c.mu.Unlock()
		return domain.Order{}, domain.ErrSubmitInFlight
	}
	if c.cart.Customer == nil {
		c.mu.Unlock()
		return domain.Order{}, domain.ErrCustomerRequired
	}
	if len(c.cart.Lines) == 0 {
		c.mu.Unlock()
		return domain.Order{}, domain.ErrCartEmpty
	}

	// Сверка остатков по последнему снимку каталога. Это UX-защита перед
	// отправкой: снимок мог устареть, окончательное слово за backend.
	for _, line := range c.cart.Lines {
		product, ok := c.findProduct(line.ProductID)
		if !ok {
			c.mu.Unlock()
			c.recordStockRejection()
			return domain.Order{}, &domain.ProductNotFoundError{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
			}
		}
		if product.Stock < line.Qty {
			c.mu.Unlock()
			c.recordStockRejection()
			return domain.Order{}, &domain.InsufficientStockError{
				ProductName: product.Name,
				Available:   product.Stock,
				Requested:   line.Qty,
			}
		}
	}

	payload := c.cart.BuildPayload()
	customer := *c.cart.Customer
	returnableOut := c.cart.TotalReturnable()
	c.inFlight = true
	c.state = StateSubmitting
	c.mu.Unlock()

	start := time.Now()
	order, err := c.submitter.Create(ctx, payload)
	if c.metrics != nil {
		c.metrics.RecordSubmitDuration(time.Since(start))
	}

	c.mu.Lock()
	c.inFlight = false

	if err != nil {
		if domain.IsSoftSuccess(err) {
			// Заказ создан, ответ сломан: очищаем корзину и отдаём
			// provisional-запись, чтобы вызывающая сторона перечитала список.
			order = provisionalOrder(payload, customer, returnableOut)
			c.cart.Reset()
			c.state = StateSubmitted
			c.mu.Unlock()

			c.logger.WithFields(log.Fields{
				"customer_id": customer.ID,
				"order_id":    order.ID,
			}).Warn("заказ принят с частичным сбоем backend")
			if c.metrics != nil {
				c.metrics.RecordOrderSoftSuccess()
				c.metrics.RecordComposerFinalized()
			}
			c.notifyOrderCreated(order)
			return order, nil
		}

		// Корзина сохранена: пользователь может исправить и повторить.
		c.state = StateFailed
		c.mu.Unlock()

		c.logger.WithError(err).WithField("customer_id", customer.ID).Warn("отправка заказа не удалась")
		if c.metrics != nil {
			c.metrics.RecordOrderFailed()
		}
		return domain.Order{}, err
	}

	c.state = StateSubmitted
	c.mu.Unlock()

	c.logger.WithFields(log.Fields{
		"order_id":      order.ID,
		"customer_id":   customer.ID,
		"total_minor":   payload.TotalMinor,
		"deposit_minor": payload.DepositMinor,
	}).Info("заказ создан")
	if c.metrics != nil {
		c.metrics.RecordOrderSubmitted()
		c.metrics.RecordComposerFinalized()
	}
	c.notifyOrderCreated(order)
	return order, nil
}

// Cancel отменяет форму: терминальное состояние, корзина больше не изменяется.
func (c *Composer) Cancel() error {
	c.mu.Lock()
	if c.state == StateSubmitted || c.state == StateCanceled {
		c.mu.Unlock()
		return domain.ErrComposerFinalized
	}
	if c.inFlight {
		c.mu.Unlock()
		return domain.ErrSubmitInFlight
	}
	c.state = StateCanceled
	c.mu.Unlock()

	c.logger.Info("форма заказа отменена")
	if c.metrics != nil {
		c.metrics.RecordComposerCanceled()
		c.metrics.RecordComposerFinalized()
	}
	if c.callbacks.OnCancel != nil {
		c.callbacks.OnCancel()
	}
	return nil
}

// mutate выполняет мутацию корзины с проверкой жизненного цикла и
// пересчитывает состояние после неё.
func (c *Composer) mutate(op string, fn func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateSubmitted || c.state == StateCanceled {
		return domain.ErrComposerFinalized
	}
	if c.inFlight {
		return domain.ErrSubmitInFlight
	}

	fn()

	// Производное состояние после каждой мутации; неудачная отправка
	// возвращается в режим наполнения.
	if len(c.cart.Lines) == 0 {
		c.state = StateEmpty
	} else {
		c.state = StateBuilding
	}

	if c.metrics != nil {
		c.metrics.RecordCartMutation(op)
	}
	return nil
}

func (c *Composer) findProduct(productID string) (domain.Product, bool) {
	for _, product := range c.products {
		if product.ID == productID {
			return product, true
		}
	}
	return domain.Product{}, false
}

func (c *Composer) recordStockRejection() {
	if c.metrics != nil {
		c.metrics.RecordStockCheckRejected()
	}
}

func (c *Composer) notifyOrderCreated(order domain.Order) {
	if c.callbacks.OnOrderCreated != nil {
		c.callbacks.OnOrderCreated(order)
	}
}

// provisionalOrder синтезирует запись заказа при частичном сбое backend.
func provisionalOrder(payload domain.OrderPayload, customer domain.Customer, returnableOut int32) domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		ID:                 uuid.NewString(),
		CustomerID:         payload.CustomerID,
		CustomerName:       customer.Name,
		OrderDate:          now,
		Status:             domain.OrderStatusPending,
		TotalMinor:         payload.TotalMinor,
		PaidMinor:          payload.PaidMinor,
		DebtRemainingMinor: payload.TotalMinor - payload.PaidMinor,
		ReturnableOut:      returnableOut,
		ReturnableIn:       0,
		CreatedAt:          now,
		UpdatedAt:          now,
		Provisional:        true,
	}
}
