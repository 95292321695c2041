package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/waterdesk/internal/composer"
	"github.com/vladislavdragonenkov/waterdesk/internal/domain"
)

// Server — HTTP-обвязка над composer и клиентами внешнего API.
// Клиенты создаются фабрикой под сессию каждого запроса.
type Server struct {
	factory  ServiceFactory
	registry *composerRegistry
	logger   *log.Entry
}

// New создаёт Server. Для logger == nil используется logger по умолчанию.
func New(factory ServiceFactory, logger *log.Entry) *Server {
	if logger == nil {
		logger = log.New().WithField("component", "server")
	}
	return &Server{
		factory:  factory,
		registry: newComposerRegistry(),
		logger:   logger,
	}
}

// OpenComposers возвращает число открытых композеров.
func (s *Server) OpenComposers() int {
	return s.registry.Len()
}

// listCustomers отдаёт справочник клиентов, опционально фильтруя по ?q=.
func (s *Server) listCustomers(c *gin.Context) {
	services := s.factory(sessionFromContext(c))

	customers, err := services.Directory.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": toCustomerResponses(customers)})
}

// listProducts отдаёт каталог товаров, опционально фильтруя по ?q=.
func (s *Server) listProducts(c *gin.Context) {
	services := s.factory(sessionFromContext(c))

	products, err := services.Catalog.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": toProductResponses(products)})
}

// listOrders отдаёт историю заказов клиента (?customerId=, опционально ?limit=).
func (s *Server) listOrders(c *gin.Context) {
	customerID := c.Query("customerId")
	if customerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "customerId query parameter required"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	services := s.factory(sessionFromContext(c))
	history, err := services.Orders.ListByCustomer(c.Request.Context(), customerID, limit)
	if err != nil {
		s.writeError(c, err)
		return
	}

	result := make([]orderResponse, 0, len(history))
	for _, order := range history {
		result = append(result, toOrderResponse(order))
	}
	c.JSON(http.StatusOK, gin.H{"orders": result})
}

// openComposer открывает новую форму заказа: загружает снимки справочника
// и каталога и регистрирует композер в реестре.
func (s *Server) openComposer(c *gin.Context) {
	sess := sessionFromContext(c)
	services := s.factory(sess)
	logger := s.logger.WithField("user_id", sess.UserID)

	callbacks := composer.Callbacks{
		OnOrderCreated: func(order domain.Order) {
			logger.WithFields(log.Fields{
				"order_id":    order.ID,
				"provisional": order.Provisional,
			}).Info("заказ создан, форма финализирована")
		},
		OnCancel: func() {
			logger.Info("форма заказа закрыта без отправки")
		},
	}

	comp, err := composer.New(
		c.Request.Context(),
		services.Directory,
		services.Catalog,
		services.Orders,
		callbacks,
		logger,
	)
	if err != nil {
		s.writeError(c, err)
		return
	}

	id := s.registry.Put(comp)
	s.logger.WithFields(log.Fields{
		"composer_id": id,
		"user_id":     sess.UserID,
	}).Info("открыт composer заказа")

	c.JSON(http.StatusCreated, gin.H{
		"id":      id,
		"summary": toSummaryResponse(comp.Summary()),
	})
}

// getComposer отдаёт сводку корзины с производными суммами.
func (s *Server) getComposer(c *gin.Context) {
	comp, err := s.registry.Get(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSummaryResponse(comp.Summary()))
}

// composerCustomers фильтрует снимок справочника композера по ?q=.
func (s *Server) composerCustomers(c *gin.Context) {
	comp, err := s.registry.Get(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": toCustomerResponses(comp.FilterCustomers(c.Query("q")))})
}

// composerProducts фильтрует снимок каталога композера по ?q=.
func (s *Server) composerProducts(c *gin.Context) {
	comp, err := s.registry.Get(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": toProductResponses(comp.FilterProducts(c.Query("q")))})
}

type selectCustomerRequest struct {
	CustomerID string `json:"customerId" binding:"required"`
}

// selectCustomer выбирает клиента заказа из снимка справочника.
func (s *Server) selectCustomer(c *gin.Context) {
	comp, err := s.registry.Get(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	var req selectCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "customerId is required"})
		return
	}

	customer, ok := findCustomer(comp.Customers(), req.CustomerID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "customer not found in directory snapshot"})
		return
	}

	if err := comp.SelectCustomer(customer); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSummaryResponse(comp.Summary()))
}

// clearCustomer сбрасывает выбранного клиента.
func (s *Server) clearCustomer(c *gin.Context) {
	comp, err := s.registry.Get(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := comp.ClearCustomer(); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSummaryResponse(comp.Summary()))
}

type addLineRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

// addLine добавляет товар в корзину; дубликат увеличивает количество позиции.
func (s *Server) addLine(c *gin.Context) {
	comp, err := s.registry.Get(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	var req addLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productId is required"})
		return
	}

	if err := comp.AddProductByID(req.ProductID); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSummaryResponse(comp.Summary()))
}

type updateQuantityRequest struct {
	Quantity int32 `json:"quantity"`
}

// updateQuantity задаёт количество позиции; quantity < 1 молча игнорируется.
func (s *Server) updateQuantity(c *gin.Context) {
	comp, err := s.registry.Get(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := comp.UpdateQuantity(c.Param("productID"), req.Quantity); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSummaryResponse(comp.Summary()))
}

// removeLine удаляет позицию корзины; отсутствующая позиция — no-op.
func (s *Server) removeLine(c *gin.Context) {
	comp, err := s.registry.Get(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := comp.RemoveLine(c.Param("productID")); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSummaryResponse(comp.Summary()))
}

type setPaidRequest struct {
	PaidAmount int64 `json:"paidAmount"`
}

// setPaid фиксирует внесённую сумму; отрицательные значения прижимаются к нулю.
func (s *Server) setPaid(c *gin.Context) {
	comp, err := s.registry.Get(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	var req setPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := comp.SetPaidAmount(req.PaidAmount); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSummaryResponse(comp.Summary()))
}

// submitComposer отправляет заказ внешнему API. После успеха композер
// остаётся в реестре в финальном состоянии, пока клиент не закроет форму.
func (s *Server) submitComposer(c *gin.Context) {
	id := c.Param("id")
	comp, err := s.registry.Get(id)
	if err != nil {
		s.writeError(c, err)
		return
	}

	order, err := comp.Submit(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order":   toOrderResponse(order),
		"summary": toSummaryResponse(comp.Summary()),
	})
}

// closeComposer отменяет форму и убирает композер из реестра. Уже
// финализированный композер просто удаляется.
func (s *Server) closeComposer(c *gin.Context) {
	id := c.Param("id")
	comp, err := s.registry.Get(id)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if err := comp.Cancel(); err != nil && !errors.Is(err, domain.ErrComposerFinalized) {
		s.writeError(c, err)
		return
	}

	s.registry.Delete(id)
	c.Status(http.StatusNoContent)
}

// writeError переводит доменные ошибки в HTTP-статусы. Валидация — 422,
// конфликты снимка и повторная отправка — 409, финализированная форма — 410,
// недоступный внешний API — 502.
func (s *Server) writeError(c *gin.Context, err error) {
	var stockErr *domain.InsufficientStockError
	var notFoundErr *domain.ProductNotFoundError

	switch {
	case errors.Is(err, ErrComposerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrCustomerRequired), errors.Is(err, domain.ErrCartEmpty):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":     stockErr.Error(),
			"product":   stockErr.ProductName,
			"available": stockErr.Available,
			"requested": stockErr.Requested,
		})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusConflict, gin.H{"error": notFoundErr.Error()})
	case errors.Is(err, domain.ErrSubmitInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrComposerFinalized):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
	case domain.IsNetworkError(err):
		s.logger.WithError(err).Warn("внешний API недоступен")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		if apiErr, ok := domain.AsAPIError(err); ok && apiErr.StatusCode >= http.StatusBadRequest {
			c.JSON(apiErr.StatusCode, gin.H{"error": apiErr.Message})
			return
		}
		s.logger.WithError(err).Error("необработанная ошибка запроса")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func findCustomer(customers []domain.Customer, id string) (domain.Customer, bool) {
	for _, customer := range customers {
		if customer.ID == id {
			return customer, true
		}
	}
	return domain.Customer{}, false
}
