package server

import (
	"github.com/vladislavdragonenkov/waterdesk/internal/domain"
	"github.com/vladislavdragonenkov/waterdesk/internal/session"
)

// Services — набор клиентов внешнего API, привязанных к одной сессии.
type Services struct {
	Directory domain.CustomerDirectory
	Catalog   domain.ProductCatalog
	Orders    domain.OrderSubmitter
}

// ServiceFactory строит набор клиентов под сессию запроса. Каждый запрос
// получает клиентов со своим bearer-токеном, глобального состояния нет.
type ServiceFactory func(sess session.Session) Services
