package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/waterdesk/internal/apiclient"
	"github.com/vladislavdragonenkov/waterdesk/internal/server"
	"github.com/vladislavdragonenkov/waterdesk/internal/service/catalog"
	"github.com/vladislavdragonenkov/waterdesk/internal/service/directory"
	"github.com/vladislavdragonenkov/waterdesk/internal/service/orders"
	"github.com/vladislavdragonenkov/waterdesk/internal/session"
)

// NewServiceFactory строит фабрику клиентов внешнего API: для каждой сессии
// создаётся свой apiclient с её bearer-токеном.
func NewServiceFactory(cfg apiclient.Config, logger *log.Entry) server.ServiceFactory {
	if logger == nil {
		logger = log.New().WithField("component", "services")
	}
	return func(sess session.Session) server.Services {
		api := apiclient.New(cfg, sess, logger.WithField("layer", "apiclient"))
		return server.Services{
			Directory: directory.NewClient(api, logger.WithField("service", "directory")),
			Catalog:   catalog.NewClient(api, logger.WithField("service", "catalog")),
			Orders:    orders.NewClient(api, logger.WithField("service", "orders")),
		}
	}
}
