package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/waterdesk/internal/session"
)

// Router собирает gin-маршруты приложения: проксирующие списки поверх
// внешнего API и операции композера заказа.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-Role", "X-User-ID", "X-User-Name"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	api := r.Group("/api/v1")
	api.Use(SessionMiddleware(session.RoleAdmin, session.RoleSales))
	{
		api.GET("/customers", s.listCustomers)
		api.GET("/products", s.listProducts)
		api.GET("/orders", s.listOrders)

		api.POST("/composer", s.openComposer)
		api.GET("/composer/:id", s.getComposer)
		api.GET("/composer/:id/customers", s.composerCustomers)
		api.GET("/composer/:id/products", s.composerProducts)
		api.PUT("/composer/:id/customer", s.selectCustomer)
		api.DELETE("/composer/:id/customer", s.clearCustomer)
		api.POST("/composer/:id/lines", s.addLine)
		api.PUT("/composer/:id/lines/:productID", s.updateQuantity)
		api.DELETE("/composer/:id/lines/:productID", s.removeLine)
		api.PUT("/composer/:id/paid", s.setPaid)
		api.POST("/composer/:id/submit", s.submitComposer)
		api.DELETE("/composer/:id", s.closeComposer)
	}

	return r
}
