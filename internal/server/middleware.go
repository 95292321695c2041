package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/waterdesk/internal/session"
)

const sessionKey = "waterdesk-session"

// SessionMiddleware извлекает bearer-токен и роль пользователя в явный
// session.Session. Токен не проверяется локально: его валидирует внешний API,
// сюда он только пробрасывается.
func SessionMiddleware(allowedRoles ...session.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Bearer token required"})
			return
		}

		role := session.Role(c.GetHeader("X-User-Role"))
		if !role.Valid() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unknown user role"})
			return
		}

		if len(allowedRoles) > 0 {
			allowed := false
			for _, r := range allowedRoles {
				if r == role {
					allowed = true
					break
				}
			}
			if !allowed {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
				return
			}
		}

		c.Set(sessionKey, session.Session{
			Token:  token,
			UserID: c.GetHeader("X-User-ID"),
			Name:   c.GetHeader("X-User-Name"),
			Role:   role,
		})
		c.Next()
	}
}

// sessionFromContext достаёт сессию, положенную SessionMiddleware.
func sessionFromContext(c *gin.Context) session.Session {
	if v, ok := c.Get(sessionKey); ok {
		if sess, ok := v.(session.Session); ok {
			return sess
		}
	}
	return session.Session{}
}

// RequireRole ограничивает группу маршрутов перечисленными ролями.
func RequireRole(roles ...session.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessionFromContext(c)
		for _, role := range roles {
			if sess.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	}
}
