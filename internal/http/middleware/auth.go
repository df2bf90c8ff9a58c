package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/lostfound-backend/internal/auth"
	"github.com/ignatzorin/lostfound-backend/internal/interface/http/response"
)

// Context ключи для gin.Context.
const (
	ContextUserIDKey = "userID"
	ContextRoleKey   = "role"
)

// AuthMiddleware проверяет JWT access токен из заголовка Authorization.
func AuthMiddleware(tokens *auth.TokenManager) gin.HandlerFunc {
	return authenticate(tokens, false)
}

// QueryTokenAuth дополнительно принимает токен из ?token=, браузерный
// WebSocket не умеет передавать заголовки.
func QueryTokenAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return authenticate(tokens, true)
}

func authenticate(tokens *auth.TokenManager, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" && allowQuery {
			raw = c.Query("token")
		}
		if raw == "" {
			response.Unauthorized(c, "требуется авторизация")
			c.Abort()
			return
		}

		userID, role, err := tokens.ParseAccess(raw)
		if err != nil || userID == uuid.Nil {
			response.Unauthorized(c, "токен невалиден")
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Set(ContextRoleKey, role)
		c.Next()
	}
}

func bearerToken(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// GetUserID достаёт идентификатор пользователя, положенный AuthMiddleware.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(ContextUserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}
