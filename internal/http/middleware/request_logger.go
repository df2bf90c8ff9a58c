package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/lostfound-backend/internal/logger"
)

// RequestLogger пишет одну строку на запрос в общий logrus-логгер.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"ip":       c.ClientIP(),
		}
		if userID, ok := GetUserID(c); ok {
			fields["user_id"] = userID.String()
		}

		entry := logger.Log.WithFields(fields)
		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("http")
		case status >= 400:
			entry.Warn("http")
		default:
			entry.Debug("http")
		}
	}
}
