package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/lostfound-backend/internal/interface/http/response"
	"github.com/ignatzorin/lostfound-backend/internal/logger"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
)

// ErrorHandler отвечает клиенту за ошибки, добавленные через c.Error,
// если хендлер сам ничего не записал. Внутренние детали не раскрываются.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		entry := logger.Log.WithFields(logrus.Fields{
			"error":  err.Error(),
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
		if code := apperror.CodeOf(err); code == "" || code == apperror.ErrCodeInternal || code == apperror.ErrCodeDatabaseError {
			entry.Error("Request error")
		} else {
			entry.Warn("Request error")
		}

		response.Error(c, err)
	}
}

// Recovery превращает панику хендлера в ответ 500 в общем формате.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Log.WithFields(logrus.Fields{
			"panic":  recovered,
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		}).Error("panic в обработчике запроса")
		response.Error(c, apperror.New(apperror.ErrCodeInternal, "внутренняя ошибка сервера"))
		c.Abort()
	})
}
