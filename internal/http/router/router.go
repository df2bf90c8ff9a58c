package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/lostfound-backend/internal/auth"
	"github.com/ignatzorin/lostfound-backend/internal/config"
	"github.com/ignatzorin/lostfound-backend/internal/http/middleware"
	"github.com/ignatzorin/lostfound-backend/internal/interface/http/handler"
)

// Handlers собирает все HTTP-обработчики приложения.
type Handlers struct {
	Health       *handler.HealthHandler
	Report       *handler.ReportHandler
	Notification *handler.NotificationHandler
	Room         *handler.RoomHandler
	RoomStream   *handler.RoomStreamHandler
}

func SetupRouter(cfg *config.Config, h Handlers, tokens *auth.TokenManager) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)
	if cfg.StorageDriver == config.StorageLocal {
		r.StaticFS("/media", http.Dir(cfg.MediaStoragePath))
	}

	api := r.Group("/api")

	// WebSocket: браузер не передаёт заголовки, токен приходит в ?token=.
	api.GET("/ws/rooms/:roomKey", middleware.QueryTokenAuth(tokens), h.RoomStream.Handle)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(tokens))

	reports := protected.Group("/reports")
	{
		reports.POST("", middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod), h.Report.Submit)
		reports.GET("/my", h.Report.ListMy)
		reports.GET("/:id", middleware.UUIDValidator("id"), h.Report.Get)
		reports.PATCH("/:id/status", middleware.UUIDValidator("id"), h.Report.UpdateStatus)
	}

	notifications := protected.Group("/notifications")
	{
		notifications.GET("", h.Notification.List)
		notifications.GET("/unread/count", h.Notification.UnreadCount)
		notifications.PUT("/read-all", h.Notification.MarkAllAsRead)
		notifications.PUT("/:id/read", middleware.UUIDValidator("id"), h.Notification.MarkAsRead)
		notifications.POST("/:id/open", middleware.UUIDValidator("id"), h.Notification.Open)
		notifications.DELETE("/:id", middleware.UUIDValidator("id"), h.Notification.Delete)
	}

	rooms := protected.Group("/rooms")
	{
		rooms.POST("/resolve", h.Room.Resolve)
		rooms.GET("/my", h.Room.ListMy)
		rooms.GET("/:roomKey/messages", h.Room.ListMessages)
		rooms.POST("/:roomKey/messages", middleware.RateLimitMiddleware(cfg.RateLimitLimit*6, cfg.RateLimitPeriod), h.Room.SendMessage)
		rooms.POST("/:roomKey/images", middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod), h.Room.UploadImage)
		rooms.DELETE("/:roomKey/messages/:messageId", middleware.UUIDValidator("messageId"), h.Room.DeleteMessage)
	}

	return r
}
