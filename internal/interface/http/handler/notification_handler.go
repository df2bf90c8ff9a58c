package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/lostfound-backend/internal/interface/http/dto"
	"github.com/ignatzorin/lostfound-backend/internal/interface/http/response"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/notification"
)

type NotificationHandler struct {
	feedUC *notification.FeedUseCase
	now    func() time.Time
}

func NewNotificationHandler(feedUC *notification.FeedUseCase) *NotificationHandler {
	return &NotificationHandler{feedUC: feedUC, now: time.Now}
}

// List обрабатывает GET /notifications[?unread=true].
func (h *NotificationHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	items, err := h.feedUC.ListForUser(c.Request.Context(), userID, c.Query("unread") == "true")
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToNotificationListResponse(items, h.now()))
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	count, err := h.feedUC.CountUnread(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.UnreadCountResponse{Count: count})
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "некорректный ID уведомления")
		return
	}

	if err := h.feedUC.MarkAsRead(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "уведомление прочитано"})
}

func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	if err := h.feedUC.MarkAllAsRead(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "все уведомления прочитаны"})
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "некорректный ID уведомления")
		return
	}

	if err := h.feedUC.Delete(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "уведомление удалено"})
}

// Open обрабатывает POST /notifications/:id/open: находит или создаёт чат
// по совпадению и отмечает уведомление прочитанным.
func (h *NotificationHandler) Open(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "некорректный ID уведомления")
		return
	}

	key, err := h.feedUC.OpenMatch(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.RoomKeyResponse{RoomID: key.String()})
}
