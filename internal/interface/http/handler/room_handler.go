package handler

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/lostfound-backend/internal/chatsync"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
	"github.com/ignatzorin/lostfound-backend/internal/interface/http/dto"
	"github.com/ignatzorin/lostfound-backend/internal/interface/http/response"
	"github.com/ignatzorin/lostfound-backend/internal/logger"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/chatroom"
)

type RoomHandler struct {
	resolveUC     *chatroom.ResolveRoomUseCase
	listMyUC      *chatroom.ListMyRoomsUseCase
	authorizeUC   *chatroom.AuthorizeRoomUseCase
	engine        *chatsync.Engine
	storage       repository.ObjectStorage
	maxImageBytes int64
}

func NewRoomHandler(
	resolveUC *chatroom.ResolveRoomUseCase,
	listMyUC *chatroom.ListMyRoomsUseCase,
	authorizeUC *chatroom.AuthorizeRoomUseCase,
	engine *chatsync.Engine,
	storage repository.ObjectStorage,
	maxImageMB int64,
) *RoomHandler {
	if maxImageMB <= 0 {
		maxImageMB = 5
	}
	return &RoomHandler{
		resolveUC:     resolveUC,
		listMyUC:      listMyUC,
		authorizeUC:   authorizeUC,
		engine:        engine,
		storage:       storage,
		maxImageBytes: maxImageMB * megabyte,
	}
}

// Resolve обрабатывает POST /rooms/resolve.
func (h *RoomHandler) Resolve(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	var req dto.ResolveRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "lost_report_id и found_report_id обязательны")
		return
	}

	key, err := h.resolveUC.Execute(c.Request.Context(), req.LostReportID, req.FoundReportID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.RoomKeyResponse{RoomID: key.String()})
}

func (h *RoomHandler) ListMy(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	rooms, err := h.listMyUC.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToRoomListResponse(rooms))
}

// room проверяет ключ из пути и участие пользователя в чате.
func (h *RoomHandler) room(c *gin.Context) (*entity.ChatRoom, uuid.UUID, bool) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return nil, uuid.Nil, false
	}

	room, err := h.authorizeUC.Execute(c.Request.Context(), c.Param("roomKey"), userID)
	if err != nil {
		response.Error(c, err)
		return nil, uuid.Nil, false
	}
	return room, userID, true
}

func (h *RoomHandler) ListMessages(c *gin.Context) {
	room, _, ok := h.room(c)
	if !ok {
		return
	}

	messages, err := h.engine.History(c.Request.Context(), room.Key())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToMessageListResponse(messages))
}

func (h *RoomHandler) SendMessage(c *gin.Context) {
	room, userID, ok := h.room(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "текст сообщения обязателен")
		return
	}

	msg, err := h.engine.Send(c.Request.Context(), room.Key(), userID, req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToMessageResponse(msg))
}

// UploadImage обрабатывает POST /rooms/:roomKey/images (multipart, поле image).
func (h *RoomHandler) UploadImage(c *gin.Context) {
	room, userID, ok := h.room(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("image")
	if err != nil {
		response.BadRequest(c, "поле image обязательно")
		return
	}

	img, err := readImage(fh, h.maxImageBytes)
	if err != nil {
		response.Error(c, err)
		return
	}

	ctx := c.Request.Context()
	key := fmt.Sprintf("chat/%s/%s.%s", room.Key(), uuid.New(), img.info.Extension)
	url, err := h.storage.Upload(ctx, key, img.data, img.info.MIME)
	if err != nil {
		response.Error(c, apperror.Upload(err, "не удалось загрузить изображение"))
		return
	}

	meta := &entity.MessageMetadata{
		Width:  img.info.Width,
		Height: img.info.Height,
		Size:   int64(len(img.data)),
	}
	msg, err := h.engine.SendImage(ctx, room.Key(), userID, url, meta)
	if err != nil {
		if delErr := h.storage.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			logger.WithRoom(room.Key().String()).WithError(delErr).Warn("не удалось удалить изображение после ошибки")
		}
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToMessageResponse(msg))
}

func (h *RoomHandler) DeleteMessage(c *gin.Context) {
	room, userID, ok := h.room(c)
	if !ok {
		return
	}

	messageID, ok := parseUUIDParam(c, "messageId")
	if !ok {
		response.BadRequest(c, "некорректный ID сообщения")
		return
	}

	if err := h.engine.Delete(c.Request.Context(), room.Key(), userID, messageID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "сообщение удалено"})
}
