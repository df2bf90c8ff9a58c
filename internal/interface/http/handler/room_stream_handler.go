package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/lostfound-backend/internal/chatsync"
	"github.com/ignatzorin/lostfound-backend/internal/goroutine"
	"github.com/ignatzorin/lostfound-backend/internal/interface/http/dto"
	"github.com/ignatzorin/lostfound-backend/internal/interface/http/response"
	"github.com/ignatzorin/lostfound-backend/internal/logger"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/chatroom"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxInboundSize = 16 * 1024
)

// RoomStreamHandler отдаёт чат по WebSocket: снимок истории, затем
// вставки и удаления по мере их появления.
type RoomStreamHandler struct {
	authorizeUC *chatroom.AuthorizeRoomUseCase
	engine      *chatsync.Engine
	upgrader    websocket.Upgrader
}

func NewRoomStreamHandler(authorizeUC *chatroom.AuthorizeRoomUseCase, engine *chatsync.Engine, allowedOrigins []string) *RoomStreamHandler {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}
	return &RoomStreamHandler{
		authorizeUC: authorizeUC,
		engine:      engine,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					// Мобильный клиент Origin не присылает.
					return true
				}
				_, ok := origins[origin]
				return ok
			},
		},
	}
}

// Handle обслуживает GET /api/ws/rooms/:roomKey?token=...
func (h *RoomStreamHandler) Handle(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	room, err := h.authorizeUC.Execute(c.Request.Context(), c.Param("roomKey"), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже ответил клиенту.
		logger.WithUser(userID).WithError(err).Debug("ws: upgrade не удался")
		return
	}

	// Контекст запроса не отменяется при закрытии hijacked-соединения,
	// сессией управляют сами pump'ы.
	ctx := context.WithoutCancel(c.Request.Context())
	session, err := h.engine.Attach(ctx, room.Key())
	if err != nil {
		logger.WithRoom(room.Key().String()).WithError(err).Warn("ws: не удалось подключить сессию чата")
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "chat unavailable"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}

	client := &streamClient{
		conn:    conn,
		session: session,
		userID:  userID,
		log: logger.Log.WithFields(logrus.Fields{
			"room":    room.Key().String(),
			"user_id": userID.String(),
		}),
	}
	client.run(ctx)
}

// inboundFrame - команда клиента, пришедшая по сокету.
type inboundFrame struct {
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	MessageID uuid.UUID `json:"message_id"`
}

type streamClient struct {
	conn    *websocket.Conn
	session *chatsync.Session
	userID  uuid.UUID
	log     *logrus.Entry
}

func (c *streamClient) run(ctx context.Context) {
	goroutine.SafeGo("ws writePump", c.writePump)
	c.readPump(ctx)
}

func (c *streamClient) close() {
	c.session.Detach()
	_ = c.conn.Close()
}

func (c *streamClient) readPump(ctx context.Context) {
	defer c.close()

	c.conn.SetReadLimit(maxInboundSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.WithError(err).Debug("ws: соединение прервано")
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			c.log.WithError(err).Debug("ws: некорректный кадр от клиента")
			continue
		}
		c.handleInbound(ctx, frame)
	}
}

// handleInbound выполняет команды клиента. Результат придёт обычным
// кадром insert/delete из живой ленты.
func (c *streamClient) handleInbound(ctx context.Context, frame inboundFrame) {
	var err error
	switch frame.Type {
	case "send":
		_, err = c.session.Send(ctx, c.userID, frame.Content)
	case "delete":
		err = c.session.Delete(ctx, c.userID, frame.MessageID)
	default:
		return
	}
	if err != nil {
		c.log.WithError(err).WithField("type", frame.Type).Info("ws: команда клиента отклонена")
	}
}

func (c *streamClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case update, ok := <-c.session.Updates():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteJSON(dto.ToStreamFrame(update)); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
