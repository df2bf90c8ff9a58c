package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/lostfound-backend/internal/auth"
	"github.com/ignatzorin/lostfound-backend/internal/chatsync"
	"github.com/ignatzorin/lostfound-backend/internal/http/middleware"
	"github.com/ignatzorin/lostfound-backend/internal/interface/http/handler"
	"github.com/ignatzorin/lostfound-backend/internal/realtime"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/chatroom"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/matching"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/notification"
)

const testSecret = "handler-test-secret-handler-test-secret"

type testEnv struct {
	router        *gin.Engine
	reports       *memReports
	notifications *memNotifications
	rooms         *memRooms
	messages      *memMessages
	storage       *memStorage
	broker        *realtime.Broker
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		reports:       newMemReports(),
		notifications: newMemNotifications(),
		rooms:         &memRooms{},
		messages:      newMemMessages(),
		storage:       newMemStorage(),
		broker:        realtime.NewBroker(16),
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go env.broker.Run(ctx)

	tokens := auth.NewTokenManager(testSecret)
	writer := &memSubmissions{reports: env.reports, notifications: env.notifications}
	engine := chatsync.NewEngine(env.messages, env.broker)

	resolveUC := chatroom.NewResolveRoomUseCase(env.reports, env.rooms)
	authorizeUC := chatroom.NewAuthorizeRoomUseCase(env.rooms)

	reportHandler := handler.NewReportHandler(
		matching.NewSubmitReportUseCase(env.reports, writer, env.storage, matching.NewScorer(1.0)),
		matching.NewListMyReportsUseCase(env.reports),
		matching.NewGetReportUseCase(env.reports),
		matching.NewUpdateReportStatusUseCase(env.reports, env.notifications),
		1,
	)
	notificationHandler := handler.NewNotificationHandler(notification.NewFeedUseCase(env.notifications, resolveUC))
	roomHandler := handler.NewRoomHandler(resolveUC, chatroom.NewListMyRoomsUseCase(env.rooms), authorizeUC, engine, env.storage, 1)
	streamHandler := handler.NewRoomStreamHandler(authorizeUC, engine, nil)

	r := gin.New()
	api := r.Group("/api")
	api.GET("/ws/rooms/:roomKey", middleware.QueryTokenAuth(tokens), streamHandler.Handle)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(tokens))

	protected.POST("/reports", reportHandler.Submit)
	protected.GET("/reports/my", reportHandler.ListMy)
	protected.GET("/reports/:id", reportHandler.Get)
	protected.PATCH("/reports/:id/status", reportHandler.UpdateStatus)

	protected.GET("/notifications", notificationHandler.List)
	protected.GET("/notifications/unread/count", notificationHandler.UnreadCount)
	protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
	protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
	protected.POST("/notifications/:id/open", notificationHandler.Open)
	protected.DELETE("/notifications/:id", notificationHandler.Delete)

	protected.POST("/rooms/resolve", roomHandler.Resolve)
	protected.GET("/rooms/my", roomHandler.ListMy)
	protected.GET("/rooms/:roomKey/messages", roomHandler.ListMessages)
	protected.POST("/rooms/:roomKey/messages", roomHandler.SendMessage)
	protected.POST("/rooms/:roomKey/images", roomHandler.UploadImage)
	protected.DELETE("/rooms/:roomKey/messages/:messageId", roomHandler.DeleteMessage)

	env.router = r
	return env
}

func signToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (e *testEnv) do(t *testing.T, userID uuid.UUID, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if userID != uuid.Nil {
		req.Header.Set("Authorization", "Bearer "+signToken(t, userID))
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doJSON(t *testing.T, userID uuid.UUID, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	return e.do(t, userID, method, path, body, "application/json")
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := decode(t, w, nil)
	require.NotNil(t, env.Error, w.Body.String())
	return env.Error.Code
}

type formFile struct {
	field    string
	filename string
	data     []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...formFile) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.filename+`"`)
		h.Set("Content-Type", "application/octet-stream")
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

