package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/valueobject"
	"github.com/ignatzorin/lostfound-backend/internal/interface/http/dto"
)

func seedMatch(t *testing.T, env *testEnv) (loser, finder uuid.UUID, lost, found *entity.Report, n *entity.Notification) {
	t.Helper()
	loser, finder = uuid.New(), uuid.New()
	lost = newReport(loser, valueobject.ReportKindLost, "wallet", valueobject.CategoryWallet)
	found = newReport(finder, valueobject.ReportKindFound, "wallet", valueobject.CategoryWallet)
	env.reports.put(lost)
	env.reports.put(found)

	n = entity.NewMatchNotification(found, lost, time.Now().Add(-90*time.Minute))
	require.NoError(t, env.notifications.Create(context.Background(), n))
	return loser, finder, lost, found, n
}

func TestNotificationHandler_OpenMatchResolvesRoom(t *testing.T) {
	env := newTestEnv(t)
	loser, _, lost, found, n := seedMatch(t, env)

	w := env.do(t, loser, http.MethodPost, "/api/notifications/"+n.ID.String()+"/open", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp dto.RoomKeyResponse
	decode(t, w, &resp)
	assert.Equal(t, lost.ID.String()+"_"+found.ID.String(), resp.RoomID)

	w = env.do(t, loser, http.MethodGet, "/api/notifications/unread/count", nil, "")
	var count dto.UnreadCountResponse
	decode(t, w, &count)
	assert.Equal(t, 0, count.Count)

	// Повторное открытие ведёт в тот же чат.
	w = env.do(t, loser, http.MethodPost, "/api/notifications/"+n.ID.String()+"/open", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var again dto.RoomKeyResponse
	decode(t, w, &again)
	assert.Equal(t, resp.RoomID, again.RoomID)
	assert.Len(t, env.rooms.rooms, 1)
}

func TestNotificationHandler_OpenRejectsNonMatch(t *testing.T) {
	env := newTestEnv(t)
	owner := uuid.New()
	report := newReport(owner, valueobject.ReportKindLost, "keys", valueobject.CategoryKeys)
	info := entity.NewMatchSummaryNotification(report, 2, time.Now())
	require.NoError(t, env.notifications.Create(context.Background(), info))

	w := env.do(t, owner, http.MethodPost, "/api/notifications/"+info.ID.String()+"/open", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
}

func TestNotificationHandler_ForeignNotificationIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, _, _, _, n := seedMatch(t, env)
	stranger := uuid.New()

	w := env.do(t, stranger, http.MethodPut, "/api/notifications/"+n.ID.String()+"/read", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, stranger, http.MethodDelete, "/api/notifications/"+n.ID.String(), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotificationHandler_ListReadAndDelete(t *testing.T) {
	env := newTestEnv(t)
	loser, _, _, _, n := seedMatch(t, env)

	w := env.do(t, loser, http.MethodGet, "/api/notifications?unread=true", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var feed []dto.NotificationResponse
	decode(t, w, &feed)
	require.Len(t, feed, 1)
	assert.Equal(t, "1h ago", feed[0].RelativeTime)
	assert.False(t, feed[0].IsRead)

	w = env.do(t, loser, http.MethodPut, "/api/notifications/read-all", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, loser, http.MethodGet, "/api/notifications?unread=true", nil, "")
	feed = nil
	decode(t, w, &feed)
	assert.Empty(t, feed)

	w = env.do(t, loser, http.MethodDelete, "/api/notifications/"+n.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, loser, http.MethodGet, "/api/notifications", nil, "")
	feed = nil
	decode(t, w, &feed)
	assert.Empty(t, feed)
}
