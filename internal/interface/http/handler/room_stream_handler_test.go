package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/lostfound-backend/internal/chatsync"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/interface/http/dto"
)

func wsURL(srv *httptest.Server, room entity.RoomKey, token string) string {
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/rooms/" + room.String()
	if token != "" {
		u += "?token=" + token
	}
	return u
}

func readFrame(t *testing.T, conn *websocket.Conn) dto.StreamFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var frame dto.StreamFrame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestRoomStreamHandler_StreamsSnapshotAndLiveChanges(t *testing.T) {
	env := newTestEnv(t)
	loser, finder, room := seedRoom(t, env)

	existing, err := entity.NewTextMessage(room.Key(), finder, "нашёл у метро", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	require.NoError(t, env.messages.Create(context.Background(), existing))

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, room.Key(), signToken(t, loser)), nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	snapshot := readFrame(t, conn)
	assert.Equal(t, "snapshot", snapshot.Type)
	require.Len(t, snapshot.Messages, 1)
	assert.Equal(t, existing.ID, snapshot.Messages[0].ID)

	live, err := entity.NewTextMessage(room.Key(), finder, "когда удобно встретиться?", time.Now())
	require.NoError(t, err)
	env.broker.Publish(chatsync.InsertEvent(live))

	inserted := readFrame(t, conn)
	assert.Equal(t, "insert", inserted.Type)
	require.NotNil(t, inserted.Message)
	assert.Equal(t, live.ID, inserted.Message.ID)

	env.broker.Publish(chatsync.DeleteEvent(room.Key(), existing.ID))

	deleted := readFrame(t, conn)
	assert.Equal(t, "delete", deleted.Type)
	require.NotNil(t, deleted.MessageID)
	assert.Equal(t, existing.ID, *deleted.MessageID)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "send", "content": "сегодня в семь"}))
	require.Eventually(t, func() bool {
		msgs, _ := env.messages.ListByRoom(context.Background(), room.Key())
		for _, m := range msgs {
			if m.Content == "сегодня в семь" && m.SenderID == loser {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool {
		return env.broker.Subscribers(room.Key()) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRoomStreamHandler_RejectsOutsidersBeforeUpgrade(t *testing.T) {
	env := newTestEnv(t)
	_, _, room := seedRoom(t, env)

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, room.Key(), signToken(t, uuid.New())), nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	_, resp, err = websocket.DefaultDialer.Dial(wsURL(srv, room.Key(), ""), nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}
