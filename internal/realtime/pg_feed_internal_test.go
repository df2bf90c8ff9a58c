package realtime

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/lostfound-backend/internal/chatsync"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
)

type stubLoader map[uuid.UUID]*entity.Message

func (s stubLoader) FindByID(ctx context.Context, id uuid.UUID) (*entity.Message, error) {
	if m, ok := s[id]; ok {
		return m, nil
	}
	return nil, apperror.ErrMessageNotFound
}

type collectingPublisher struct {
	events []chatsync.Event
	drops  int
}

func (c *collectingPublisher) Publish(ev chatsync.Event) {
	c.events = append(c.events, ev)
}

func (c *collectingPublisher) DropAll() {
	c.drops++
}

func TestPGFeed_HandlePartialInsertLoadsMessage(t *testing.T) {
	room := entity.NewRoomKey(uuid.New(), uuid.New())
	msg := &entity.Message{ID: uuid.New(), RoomKey: room, Content: "long text"}
	missing := uuid.New()

	pub := &collectingPublisher{}
	feed := NewPGFeed(PGFeedConfig{Channel: "message_events"}, pub, stubLoader{msg.ID: msg})

	feed.handle(context.Background(), []byte(`{"op":"INSERT","partial":true,"record":{"id":"`+msg.ID.String()+`","room_id":"`+room.String()+`"}}`))
	feed.handle(context.Background(), []byte(`{"op":"INSERT","partial":true,"record":{"id":"`+missing.String()+`","room_id":"`+room.String()+`"}}`))
	feed.handle(context.Background(), []byte(`garbage`))
	feed.handle(context.Background(), []byte(`{"op":"DELETE","record":{"id":"`+msg.ID.String()+`","room_id":"`+room.String()+`"}}`))

	require.Len(t, pub.events, 2)
	assert.Equal(t, chatsync.OpInsert, pub.events[0].Op)
	assert.Equal(t, "long text", pub.events[0].Message.Content)
	assert.Equal(t, chatsync.OpDelete, pub.events[1].Op)
}

func TestNewPGFeed_Defaults(t *testing.T) {
	feed := NewPGFeed(PGFeedConfig{Channel: "c"}, &collectingPublisher{}, nil)
	assert.Positive(t, feed.cfg.MinReconnect)
	assert.GreaterOrEqual(t, feed.cfg.MaxReconnect, feed.cfg.MinReconnect)
}

func TestPGFeed_ReconnectDropsSubscriptions(t *testing.T) {
	pub := &collectingPublisher{}
	feed := NewPGFeed(PGFeedConfig{Channel: MessageEventsChannel}, pub, stubLoader{})

	feed.reconnected()

	assert.Equal(t, 1, pub.drops)
	assert.Empty(t, pub.events)
}
