package realtime_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/lostfound-backend/internal/chatsync"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/valueobject"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-backend/internal/realtime"
)

type memoryMessages struct {
	mu   sync.Mutex
	msgs []*entity.Message
}

func (m *memoryMessages) Create(ctx context.Context, msg *entity.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, msg)
	return nil
}

func (m *memoryMessages) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (m *memoryMessages) FindByID(ctx context.Context, id uuid.UUID) (*entity.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.msgs {
		if msg.ID == id {
			return msg, nil
		}
	}
	return nil, apperror.ErrMessageNotFound
}

func (m *memoryMessages) ListByRoom(ctx context.Context, room entity.RoomKey) ([]*entity.Message, error) {
	return nil, nil
}

func TestDecodeNotification_Insert(t *testing.T) {
	id := uuid.New()
	sender := uuid.New()
	room := entity.NewRoomKey(uuid.New(), uuid.New())

	payload := `{"op":"INSERT","record":{"id":"` + id.String() + `","room_id":"` + room.String() +
		`","sender_id":"` + sender.String() + `","content":"https://cdn.test/x.png","type":"image",` +
		`"metadata":{"width":800,"height":600},"created_at":"2024-03-01T10:00:00.123456+03:00"}}`

	ev, partial, err := realtime.DecodeNotification([]byte(payload))
	require.NoError(t, err)

	assert.False(t, partial)
	assert.Equal(t, chatsync.OpInsert, ev.Op)
	assert.Equal(t, room, ev.Room)
	require.NotNil(t, ev.Message)
	assert.Equal(t, id, ev.Message.ID)
	assert.Equal(t, sender, ev.Message.SenderID)
	assert.Equal(t, valueobject.MessageTypeImage, ev.Message.Type)
	assert.Equal(t, 800, ev.Message.Metadata.Width)
	assert.Equal(t, 7, ev.Message.CreatedAt.Hour())
}

func TestDecodeNotification_Delete(t *testing.T) {
	id := uuid.New()
	room := entity.NewRoomKey(uuid.New(), uuid.New())

	payload := `{"op":"DELETE","record":{"id":"` + id.String() + `","room_id":"` + room.String() + `"}}`
	ev, _, err := realtime.DecodeNotification([]byte(payload))
	require.NoError(t, err)

	assert.Equal(t, chatsync.OpDelete, ev.Op)
	assert.Equal(t, id, ev.MessageID)
	assert.Nil(t, ev.Message)
}

func TestDecodeNotification_Invalid(t *testing.T) {
	for _, payload := range []string{
		`not json`,
		`{"op":"UPDATE","record":{"id":"` + uuid.NewString() + `","room_id":"a_b"}}`,
		`{"op":"INSERT","record":{"room_id":"a_b"}}`,
	} {
		_, _, err := realtime.DecodeNotification([]byte(payload))
		assert.Error(t, err, payload)
	}
}

func TestDecodeNotification_PartialInsert(t *testing.T) {
	id := uuid.New()
	room := entity.NewRoomKey(uuid.New(), uuid.New())

	payload := `{"op":"INSERT","partial":true,"record":{"id":"` + id.String() + `","room_id":"` + room.String() + `"}}`
	ev, partial, err := realtime.DecodeNotification([]byte(payload))
	require.NoError(t, err)

	assert.True(t, partial)
	assert.Equal(t, id, ev.MessageID)
	assert.Nil(t, ev.Message)
}
