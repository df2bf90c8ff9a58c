package chatsync

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
)

type recordingStore struct {
	created []*entity.Message
}

func (s *recordingStore) Create(ctx context.Context, msg *entity.Message) error {
	s.created = append(s.created, msg)
	return nil
}

func (s *recordingStore) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (s *recordingStore) FindByID(ctx context.Context, id uuid.UUID) (*entity.Message, error) {
	return nil, nil
}

func (s *recordingStore) ListByRoom(ctx context.Context, room entity.RoomKey) ([]*entity.Message, error) {
	return nil, nil
}

func TestEngine_SendTruncatesToMicroseconds(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*60*60)
	at := time.Date(2024, 3, 1, 13, 0, 0, 123456789, moscow)

	store := &recordingStore{}
	e := NewEngine(store, nil)
	e.now = func() time.Time { return at }

	room := entity.NewRoomKey(uuid.New(), uuid.New())
	want := time.Date(2024, 3, 1, 10, 0, 0, 123456000, time.UTC)

	text, err := e.Send(context.Background(), room, uuid.New(), "hello")
	require.NoError(t, err)
	assert.Equal(t, want, text.CreatedAt)

	img, err := e.SendImage(context.Background(), room, uuid.New(), "https://cdn.test/a.png", nil)
	require.NoError(t, err)
	assert.Equal(t, want, img.CreatedAt)

	require.Len(t, store.created, 2)
	assert.Equal(t, want, store.created[0].CreatedAt)
}
