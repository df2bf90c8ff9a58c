package chatsync

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
	"github.com/ignatzorin/lostfound-backend/internal/logger"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
)

type Engine struct {
	store repository.MessageRepository
	bus   EventBus
	now   func() time.Time
}

func NewEngine(store repository.MessageRepository, bus EventBus) *Engine {
	return &Engine{store: store, bus: bus, now: time.Now}
}

// Attach подписывается на живую ленту и только потом загружает историю,
// чтобы не потерять сообщения между запросом и подпиской.
func (e *Engine) Attach(ctx context.Context, room entity.RoomKey) (*Session, error) {
	if _, err := entity.ParseRoomKey(room.String()); err != nil {
		return nil, err
	}

	sub, err := e.bus.Subscribe(room)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось подписаться на чат")
	}

	s := newSession(e, room, sub)
	s.start()

	history, err := e.store.ListByRoom(ctx, room)
	if err != nil {
		s.Detach()
		return nil, err
	}

	if !s.seed(history) {
		s.Detach()
		return nil, apperror.New(apperror.ErrCodeInternal, "живая лента закрылась во время загрузки")
	}

	logger.WithRoom(room.String()).WithField("messages", len(history)).Debug("chatsync: сессия подключена")
	return s, nil
}

// Send записывает текстовое сообщение. В локальный список оно попадёт
// через живую ленту.
func (e *Engine) Send(ctx context.Context, room entity.RoomKey, senderID uuid.UUID, content string) (*entity.Message, error) {
	msg, err := entity.NewTextMessage(room, senderID, content, e.timestamp())
	if err != nil {
		return nil, err
	}
	if err := e.store.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (e *Engine) SendImage(ctx context.Context, room entity.RoomKey, senderID uuid.UUID, url string, meta *entity.MessageMetadata) (*entity.Message, error) {
	msg, err := entity.NewImageMessage(room, senderID, url, meta, e.timestamp())
	if err != nil {
		return nil, err
	}
	if err := e.store.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// timestamp совпадает с тем, что вернёт Postgres (timestamptz хранит микросекунды).
func (e *Engine) timestamp() time.Time {
	return e.now().UTC().Truncate(time.Microsecond)
}

// Delete удаляет сообщение, если его автор - вызывающий пользователь.
func (e *Engine) Delete(ctx context.Context, room entity.RoomKey, callerID, messageID uuid.UUID) error {
	if callerID == uuid.Nil {
		return apperror.ErrUnauthorized
	}

	msg, err := e.store.FindByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.RoomKey != room {
		return apperror.ErrMessageNotFound
	}
	if !msg.IsOwnedBy(callerID) {
		return apperror.ErrForbidden
	}

	return e.store.Delete(ctx, messageID)
}

func (e *Engine) History(ctx context.Context, room entity.RoomKey) ([]*entity.Message, error) {
	return e.store.ListByRoom(ctx, room)
}
