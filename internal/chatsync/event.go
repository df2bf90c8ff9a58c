package chatsync

import (
	"github.com/google/uuid"

	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
)

type Op string

const (
	OpInsert Op = "INSERT"
	OpDelete Op = "DELETE"
)

// Event - изменение таблицы сообщений из живой ленты. Доставка
// at-least-once, порядок между INSERT и DELETE не гарантирован.
type Event struct {
	Op        Op
	Room      entity.RoomKey
	Message   *entity.Message
	MessageID uuid.UUID
}

func InsertEvent(msg *entity.Message) Event {
	return Event{Op: OpInsert, Room: msg.RoomKey, Message: msg, MessageID: msg.ID}
}

func DeleteEvent(room entity.RoomKey, messageID uuid.UUID) Event {
	return Event{Op: OpDelete, Room: room, MessageID: messageID}
}

// EventBus выдаёт подписку на события одного чата.
type EventBus interface {
	Subscribe(room entity.RoomKey) (Subscription, error)
}

// Subscription закрывает канал Events, когда шина отказывается от подписчика.
// Close идемпотентен.
type Subscription interface {
	Events() <-chan Event
	Close()
}

type UpdateKind string

const (
	UpdateSnapshot UpdateKind = "snapshot"
	UpdateInsert   UpdateKind = "insert"
	UpdateDelete   UpdateKind = "delete"
)

// Update - применённое к локальному списку изменение, для транспорта.
type Update struct {
	Kind      UpdateKind
	Messages  []*entity.Message
	Message   *entity.Message
	MessageID uuid.UUID
}

type State int32

const (
	StateIdle State = iota
	StateLoading
	StateLive
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLive:
		return "live"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}
