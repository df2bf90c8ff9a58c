package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ignatzorin/lostfound-backend/internal/chatsync"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/valueobject"
	"github.com/ignatzorin/lostfound-backend/internal/logger"
)

const pingInterval = 90 * time.Second

// MessageEventsChannel - канал, в который пишет триггер notify_message_event.
const MessageEventsChannel = "message_events"

// Publisher принимает декодированные события ленты.
type Publisher interface {
	Publish(ev chatsync.Event)
	DropAll()
}

// MessageLoader дочитывает сообщение, если триггер прислал только id
// (полезная нагрузка NOTIFY ограничена 8000 байт).
type MessageLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Message, error)
}

type PGFeedConfig struct {
	DSN          string
	Channel      string
	MinReconnect time.Duration
	MaxReconnect time.Duration
}

// PGFeed слушает LISTEN/NOTIFY и пересылает события в брокер.
type PGFeed struct {
	cfg       PGFeedConfig
	publisher Publisher
	loader    MessageLoader
}

func NewPGFeed(cfg PGFeedConfig, publisher Publisher, loader MessageLoader) *PGFeed {
	if cfg.Channel == "" {
		cfg.Channel = MessageEventsChannel
	}
	if cfg.MinReconnect <= 0 {
		cfg.MinReconnect = 10 * time.Second
	}
	if cfg.MaxReconnect < cfg.MinReconnect {
		cfg.MaxReconnect = time.Minute
	}
	return &PGFeed{cfg: cfg, publisher: publisher, loader: loader}
}

func (f *PGFeed) Run(ctx context.Context) error {
	log := logger.Log.WithField("channel", f.cfg.Channel)

	listener := pq.NewListener(f.cfg.DSN, f.cfg.MinReconnect, f.cfg.MaxReconnect, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.WithError(err).Warn("realtime: ошибка соединения LISTEN")
		}
	})
	defer listener.Close()

	if err := listener.Listen(f.cfg.Channel); err != nil {
		return fmt.Errorf("realtime: listen %s: %w", f.cfg.Channel, err)
	}
	log.Info("realtime: подписка на события сообщений")

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			if n == nil {
				f.reconnected()
				continue
			}
			f.handle(ctx, []byte(n.Extra))
		case <-ticker.C:
			if err := listener.Ping(); err != nil {
				log.WithError(err).Warn("realtime: ping LISTEN не прошёл")
			}
		}
	}
}

// reconnected вызывается, когда pq.Listener восстановил соединение:
// события за время простоя потеряны, живые сессии сбрасываются.
func (f *PGFeed) reconnected() {
	logger.Log.WithField("channel", f.cfg.Channel).Warn("realtime: соединение LISTEN восстановлено, подписки сброшены")
	f.publisher.DropAll()
}

func (f *PGFeed) handle(ctx context.Context, payload []byte) {
	ev, partial, err := DecodeNotification(payload)
	if err != nil {
		logger.Log.WithError(err).Warn("realtime: некорректное уведомление")
		return
	}

	if partial && ev.Op == chatsync.OpInsert {
		if f.loader == nil {
			return
		}
		msg, err := f.loader.FindByID(ctx, ev.MessageID)
		if err != nil {
			// Сообщение могли уже удалить.
			logger.WithRoom(ev.Room.String()).WithError(err).Debug("realtime: сообщение не дочитано")
			return
		}
		ev.Message = msg
	}

	f.publisher.Publish(ev)
}

type notificationPayload struct {
	Op      string        `json:"op"`
	Partial bool          `json:"partial"`
	Record  messageRecord `json:"record"`
}

type messageRecord struct {
	ID        uuid.UUID               `json:"id"`
	RoomID    string                  `json:"room_id"`
	SenderID  uuid.UUID               `json:"sender_id"`
	Content   string                  `json:"content"`
	Type      string                  `json:"type"`
	Metadata  *entity.MessageMetadata `json:"metadata"`
	CreatedAt time.Time               `json:"created_at"`
}

// DecodeNotification разбирает JSON из триггера messages_notify.
// partial означает, что в записи есть только id и room_id.
func DecodeNotification(payload []byte) (ev chatsync.Event, partial bool, err error) {
	var p notificationPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return chatsync.Event{}, false, fmt.Errorf("decode notify payload: %w", err)
	}
	if p.Record.ID == uuid.Nil || p.Record.RoomID == "" {
		return chatsync.Event{}, false, errors.New("notify payload without id or room_id")
	}

	room := entity.RoomKey(p.Record.RoomID)

	switch chatsync.Op(p.Op) {
	case chatsync.OpDelete:
		return chatsync.DeleteEvent(room, p.Record.ID), false, nil
	case chatsync.OpInsert:
		if p.Partial {
			return chatsync.Event{Op: chatsync.OpInsert, Room: room, MessageID: p.Record.ID}, true, nil
		}
		msgType := valueobject.MessageType(p.Record.Type)
		if !msgType.IsValid() {
			msgType = valueobject.MessageTypeText
		}
		return chatsync.InsertEvent(&entity.Message{
			ID:        p.Record.ID,
			RoomKey:   room,
			SenderID:  p.Record.SenderID,
			Content:   p.Record.Content,
			Type:      msgType,
			Metadata:  p.Record.Metadata,
			CreatedAt: p.Record.CreatedAt.UTC(),
		}), false, nil
	}

	return chatsync.Event{}, false, fmt.Errorf("unknown notify op %q", p.Op)
}
