package chatsync

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/goroutine"
	"github.com/ignatzorin/lostfound-backend/internal/logger"
)

const updatesBuffer = 64

type command interface{}

type seedCmd struct {
	messages []*entity.Message
	applied  chan struct{}
}

type removeCmd struct {
	id uuid.UUID
}

type snapshotCmd struct {
	reply chan []*entity.Message
}

// Session - актор одного чата: список сообщений принадлежит только его
// горутине, все изменения проходят через один канал команд.
type Session struct {
	engine *Engine
	room   entity.RoomKey
	sub    Subscription
	log    *logrus.Entry

	cmds    chan command
	updates chan Update
	done    chan struct{}
	stopped chan struct{}

	state    atomic.Int32
	stopOnce sync.Once

	// Поля ниже трогает только горутина run.
	messages []*entity.Message
	pending  []Event
	// deleted хранит id удалённых сообщений: лента не упорядочивает INSERT
	// и DELETE и может доставить событие повторно.
	deleted map[uuid.UUID]struct{}
}

func newSession(engine *Engine, room entity.RoomKey, sub Subscription) *Session {
	s := &Session{
		engine:  engine,
		room:    room,
		sub:     sub,
		log:     logger.WithRoom(room.String()),
		cmds:    make(chan command),
		updates: make(chan Update, updatesBuffer),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		deleted: make(map[uuid.UUID]struct{}),
	}
	s.state.Store(int32(StateIdle))
	return s
}

func (s *Session) Room() entity.RoomKey {
	return s.room
}

func (s *Session) State() State {
	return State(s.state.Load())
}

// Updates закрывается, когда сессия завершена.
func (s *Session) Updates() <-chan Update {
	return s.updates
}

// Done закрывается при отключении сессии.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) Send(ctx context.Context, senderID uuid.UUID, content string) (*entity.Message, error) {
	return s.engine.Send(ctx, s.room, senderID, content)
}

func (s *Session) SendImage(ctx context.Context, senderID uuid.UUID, url string, meta *entity.MessageMetadata) (*entity.Message, error) {
	return s.engine.SendImage(ctx, s.room, senderID, url, meta)
}

// Delete удаляет сообщение в хранилище и сразу убирает его из списка.
// Пришедшее позже DELETE-событие будет пустой операцией.
func (s *Session) Delete(ctx context.Context, callerID, messageID uuid.UUID) error {
	if err := s.engine.Delete(ctx, s.room, callerID, messageID); err != nil {
		return err
	}
	s.dispatch(removeCmd{id: messageID})
	return nil
}

// Messages возвращает копию текущего списка. После Detach - nil.
func (s *Session) Messages() []*entity.Message {
	reply := make(chan []*entity.Message, 1)
	if !s.dispatch(snapshotCmd{reply: reply}) {
		return nil
	}
	select {
	case msgs := <-reply:
		return msgs
	case <-s.stopped:
		return nil
	}
}

// Detach можно вызывать сколько угодно раз.
func (s *Session) Detach() {
	s.stop()
	<-s.stopped
}

func (s *Session) stop() {
	s.stopOnce.Do(func() {
		s.state.Store(int32(StateClosed))
		close(s.done)
		s.sub.Close()
	})
}

func (s *Session) start() {
	s.state.Store(int32(StateLoading))
	goroutine.SafeGo("chatsync session "+s.room.String(), s.run)
}

func (s *Session) seed(history []*entity.Message) bool {
	applied := make(chan struct{})
	if !s.dispatch(seedCmd{messages: history, applied: applied}) {
		return false
	}
	select {
	case <-applied:
		return true
	case <-s.stopped:
		return false
	}
}

func (s *Session) dispatch(cmd command) bool {
	select {
	case s.cmds <- cmd:
		return true
	case <-s.done:
		return false
	}
}

func (s *Session) run() {
	defer close(s.stopped)
	defer close(s.updates)
	defer func() {
		s.messages = nil
		s.pending = nil
		s.deleted = nil
	}()

	events := s.sub.Events()
	for {
		select {
		case <-s.done:
			return

		case ev, ok := <-events:
			if !ok {
				s.log.Warn("chatsync: живая лента закрыта, сессия завершается")
				s.stop()
				return
			}
			if s.State() == StateLoading {
				s.pending = append(s.pending, ev)
				continue
			}
			if !s.apply(ev, true) {
				return
			}

		case cmd := <-s.cmds:
			if !s.handle(cmd) {
				return
			}
		}
	}
}

func (s *Session) handle(cmd command) bool {
	switch c := cmd.(type) {
	case seedCmd:
		s.applySeed(c.messages)
		close(c.applied)
		return s.emit(Update{Kind: UpdateSnapshot, Messages: s.copyMessages()})
	case removeCmd:
		if s.remove(c.id) {
			return s.emit(Update{Kind: UpdateDelete, MessageID: c.id})
		}
	case snapshotCmd:
		c.reply <- s.copyMessages()
	}
	return true
}

func (s *Session) applySeed(history []*entity.Message) {
	seen := make(map[uuid.UUID]struct{}, len(history))
	list := make([]*entity.Message, 0, len(history))
	for _, m := range history {
		if m == nil {
			continue
		}
		if _, dup := seen[m.ID]; dup {
			continue
		}
		if _, gone := s.deleted[m.ID]; gone {
			continue
		}
		seen[m.ID] = struct{}{}
		list = append(list, m)
	}
	sort.SliceStable(list, func(i, j int) bool { return entity.MessageBefore(list[i], list[j]) })
	s.messages = list

	for _, ev := range s.pending {
		s.apply(ev, false)
	}
	s.log.WithField("buffered", len(s.pending)).Debug("chatsync: история загружена")
	s.pending = nil
	s.state.Store(int32(StateLive))
}

// apply возвращает false, если сессию пришлось закрыть.
func (s *Session) apply(ev Event, notify bool) bool {
	if ev.Room != s.room {
		s.log.WithField("event_room", ev.Room).Debug("chatsync: событие другого чата пропущено")
		return true
	}

	switch ev.Op {
	case OpInsert:
		if ev.Message == nil || !s.insert(ev.Message) {
			return true
		}
		if notify {
			return s.emit(Update{Kind: UpdateInsert, Message: ev.Message})
		}
	case OpDelete:
		if !s.remove(ev.MessageID) {
			s.log.WithField("message_id", ev.MessageID).Debug("chatsync: устаревшее событие удаления")
			return true
		}
		if notify {
			return s.emit(Update{Kind: UpdateDelete, MessageID: ev.MessageID})
		}
	}
	return true
}

func (s *Session) insert(msg *entity.Message) bool {
	if _, gone := s.deleted[msg.ID]; gone {
		return false
	}
	for _, m := range s.messages {
		if m.ID == msg.ID {
			return false
		}
	}
	i := sort.Search(len(s.messages), func(i int) bool { return entity.MessageBefore(msg, s.messages[i]) })
	s.messages = append(s.messages, nil)
	copy(s.messages[i+1:], s.messages[i:])
	s.messages[i] = msg
	return true
}

// remove запоминает id, даже если сообщения ещё нет в списке.
func (s *Session) remove(id uuid.UUID) bool {
	s.deleted[id] = struct{}{}
	for i, m := range s.messages {
		if m.ID == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Session) copyMessages() []*entity.Message {
	out := make([]*entity.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Медленный потребитель обновлений не должен блокировать актор:
// сессия закрывается, транспорт переподключится.
func (s *Session) emit(u Update) bool {
	select {
	case s.updates <- u:
		return true
	default:
		s.log.Warn("chatsync: буфер обновлений переполнен, сессия закрыта")
		s.stop()
		return false
	}
}
