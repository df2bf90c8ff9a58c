package realtime

import (
	"context"
	"errors"
	"sync"

	"github.com/ignatzorin/lostfound-backend/internal/chatsync"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/logger"
)

var ErrBrokerClosed = errors.New("realtime: broker closed")

const defaultSubscriptionBuffer = 64

// Broker раздаёт события сообщений подписчикам по ключу чата.
// Каналы подписок закрывает только цикл Run.
type Broker struct {
	mu         sync.RWMutex
	rooms      map[entity.RoomKey]map[*subscription]struct{}
	register   chan *subscription
	unregister chan *subscription
	broadcast  chan chatsync.Event
	dropAll    chan struct{}
	done       chan struct{}
	buffer     int
}

type subscription struct {
	broker *Broker
	room   entity.RoomKey
	ch     chan chatsync.Event
	once   sync.Once
}

func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = defaultSubscriptionBuffer
	}
	return &Broker{
		rooms:      make(map[entity.RoomKey]map[*subscription]struct{}),
		register:   make(chan *subscription),
		unregister: make(chan *subscription),
		broadcast:  make(chan chatsync.Event, 32),
		dropAll:    make(chan struct{}),
		done:       make(chan struct{}),
		buffer:     buffer,
	}
}

// Run запускает главный цикл брокера до отмены контекста.
func (b *Broker) Run(ctx context.Context) {
	defer b.shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case sub := <-b.register:
			b.add(sub)
		case sub := <-b.unregister:
			b.remove(sub)
		case ev := <-b.broadcast:
			b.send(ev)
		case <-b.dropAll:
			b.closeAll()
		}
	}
}

func (b *Broker) Subscribe(room entity.RoomKey) (chatsync.Subscription, error) {
	sub := &subscription{
		broker: b,
		room:   room,
		ch:     make(chan chatsync.Event, b.buffer),
	}
	select {
	case b.register <- sub:
		return sub, nil
	case <-b.done:
		return nil, ErrBrokerClosed
	}
}

// Publish не блокируется после остановки брокера.
func (b *Broker) Publish(ev chatsync.Event) {
	select {
	case b.broadcast <- ev:
	case <-b.done:
	}
}

// DropAll закрывает все подписки. Сессии завершаются, клиенты
// переподключаются и получают свежую историю.
func (b *Broker) DropAll() {
	select {
	case b.dropAll <- struct{}{}:
	case <-b.done:
	}
}

// Subscribers возвращает число подписчиков чата.
func (b *Broker) Subscribers(room entity.RoomKey) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.rooms[room])
}

func (b *Broker) add(sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.rooms[sub.room]; !ok {
		b.rooms[sub.room] = make(map[*subscription]struct{})
	}
	b.rooms[sub.room][sub] = struct{}{}
}

func (b *Broker) remove(sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.drop(sub)
}

// drop вызывается под b.mu.
func (b *Broker) drop(sub *subscription) {
	subs, ok := b.rooms[sub.room]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	close(sub.ch)
	if len(subs) == 0 {
		delete(b.rooms, sub.room)
	}
}

func (b *Broker) send(ev chatsync.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for sub := range b.rooms[ev.Room] {
		select {
		case sub.ch <- ev:
		default:
			// Отстающий подписчик отключается, сессия переподключится.
			logger.WithRoom(ev.Room.String()).Warn("realtime: подписчик не успевает, отключён")
			b.drop(sub)
		}
	}
}

func (b *Broker) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for _, subs := range b.rooms {
		for sub := range subs {
			close(sub.ch)
			n++
		}
	}
	b.rooms = make(map[entity.RoomKey]map[*subscription]struct{})
	logger.Log.WithField("subscriptions", n).Warn("realtime: все подписки сброшены")
}

func (b *Broker) shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()

	close(b.done)
	for _, subs := range b.rooms {
		for sub := range subs {
			close(sub.ch)
		}
	}
	b.rooms = make(map[entity.RoomKey]map[*subscription]struct{})
}

func (s *subscription) Events() <-chan chatsync.Event {
	return s.ch
}

func (s *subscription) Close() {
	s.once.Do(func() {
		select {
		case s.broker.unregister <- s:
		case <-s.broker.done:
		}
	})
}
