package handler_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
	"github.com/ignatzorin/lostfound-backend/internal/domain/valueobject"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
)

type memReports struct {
	mu      sync.Mutex
	reports map[uuid.UUID]*entity.Report
}

func newMemReports() *memReports {
	return &memReports{reports: make(map[uuid.UUID]*entity.Report)}
}

func (m *memReports) put(r *entity.Report) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[r.ID] = r
}

func (m *memReports) FindByID(ctx context.Context, id uuid.UUID) (*entity.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.reports[id]; ok {
		return r, nil
	}
	return nil, apperror.ErrReportNotFound
}

func (m *memReports) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Report
	for _, r := range m.reports {
		if r.OwnerID == ownerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memReports) ListActiveByKind(ctx context.Context, kind valueobject.ReportKind) ([]*entity.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Report
	for _, r := range m.reports {
		if r.Kind == kind && r.IsActive() {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (m *memReports) UpdateStatus(ctx context.Context, id uuid.UUID, status valueobject.ReportStatus, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok {
		return apperror.ErrReportNotFound
	}
	r.Status = status
	r.UpdatedAt = updatedAt
	return nil
}

type memNotifications struct {
	mu    sync.Mutex
	items map[uuid.UUID]*entity.Notification
}

func newMemNotifications() *memNotifications {
	return &memNotifications{items: make(map[uuid.UUID]*entity.Notification)}
}

func (m *memNotifications) Create(ctx context.Context, n *entity.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[n.ID] = n
	return nil
}

func (m *memNotifications) FindByID(ctx context.Context, id uuid.UUID) (*entity.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.items[id]; ok {
		return n, nil
	}
	return nil, apperror.ErrNotificationNotFound
}

func (m *memNotifications) ListByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool) ([]*entity.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Notification
	for _, n := range m.items {
		if n.RecipientID == recipientID && (!unreadOnly || !n.IsRead) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memNotifications) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.items[id]
	if !ok {
		return apperror.ErrNotificationNotFound
	}
	n.IsRead = true
	return nil
}

func (m *memNotifications) MarkAllAsRead(ctx context.Context, recipientID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.items {
		if n.RecipientID == recipientID {
			n.IsRead = true
		}
	}
	return nil
}

func (m *memNotifications) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return apperror.ErrNotificationNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memNotifications) CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.items {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

// memSubmissions сохраняет объявление и уведомления в те же in-memory хранилища.
type memSubmissions struct {
	reports       *memReports
	notifications *memNotifications
}

func (m *memSubmissions) SaveSubmission(ctx context.Context, report *entity.Report, notifications []*entity.Notification) error {
	m.reports.put(report)
	for _, n := range notifications {
		_ = m.notifications.Create(ctx, n)
	}
	return nil
}

type memRooms struct {
	mu    sync.Mutex
	rooms []*entity.ChatRoom
}

func (m *memRooms) Create(ctx context.Context, room *entity.ChatRoom) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rooms {
		if r.LostReportID == room.LostReportID && r.FoundReportID == room.FoundReportID {
			return repository.ErrRoomExists
		}
	}
	m.rooms = append(m.rooms, room)
	return nil
}

func (m *memRooms) FindByReports(ctx context.Context, lostReportID, foundReportID uuid.UUID) (*entity.ChatRoom, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rooms {
		if r.LostReportID == lostReportID && r.FoundReportID == foundReportID {
			return r, nil
		}
	}
	return nil, nil
}

func (m *memRooms) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.ChatRoom, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.ChatRoom
	for _, r := range m.rooms {
		if r.IsParticipant(userID) {
			out = append(out, r)
		}
	}
	return out, nil
}

type memMessages struct {
	mu       sync.Mutex
	messages map[uuid.UUID]*entity.Message
}

func newMemMessages() *memMessages {
	return &memMessages{messages: make(map[uuid.UUID]*entity.Message)}
}

func (m *memMessages) Create(ctx context.Context, msg *entity.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[msg.ID] = msg
	return nil
}

func (m *memMessages) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.messages[id]; !ok {
		return apperror.ErrMessageNotFound
	}
	delete(m.messages, id)
	return nil
}

func (m *memMessages) FindByID(ctx context.Context, id uuid.UUID) (*entity.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg, ok := m.messages[id]; ok {
		return msg, nil
	}
	return nil, apperror.ErrMessageNotFound
}

func (m *memMessages) ListByRoom(ctx context.Context, room entity.RoomKey) ([]*entity.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Message
	for _, msg := range m.messages {
		if msg.RoomKey == room {
			out = append(out, msg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return entity.MessageBefore(out[i], out[j]) })
	return out, nil
}

type memStorage struct {
	mu      sync.Mutex
	objects map[string]string
}

func newMemStorage() *memStorage {
	return &memStorage{objects: make(map[string]string)}
}

func (m *memStorage) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = contentType
	return "https://cdn.test/" + key, nil
}

func (m *memStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memStorage) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.objects))
	for k := range m.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func pngBytes(width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func newReport(owner uuid.UUID, kind valueobject.ReportKind, name string, category valueobject.Category) *entity.Report {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &entity.Report{
		ID:             uuid.New(),
		OwnerID:        owner,
		Kind:           kind,
		Category:       category,
		ItemName:       name,
		Description:    "test",
		EventDate:      now,
		ContactDetails: "+7 900 000-00-00",
		PhotoURLs:      []string{"https://cdn.test/p.jpg"},
		Location:       valueobject.Location{Latitude: 55.75, Longitude: 37.61},
		Status:         valueobject.ReportStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
