package matching_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/valueobject"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
)

type mockReportRepository struct {
	reports map[uuid.UUID]*entity.Report
	listErr error
}

func newMockReportRepository(reports ...*entity.Report) *mockReportRepository {
	m := &mockReportRepository{reports: make(map[uuid.UUID]*entity.Report)}
	for _, r := range reports {
		m.reports[r.ID] = r
	}
	return m
}

func (m *mockReportRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Report, error) {
	if r, ok := m.reports[id]; ok {
		return r, nil
	}
	return nil, apperror.ErrReportNotFound
}

func (m *mockReportRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.Report, error) {
	var result []*entity.Report
	for _, r := range m.reports {
		if r.OwnerID == ownerID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockReportRepository) ListActiveByKind(ctx context.Context, kind valueobject.ReportKind) ([]*entity.Report, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*entity.Report
	for _, r := range m.reports {
		if r.Kind == kind && r.IsActive() {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID.String() < result[j].ID.String() })
	return result, nil
}

func (m *mockReportRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status valueobject.ReportStatus, updatedAt time.Time) error {
	r, ok := m.reports[id]
	if !ok {
		return apperror.ErrReportNotFound
	}
	r.Status = status
	r.UpdatedAt = updatedAt
	return nil
}

type mockSubmissionWriter struct {
	reports       []*entity.Report
	notifications []*entity.Notification
	err           error
}

func (m *mockSubmissionWriter) SaveSubmission(ctx context.Context, report *entity.Report, notifications []*entity.Notification) error {
	if m.err != nil {
		return m.err
	}
	m.reports = append(m.reports, report)
	m.notifications = append(m.notifications, notifications...)
	return nil
}

type mockNotificationRepository struct {
	created []*entity.Notification
	err     error
}

func (m *mockNotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, n)
	return nil
}

func (m *mockNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Notification, error) {
	return nil, apperror.ErrNotificationNotFound
}

func (m *mockNotificationRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool) ([]*entity.Notification, error) {
	return m.created, nil
}

func (m *mockNotificationRepository) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (m *mockNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID uuid.UUID) error {
	return nil
}

func (m *mockNotificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (m *mockNotificationRepository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error) {
	return len(m.created), nil
}

var errStorageDown = errors.New("storage unavailable")

type mockObjectStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	failOn  int
	calls   int
}

func newMockObjectStorage() *mockObjectStorage {
	return &mockObjectStorage{objects: make(map[string][]byte)}
}

func (m *mockObjectStorage) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failOn > 0 && m.calls == m.failOn {
		return "", errStorageDown
	}
	m.objects[key] = data
	return "https://cdn.test/" + key, nil
}

func (m *mockObjectStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *mockObjectStorage) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
