package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/valueobject"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-backend/internal/repository/common"
)

const notificationColumns = `id, recipient_id, type, title, message, lost_report_id, found_report_id, is_read, created_at`

const notificationFields = 9

type notificationRow struct {
	ID            uuid.UUID  `db:"id"`
	RecipientID   uuid.UUID  `db:"recipient_id"`
	Type          string     `db:"type"`
	Title         string     `db:"title"`
	Message       string     `db:"message"`
	LostReportID  *uuid.UUID `db:"lost_report_id"`
	FoundReportID *uuid.UUID `db:"found_report_id"`
	IsRead        bool       `db:"is_read"`
	CreatedAt     time.Time  `db:"created_at"`
}

func (r *notificationRow) toEntity() *entity.Notification {
	return &entity.Notification{
		ID:            r.ID,
		RecipientID:   r.RecipientID,
		Type:          valueobject.NotificationType(r.Type),
		Title:         r.Title,
		Message:       r.Message,
		LostReportID:  r.LostReportID,
		FoundReportID: r.FoundReportID,
		IsRead:        r.IsRead,
		CreatedAt:     r.CreatedAt,
	}
}

func notificationArgs(n *entity.Notification) []interface{} {
	return []interface{}{
		n.ID,
		n.RecipientID,
		string(n.Type),
		n.Title,
		n.Message,
		n.LostReportID,
		n.FoundReportID,
		n.IsRead,
		n.CreatedAt,
	}
}

type NotificationRepositoryAdapter struct {
	db *sqlx.DB
}

func NewNotificationRepositoryAdapter(db *sqlx.DB) *NotificationRepositoryAdapter {
	return &NotificationRepositoryAdapter{db: db}
}

// Create не дублирует уведомление о совпадении, уже выданное получателю.
func (r *NotificationRepositoryAdapter) Create(ctx context.Context, n *entity.Notification) error {
	bi := common.NewBatchInserter(r.db, `INSERT INTO notifications (`+notificationColumns+`)`, "ON CONFLICT DO NOTHING", notificationFields, 1)
	if err := bi.Add(ctx, notificationArgs(n)...); err != nil {
		return apperror.Database(err, "не удалось создать уведомление")
	}
	return nil
}

func (r *NotificationRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`

	row, err := common.GetOne[notificationRow](ctx, r.db, apperror.ErrNotificationNotFound, query, id)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, err
		}
		return nil, apperror.Database(err, "не удалось получить уведомление")
	}
	return row.toEntity(), nil
}

func (r *NotificationRepositoryAdapter) ListByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool) ([]*entity.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE recipient_id = $1`
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC, id`

	var rows []notificationRow
	if err := r.db.SelectContext(ctx, &rows, query, recipientID); err != nil {
		return nil, apperror.Database(err, "не удалось получить уведомления")
	}

	result := make([]*entity.Notification, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].toEntity())
	}
	return result, nil
}

func (r *NotificationRepositoryAdapter) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return apperror.Database(err, "не удалось отметить уведомление")
	}
	return common.RequireAffected(result, apperror.ErrNotificationNotFound)
}

func (r *NotificationRepositoryAdapter) MarkAllAsRead(ctx context.Context, recipientID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE recipient_id = $1 AND is_read = FALSE`, recipientID)
	if err != nil {
		return apperror.Database(err, "не удалось отметить уведомления")
	}
	return nil
}

func (r *NotificationRepositoryAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return apperror.Database(err, "не удалось удалить уведомление")
	}
	return common.RequireAffected(result, apperror.ErrNotificationNotFound)
}

func (r *NotificationRepositoryAdapter) CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND is_read = FALSE`, recipientID)
	if err != nil {
		return 0, apperror.Database(err, "не удалось посчитать уведомления")
	}
	return count, nil
}
