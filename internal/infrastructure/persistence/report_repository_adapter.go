package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/valueobject"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-backend/internal/repository/common"
)

const reportColumns = `id, owner_id, kind, category, item_name, description, event_date,
	contact_details, photo_urls, latitude, longitude, status, created_at, updated_at`

type reportRow struct {
	ID             uuid.UUID      `db:"id"`
	OwnerID        uuid.UUID      `db:"owner_id"`
	Kind           string         `db:"kind"`
	Category       string         `db:"category"`
	ItemName       string         `db:"item_name"`
	Description    string         `db:"description"`
	EventDate      time.Time      `db:"event_date"`
	ContactDetails string         `db:"contact_details"`
	PhotoURLs      pq.StringArray `db:"photo_urls"`
	Latitude       float64        `db:"latitude"`
	Longitude      float64        `db:"longitude"`
	Status         string         `db:"status"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (r *reportRow) toEntity() *entity.Report {
	return &entity.Report{
		ID:             r.ID,
		OwnerID:        r.OwnerID,
		Kind:           valueobject.ReportKind(r.Kind),
		Category:       valueobject.Category(r.Category),
		ItemName:       r.ItemName,
		Description:    r.Description,
		EventDate:      r.EventDate,
		ContactDetails: r.ContactDetails,
		PhotoURLs:      []string(r.PhotoURLs),
		Location:       valueobject.Location{Latitude: r.Latitude, Longitude: r.Longitude},
		Status:         valueobject.ReportStatus(r.Status),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// reportArgs - значения в порядке reportColumns.
func reportArgs(r *entity.Report) []interface{} {
	return []interface{}{
		r.ID,
		r.OwnerID,
		string(r.Kind),
		string(r.Category),
		r.ItemName,
		r.Description,
		r.EventDate,
		r.ContactDetails,
		pq.StringArray(r.PhotoURLs),
		r.Location.Latitude,
		r.Location.Longitude,
		string(r.Status),
		r.CreatedAt,
		r.UpdatedAt,
	}
}

type ReportRepositoryAdapter struct {
	db *sqlx.DB
}

func NewReportRepositoryAdapter(db *sqlx.DB) *ReportRepositoryAdapter {
	return &ReportRepositoryAdapter{db: db}
}

func (r *ReportRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`

	row, err := common.GetOne[reportRow](ctx, r.db, apperror.ErrReportNotFound, query, id)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, err
		}
		return nil, apperror.Database(err, "не удалось получить объявление")
	}
	return row.toEntity(), nil
}

func (r *ReportRepositoryAdapter) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE owner_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, ownerID)
}

func (r *ReportRepositoryAdapter) ListActiveByKind(ctx context.Context, kind valueobject.ReportKind) ([]*entity.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE kind = $1 AND status = $2 ORDER BY created_at DESC`
	return r.list(ctx, query, string(kind), string(valueobject.ReportStatusActive))
}

// UpdateStatus меняет только активное объявление. Закрытое или уже
// возвращённое даёт ErrReportNotFound, как и отсутствующее.
func (r *ReportRepositoryAdapter) UpdateStatus(ctx context.Context, id uuid.UUID, status valueobject.ReportStatus, updatedAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reports SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4`,
		id, string(status), updatedAt, string(valueobject.ReportStatusActive),
	)
	if err != nil {
		return apperror.Database(err, "не удалось обновить статус объявления")
	}
	return common.RequireAffected(result, apperror.ErrReportNotFound)
}

func (r *ReportRepositoryAdapter) list(ctx context.Context, query string, args ...interface{}) ([]*entity.Report, error) {
	var rows []reportRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperror.Database(err, "не удалось получить объявления")
	}

	reports := make([]*entity.Report, 0, len(rows))
	for i := range rows {
		reports = append(reports, rows[i].toEntity())
	}
	return reports, nil
}
