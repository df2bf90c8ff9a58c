package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/valueobject"
)

type ReportRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Report, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.Report, error)
	ListActiveByKind(ctx context.Context, kind valueobject.ReportKind) ([]*entity.Report, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status valueobject.ReportStatus, updatedAt time.Time) error
}

// SubmissionWriter сохраняет объявление вместе с уведомлениями о совпадениях
// одной транзакцией: либо всё, либо ничего.
type SubmissionWriter interface {
	SaveSubmission(ctx context.Context, report *entity.Report, notifications []*entity.Notification) error
}
