package matching

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
	"github.com/ignatzorin/lostfound-backend/internal/domain/valueobject"
	"github.com/ignatzorin/lostfound-backend/internal/logger"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
)

type UpdateReportStatusUseCase struct {
	reportRepo       repository.ReportRepository
	notificationRepo repository.NotificationRepository
	now              func() time.Time
}

func NewUpdateReportStatusUseCase(reportRepo repository.ReportRepository, notificationRepo repository.NotificationRepository) *UpdateReportStatusUseCase {
	return &UpdateReportStatusUseCase{
		reportRepo:       reportRepo,
		notificationRepo: notificationRepo,
		now:              time.Now,
	}
}

func (uc *UpdateReportStatusUseCase) Execute(ctx context.Context, userID, reportID uuid.UUID, rawStatus string) (*entity.Report, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}

	status, err := valueobject.NewReportStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	report, err := uc.reportRepo.FindByID(ctx, reportID)
	if err != nil {
		return nil, err
	}

	if !report.IsOwnedBy(userID) {
		return nil, apperror.ErrForbidden
	}

	now := uc.now().UTC()
	if err := report.ChangeStatus(status, now); err != nil {
		return nil, err
	}

	if err := uc.reportRepo.UpdateStatus(ctx, report.ID, report.Status, report.UpdatedAt); err != nil {
		if apperror.IsNotFound(err) {
			// Между чтением и записью статус сменил другой запрос.
			return nil, uc.statusConflict(ctx, report.ID)
		}
		return nil, err
	}

	if report.Status == valueobject.ReportStatusResolved {
		if err := uc.notificationRepo.Create(ctx, entity.NewResolvedNotification(report, now)); err != nil {
			// Статус уже сохранён, уведомление не критично.
			logger.WithReport(report.ID).WithError(err).Warn("matching: не удалось создать уведомление о возврате")
		}
	}

	return report, nil
}

func (uc *UpdateReportStatusUseCase) statusConflict(ctx context.Context, reportID uuid.UUID) error {
	if _, err := uc.reportRepo.FindByID(ctx, reportID); err != nil {
		return err
	}
	return apperror.ErrReportStatusChanged
}

type ListMyReportsUseCase struct {
	reportRepo repository.ReportRepository
}

func NewListMyReportsUseCase(reportRepo repository.ReportRepository) *ListMyReportsUseCase {
	return &ListMyReportsUseCase{reportRepo: reportRepo}
}

func (uc *ListMyReportsUseCase) Execute(ctx context.Context, userID uuid.UUID) ([]*entity.Report, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}
	return uc.reportRepo.FindByOwner(ctx, userID)
}

type GetReportUseCase struct {
	reportRepo repository.ReportRepository
}

func NewGetReportUseCase(reportRepo repository.ReportRepository) *GetReportUseCase {
	return &GetReportUseCase{reportRepo: reportRepo}
}

func (uc *GetReportUseCase) Execute(ctx context.Context, reportID uuid.UUID) (*entity.Report, error) {
	return uc.reportRepo.FindByID(ctx, reportID)
}
