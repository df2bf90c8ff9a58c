package matching

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
	"github.com/ignatzorin/lostfound-backend/internal/logger"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
)

type SubmitInput struct {
	Report entity.ReportInput
	Photos []Photo
}

type SubmitResult struct {
	Report  *entity.Report
	Matches []entity.MatchCandidate
}

type SubmitReportUseCase struct {
	reportRepo repository.ReportRepository
	writer     repository.SubmissionWriter
	uploader   *PhotoUploader
	scorer     *Scorer
	now        func() time.Time
}

func NewSubmitReportUseCase(
	reportRepo repository.ReportRepository,
	writer repository.SubmissionWriter,
	storage repository.ObjectStorage,
	scorer *Scorer,
) *SubmitReportUseCase {
	if scorer == nil {
		scorer = NewScorer(DefaultDistanceThresholdKm)
	}
	return &SubmitReportUseCase{
		reportRepo: reportRepo,
		writer:     writer,
		uploader:   NewPhotoUploader(storage),
		scorer:     scorer,
		now:        time.Now,
	}
}

// Execute проверяет объявление, загружает фотографии, сверяет его со встречным
// потоком и сохраняет объявление вместе с уведомлениями одной транзакцией.
func (uc *SubmitReportUseCase) Execute(ctx context.Context, userID uuid.UUID, input SubmitInput) (*SubmitResult, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}

	now := uc.now().UTC()

	report, err := entity.NewReport(userID, input.Report, now)
	if err != nil {
		return nil, err
	}

	log := logger.WithReport(report.ID).WithField("kind", report.Kind)

	prefix := fmt.Sprintf("reports/%s/%s", report.Kind, userID)
	uploaded, err := uc.uploader.Upload(ctx, prefix, input.Photos)
	if err != nil {
		log.WithError(err).Warn("matching: загрузка фотографий не удалась")
		return nil, err
	}

	if err := report.AttachPhotos(photoURLs(uploaded)); err != nil {
		uc.uploader.Cleanup(ctx, uploaded)
		return nil, err
	}

	candidates, err := uc.reportRepo.ListActiveByKind(ctx, report.Kind.Opposite())
	if err != nil {
		uc.uploader.Cleanup(ctx, uploaded)
		return nil, apperror.Database(err, "не удалось получить объявления для сверки")
	}

	byID := make(map[uuid.UUID]*entity.Report, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}

	var (
		matches       []entity.MatchCandidate
		notifications []*entity.Notification
	)
	for _, scored := range uc.scorer.Rank(report, candidates) {
		if !scored.IsMatch {
			continue
		}
		matches = append(matches, scored)
		notifications = append(notifications, entity.NewMatchNotification(report, byID[scored.ReportBID], now))
	}
	if len(matches) > 0 {
		notifications = append(notifications, entity.NewMatchSummaryNotification(report, len(matches), now))
	}

	if err := uc.writer.SaveSubmission(ctx, report, notifications); err != nil {
		uc.uploader.Cleanup(context.WithoutCancel(ctx), uploaded)
		log.WithError(err).Error("matching: не удалось сохранить объявление")
		if apperror.CodeOf(err) != "" {
			return nil, err
		}
		return nil, apperror.Database(err, "не удалось сохранить объявление")
	}

	log.WithFields(logrus.Fields{
		"candidates": len(candidates),
		"matches":    len(matches),
	}).Info("matching: объявление сохранено")

	if matches == nil {
		matches = []entity.MatchCandidate{}
	}

	return &SubmitResult{Report: report, Matches: matches}, nil
}
