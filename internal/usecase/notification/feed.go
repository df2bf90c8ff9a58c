package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
)

// RoomResolver - резолвер чатов, через который открывается совпадение.
type RoomResolver interface {
	Execute(ctx context.Context, lostRaw, foundRaw string, userID uuid.UUID) (entity.RoomKey, error)
}

type FeedUseCase struct {
	repo     repository.NotificationRepository
	resolver RoomResolver
}

func NewFeedUseCase(repo repository.NotificationRepository, resolver RoomResolver) *FeedUseCase {
	return &FeedUseCase{repo: repo, resolver: resolver}
}

// ListForUser возвращает уведомления пользователя, новые сверху.
func (uc *FeedUseCase) ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*entity.Notification, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}
	return uc.repo.ListByRecipient(ctx, userID, unreadOnly)
}

func (uc *FeedUseCase) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	if userID == uuid.Nil {
		return 0, apperror.ErrUnauthorized
	}
	return uc.repo.CountUnread(ctx, userID)
}

// Delete удаляет уведомление безвозвратно.
func (uc *FeedUseCase) Delete(ctx context.Context, userID, notificationID uuid.UUID) error {
	if _, err := uc.owned(ctx, userID, notificationID); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, notificationID)
}

func (uc *FeedUseCase) MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	n, err := uc.owned(ctx, userID, notificationID)
	if err != nil {
		return err
	}
	if n.IsRead {
		return nil
	}
	return uc.repo.MarkAsRead(ctx, notificationID)
}

func (uc *FeedUseCase) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return apperror.ErrUnauthorized
	}
	return uc.repo.MarkAllAsRead(ctx, userID)
}

// OpenMatch помечает уведомление о совпадении прочитанным и возвращает ключ
// чата между владельцами двух объявлений.
func (uc *FeedUseCase) OpenMatch(ctx context.Context, userID, notificationID uuid.UUID) (entity.RoomKey, error) {
	n, err := uc.owned(ctx, userID, notificationID)
	if err != nil {
		return "", err
	}
	if !n.IsMatch() {
		return "", apperror.Validation("уведомление не относится к совпадению")
	}

	key, err := uc.resolver.Execute(ctx, n.LostReportID.String(), n.FoundReportID.String(), userID)
	if err != nil {
		return "", err
	}

	if !n.IsRead {
		if err := uc.repo.MarkAsRead(ctx, notificationID); err != nil {
			return "", err
		}
	}

	return key, nil
}

func (uc *FeedUseCase) owned(ctx context.Context, userID, notificationID uuid.UUID) (*entity.Notification, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}
	n, err := uc.repo.FindByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if !n.BelongsTo(userID) {
		return nil, apperror.ErrNotificationNotFound
	}
	return n, nil
}

// RelativeTime форматирует возраст уведомления: "Nm ago", "Nh ago", "Nd ago".
func RelativeTime(createdAt, now time.Time) string {
	elapsed := now.Sub(createdAt)
	if elapsed < 0 {
		elapsed = 0
	}

	minutes := int(elapsed / time.Minute)
	if minutes < 60 {
		return fmt.Sprintf("%dm ago", minutes)
	}

	hours := int(elapsed / time.Hour)
	if hours < 24 {
		return fmt.Sprintf("%dh ago", hours)
	}

	return fmt.Sprintf("%dd ago", hours/24)
}
