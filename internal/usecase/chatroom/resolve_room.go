package chatroom

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
	"github.com/ignatzorin/lostfound-backend/internal/domain/valueobject"
	"github.com/ignatzorin/lostfound-backend/internal/logger"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
)

type ResolveRoomUseCase struct {
	reportRepo repository.ReportRepository
	roomRepo   repository.ChatRoomRepository
	now        func() time.Time
}

func NewResolveRoomUseCase(reportRepo repository.ReportRepository, roomRepo repository.ChatRoomRepository) *ResolveRoomUseCase {
	return &ResolveRoomUseCase{
		reportRepo: reportRepo,
		roomRepo:   roomRepo,
		now:        time.Now,
	}
}

// Execute возвращает единственный чат для пары (потерянное, найденное),
// создавая его при первом обращении.
func (uc *ResolveRoomUseCase) Execute(ctx context.Context, lostRaw, foundRaw string, userID uuid.UUID) (entity.RoomKey, error) {
	if userID == uuid.Nil {
		return "", apperror.ErrUnauthorized
	}

	lostID, foundID, err := entity.ParseRoomPair(lostRaw, foundRaw)
	if err != nil {
		return "", err
	}

	lost, found, err := uc.loadPair(ctx, lostID, foundID)
	if err != nil {
		return "", err
	}

	if !lost.IsOwnedBy(userID) && !found.IsOwnedBy(userID) {
		return "", apperror.ErrForbidden
	}

	existing, err := uc.roomRepo.FindByReports(ctx, lostID, foundID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return existing.Key(), nil
	}

	room, err := entity.NewChatRoom(lost, found, uc.now().UTC())
	if err != nil {
		return "", err
	}

	log := logger.WithRoom(room.Key().String())

	if err := uc.roomRepo.Create(ctx, room); err != nil {
		if !errors.Is(err, repository.ErrRoomExists) {
			return "", err
		}
		// Параллельный запрос успел создать комнату первым.
		winner, err := uc.roomRepo.FindByReports(ctx, lostID, foundID)
		if err != nil {
			return "", err
		}
		if winner == nil {
			return "", apperror.ErrRoomNotFound
		}
		log.Debug("chatroom: комната уже создана параллельным запросом")
		return winner.Key(), nil
	}

	log.WithField("user_id", userID.String()).Info("chatroom: создана комната")
	return room.Key(), nil
}

func (uc *ResolveRoomUseCase) loadPair(ctx context.Context, lostID, foundID uuid.UUID) (*entity.Report, *entity.Report, error) {
	lost, err := uc.findReport(ctx, lostID)
	if err != nil {
		return nil, nil, err
	}
	found, err := uc.findReport(ctx, foundID)
	if err != nil {
		return nil, nil, err
	}
	if lost.Kind != valueobject.ReportKindLost || found.Kind != valueobject.ReportKindFound {
		return nil, nil, apperror.ErrInvalidRoomKey
	}
	return lost, found, nil
}

// Несуществующее объявление в ключе - тот же некорректный ключ.
func (uc *ResolveRoomUseCase) findReport(ctx context.Context, id uuid.UUID) (*entity.Report, error) {
	report, err := uc.reportRepo.FindByID(ctx, id)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.ErrInvalidRoomKey
		}
		return nil, err
	}
	return report, nil
}

type ListMyRoomsUseCase struct {
	roomRepo repository.ChatRoomRepository
}

func NewListMyRoomsUseCase(roomRepo repository.ChatRoomRepository) *ListMyRoomsUseCase {
	return &ListMyRoomsUseCase{roomRepo: roomRepo}
}

func (uc *ListMyRoomsUseCase) Execute(ctx context.Context, userID uuid.UUID) ([]*entity.ChatRoom, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}
	return uc.roomRepo.FindByUserID(ctx, userID)
}

type AuthorizeRoomUseCase struct {
	roomRepo repository.ChatRoomRepository
}

func NewAuthorizeRoomUseCase(roomRepo repository.ChatRoomRepository) *AuthorizeRoomUseCase {
	return &AuthorizeRoomUseCase{roomRepo: roomRepo}
}

// Execute разбирает ключ чата и проверяет, что пользователь - участник.
func (uc *AuthorizeRoomUseCase) Execute(ctx context.Context, rawKey string, userID uuid.UUID) (*entity.ChatRoom, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}

	lostID, foundID, err := entity.SplitRoomKey(rawKey)
	if err != nil {
		return nil, err
	}

	room, err := uc.roomRepo.FindByReports(ctx, lostID, foundID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, apperror.ErrRoomNotFound
	}

	if !room.IsParticipant(userID) {
		return nil, apperror.ErrForbidden
	}

	return room, nil
}
