package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
)

// ErrRoomExists возвращается из Create, когда пара объявлений уже занята
// другой комнатой (нарушение уникального индекса).
var ErrRoomExists = errors.New("chat room already exists")

type ChatRoomRepository interface {
	Create(ctx context.Context, room *entity.ChatRoom) error
	FindByReports(ctx context.Context, lostReportID, foundReportID uuid.UUID) (*entity.ChatRoom, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.ChatRoom, error)
}

type MessageRepository interface {
	Create(ctx context.Context, msg *entity.Message) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Message, error)
	ListByRoom(ctx context.Context, room entity.RoomKey) ([]*entity.Message, error)
}
