package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
	"github.com/ignatzorin/lostfound-backend/internal/domain/valueobject"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-backend/internal/repository/common"
)

const chatRoomColumns = `id, lost_report_id, found_report_id, lost_user_id, found_user_id, created_at`

type chatRoomRow struct {
	ID            uuid.UUID `db:"id"`
	LostReportID  uuid.UUID `db:"lost_report_id"`
	FoundReportID uuid.UUID `db:"found_report_id"`
	LostUserID    uuid.UUID `db:"lost_user_id"`
	FoundUserID   uuid.UUID `db:"found_user_id"`
	CreatedAt     time.Time `db:"created_at"`
}

func (r *chatRoomRow) toEntity() *entity.ChatRoom {
	return &entity.ChatRoom{
		ID:            r.ID,
		LostReportID:  r.LostReportID,
		FoundReportID: r.FoundReportID,
		LostUserID:    r.LostUserID,
		FoundUserID:   r.FoundUserID,
		CreatedAt:     r.CreatedAt,
	}
}

type ChatRoomRepositoryAdapter struct {
	db *sqlx.DB
}

func NewChatRoomRepositoryAdapter(db *sqlx.DB) *ChatRoomRepositoryAdapter {
	return &ChatRoomRepositoryAdapter{db: db}
}

func (r *ChatRoomRepositoryAdapter) Create(ctx context.Context, room *entity.ChatRoom) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO chat_rooms (`+chatRoomColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		room.ID, room.LostReportID, room.FoundReportID, room.LostUserID, room.FoundUserID, room.CreatedAt,
	)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return repository.ErrRoomExists
		}
		return apperror.Database(err, "не удалось создать чат")
	}
	return nil
}

// FindByReports возвращает nil, nil, если комнаты ещё нет.
func (r *ChatRoomRepositoryAdapter) FindByReports(ctx context.Context, lostReportID, foundReportID uuid.UUID) (*entity.ChatRoom, error) {
	var row chatRoomRow
	err := r.db.GetContext(ctx, &row,
		`SELECT `+chatRoomColumns+` FROM chat_rooms WHERE lost_report_id = $1 AND found_report_id = $2`,
		lostReportID, foundReportID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.Database(err, "не удалось получить чат")
	}
	return row.toEntity(), nil
}

func (r *ChatRoomRepositoryAdapter) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.ChatRoom, error) {
	var rows []chatRoomRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT `+chatRoomColumns+` FROM chat_rooms WHERE lost_user_id = $1 OR found_user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, apperror.Database(err, "не удалось получить чаты")
	}

	rooms := make([]*entity.ChatRoom, 0, len(rows))
	for i := range rows {
		rooms = append(rooms, rows[i].toEntity())
	}
	return rooms, nil
}

const messageColumns = `id, room_id, sender_id, content, type, metadata, created_at`

type messageRow struct {
	ID        uuid.UUID      `db:"id"`
	RoomID    string         `db:"room_id"`
	SenderID  uuid.UUID      `db:"sender_id"`
	Content   string         `db:"content"`
	Type      string         `db:"type"`
	Metadata  sql.NullString `db:"metadata"`
	CreatedAt time.Time      `db:"created_at"`
}

func (r *messageRow) toEntity() (*entity.Message, error) {
	msg := &entity.Message{
		ID:        r.ID,
		RoomKey:   entity.RoomKey(r.RoomID),
		SenderID:  r.SenderID,
		Content:   r.Content,
		Type:      valueobject.MessageType(r.Type),
		CreatedAt: r.CreatedAt,
	}
	if r.Metadata.Valid && r.Metadata.String != "" {
		var meta entity.MessageMetadata
		if err := json.Unmarshal([]byte(r.Metadata.String), &meta); err != nil {
			return nil, err
		}
		msg.Metadata = &meta
	}
	return msg, nil
}

// metadataArg: jsonb принимается строкой, []byte lib/pq отправил бы как bytea.
func metadataArg(meta *entity.MessageMetadata) (interface{}, error) {
	if meta == nil {
		return nil, nil
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

type MessageRepositoryAdapter struct {
	db *sqlx.DB
}

func NewMessageRepositoryAdapter(db *sqlx.DB) *MessageRepositoryAdapter {
	return &MessageRepositoryAdapter{db: db}
}

func (r *MessageRepositoryAdapter) Create(ctx context.Context, msg *entity.Message) error {
	meta, err := metadataArg(msg.Metadata)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сериализовать метаданные")
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO messages (`+messageColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		msg.ID, msg.RoomKey.String(), msg.SenderID, msg.Content, string(msg.Type), meta, msg.CreatedAt,
	)
	if err != nil {
		return apperror.Database(err, "не удалось отправить сообщение")
	}
	return nil
}

func (r *MessageRepositoryAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return apperror.Database(err, "не удалось удалить сообщение")
	}
	return common.RequireAffected(result, apperror.ErrMessageNotFound)
}

func (r *MessageRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Message, error) {
	row, err := common.GetOne[messageRow](ctx, r.db, apperror.ErrMessageNotFound,
		`SELECT `+messageColumns+` FROM messages WHERE id = $1`, id)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, err
		}
		return nil, apperror.Database(err, "не удалось получить сообщение")
	}

	msg, err := row.toEntity()
	if err != nil {
		return nil, apperror.Database(err, "повреждены метаданные сообщения")
	}
	return msg, nil
}

// ListByRoom отдаёт историю в порядке отображения: created_at, затем id.
func (r *MessageRepositoryAdapter) ListByRoom(ctx context.Context, room entity.RoomKey) ([]*entity.Message, error) {
	var rows []messageRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT `+messageColumns+` FROM messages WHERE room_id = $1 ORDER BY created_at ASC, id ASC`,
		room.String(),
	)
	if err != nil {
		return nil, apperror.Database(err, "не удалось получить сообщения")
	}

	messages := make([]*entity.Message, 0, len(rows))
	for i := range rows {
		msg, err := rows[i].toEntity()
		if err != nil {
			return nil, apperror.Database(err, "повреждены метаданные сообщения")
		}
		messages = append(messages, msg)
	}
	return messages, nil
}
