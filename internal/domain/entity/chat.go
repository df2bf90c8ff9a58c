package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/valueobject"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-backend/internal/validation"
)

const roomKeySeparator = "_"

// RoomKey - внешний идентификатор чата: "<lostReportID>_<foundReportID>".
type RoomKey string

func NewRoomKey(lostReportID, foundReportID uuid.UUID) RoomKey {
	return RoomKey(lostReportID.String() + roomKeySeparator + foundReportID.String())
}

func ParseRoomKey(raw string) (RoomKey, error) {
	lostID, foundID, err := SplitRoomKey(raw)
	if err != nil {
		return "", err
	}
	return NewRoomKey(lostID, foundID), nil
}

func SplitRoomKey(raw string) (lostID, foundID uuid.UUID, err error) {
	parts := strings.Split(strings.TrimSpace(raw), roomKeySeparator)
	if len(parts) != 2 {
		return uuid.Nil, uuid.Nil, apperror.ErrInvalidRoomKey
	}
	lostID, foundID, err = ParseRoomPair(parts[0], parts[1])
	return lostID, foundID, err
}

// ParseRoomPair проверяет пару идентификаторов объявлений до любых запросов в базу.
func ParseRoomPair(lostRaw, foundRaw string) (lostID, foundID uuid.UUID, err error) {
	lostID, err = uuid.Parse(strings.TrimSpace(lostRaw))
	if err != nil || lostID == uuid.Nil {
		return uuid.Nil, uuid.Nil, apperror.ErrInvalidRoomKey
	}
	foundID, err = uuid.Parse(strings.TrimSpace(foundRaw))
	if err != nil || foundID == uuid.Nil {
		return uuid.Nil, uuid.Nil, apperror.ErrInvalidRoomKey
	}
	if lostID == foundID {
		return uuid.Nil, uuid.Nil, apperror.ErrInvalidRoomKey
	}
	return lostID, foundID, nil
}

func (k RoomKey) String() string {
	return string(k)
}

type ChatRoom struct {
	ID            uuid.UUID
	LostReportID  uuid.UUID
	FoundReportID uuid.UUID
	LostUserID    uuid.UUID
	FoundUserID   uuid.UUID
	CreatedAt     time.Time
}

func NewChatRoom(lost, found *Report, now time.Time) (*ChatRoom, error) {
	if lost.Kind != valueobject.ReportKindLost || found.Kind != valueobject.ReportKindFound {
		return nil, apperror.ErrInvalidRoomKey
	}
	return &ChatRoom{
		ID:            uuid.New(),
		LostReportID:  lost.ID,
		FoundReportID: found.ID,
		LostUserID:    lost.OwnerID,
		FoundUserID:   found.OwnerID,
		CreatedAt:     now,
	}, nil
}

func (r *ChatRoom) Key() RoomKey {
	return NewRoomKey(r.LostReportID, r.FoundReportID)
}

func (r *ChatRoom) IsParticipant(userID uuid.UUID) bool {
	return r.LostUserID == userID || r.FoundUserID == userID
}

type MessageMetadata struct {
	Width  int   `json:"width,omitempty"`
	Height int   `json:"height,omitempty"`
	Size   int64 `json:"size,omitempty"`
}

type Message struct {
	ID        uuid.UUID
	RoomKey   RoomKey
	SenderID  uuid.UUID
	Content   string
	Type      valueobject.MessageType
	Metadata  *MessageMetadata
	CreatedAt time.Time
}

func NewTextMessage(room RoomKey, senderID uuid.UUID, content string, now time.Time) (*Message, error) {
	if senderID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}
	if err := validation.ValidateMessageContent(content); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	return &Message{
		ID:        uuid.New(),
		RoomKey:   room,
		SenderID:  senderID,
		Content:   content,
		Type:      valueobject.MessageTypeText,
		CreatedAt: now,
	}, nil
}

func NewImageMessage(room RoomKey, senderID uuid.UUID, url string, meta *MessageMetadata, now time.Time) (*Message, error) {
	if senderID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}
	if err := validation.ValidateURL(url); err != nil {
		return nil, err
	}
	url = strings.TrimSpace(url)
	return &Message{
		ID:        uuid.New(),
		RoomKey:   room,
		SenderID:  senderID,
		Content:   url,
		Type:      valueobject.MessageTypeImage,
		Metadata:  meta,
		CreatedAt: now,
	}, nil
}

func (m *Message) IsOwnedBy(userID uuid.UUID) bool {
	return m.SenderID == userID
}

// MessageBefore задаёт порядок отображения: created_at, затем id.
func MessageBefore(a, b *Message) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID.String() < b.ID.String()
}
