package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/lostfound-backend/internal/chatsync"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
)

type ResolveRoomRequest struct {
	LostReportID  string `json:"lost_report_id" binding:"required"`
	FoundReportID string `json:"found_report_id" binding:"required"`
}

type RoomKeyResponse struct {
	RoomID string `json:"room_id"`
}

type RoomResponse struct {
	RoomID        string    `json:"room_id"`
	LostReportID  uuid.UUID `json:"lost_report_id"`
	FoundReportID uuid.UUID `json:"found_report_id"`
	LostUserID    uuid.UUID `json:"lost_user_id"`
	FoundUserID   uuid.UUID `json:"found_user_id"`
	CreatedAt     time.Time `json:"created_at"`
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type MessageMetadataResponse struct {
	Width  int   `json:"width,omitempty"`
	Height int   `json:"height,omitempty"`
	Size   int64 `json:"size,omitempty"`
}

type MessageResponse struct {
	ID        uuid.UUID                `json:"id"`
	RoomID    string                   `json:"room_id"`
	SenderID  uuid.UUID                `json:"sender_id"`
	Content   string                   `json:"content"`
	Type      string                   `json:"type"`
	Metadata  *MessageMetadataResponse `json:"metadata,omitempty"`
	CreatedAt time.Time                `json:"created_at"`
}

// StreamFrame - кадр WebSocket-потока чата.
type StreamFrame struct {
	Type      string            `json:"type"`
	Messages  []MessageResponse `json:"messages,omitempty"`
	Message   *MessageResponse  `json:"message,omitempty"`
	MessageID *uuid.UUID        `json:"message_id,omitempty"`
}

func ToRoomResponse(room *entity.ChatRoom) RoomResponse {
	return RoomResponse{
		RoomID:        room.Key().String(),
		LostReportID:  room.LostReportID,
		FoundReportID: room.FoundReportID,
		LostUserID:    room.LostUserID,
		FoundUserID:   room.FoundUserID,
		CreatedAt:     room.CreatedAt,
	}
}

func ToRoomListResponse(rooms []*entity.ChatRoom) []RoomResponse {
	out := make([]RoomResponse, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, ToRoomResponse(r))
	}
	return out
}

func ToMessageResponse(m *entity.Message) MessageResponse {
	resp := MessageResponse{
		ID:        m.ID,
		RoomID:    m.RoomKey.String(),
		SenderID:  m.SenderID,
		Content:   m.Content,
		Type:      string(m.Type),
		CreatedAt: m.CreatedAt,
	}
	if m.Metadata != nil {
		resp.Metadata = &MessageMetadataResponse{
			Width:  m.Metadata.Width,
			Height: m.Metadata.Height,
			Size:   m.Metadata.Size,
		}
	}
	return resp
}

func ToMessageListResponse(messages []*entity.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, ToMessageResponse(m))
	}
	return out
}

func ToStreamFrame(u chatsync.Update) StreamFrame {
	frame := StreamFrame{Type: string(u.Kind)}
	switch u.Kind {
	case chatsync.UpdateSnapshot:
		frame.Messages = ToMessageListResponse(u.Messages)
	case chatsync.UpdateInsert:
		if u.Message != nil {
			msg := ToMessageResponse(u.Message)
			frame.Message = &msg
		}
	case chatsync.UpdateDelete:
		id := u.MessageID
		frame.MessageID = &id
	}
	return frame
}
