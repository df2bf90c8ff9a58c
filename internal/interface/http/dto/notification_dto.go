package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/notification"
)

type NotificationResponse struct {
	ID            uuid.UUID  `json:"id"`
	Type          string     `json:"type"`
	Title         string     `json:"title"`
	Message       string     `json:"message"`
	LostReportID  *uuid.UUID `json:"lost_report_id,omitempty"`
	FoundReportID *uuid.UUID `json:"found_report_id,omitempty"`
	IsRead        bool       `json:"is_read"`
	CreatedAt     time.Time  `json:"created_at"`
	RelativeTime  string     `json:"relative_time"`
}

type UnreadCountResponse struct {
	Count int `json:"count"`
}

func ToNotificationResponse(n *entity.Notification, now time.Time) NotificationResponse {
	return NotificationResponse{
		ID:            n.ID,
		Type:          string(n.Type),
		Title:         n.Title,
		Message:       n.Message,
		LostReportID:  n.LostReportID,
		FoundReportID: n.FoundReportID,
		IsRead:        n.IsRead,
		CreatedAt:     n.CreatedAt,
		RelativeTime:  notification.RelativeTime(n.CreatedAt, now),
	}
}

func ToNotificationListResponse(items []*entity.Notification, now time.Time) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, n := range items {
		out = append(out, ToNotificationResponse(n, now))
	}
	return out
}
