package valueobject

import "github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"

type ReportKind string

const (
	ReportKindLost  ReportKind = "lost"
	ReportKindFound ReportKind = "found"
)

func (k ReportKind) IsValid() bool {
	return k == ReportKindLost || k == ReportKindFound
}

// Opposite возвращает вид встречного потока объявлений.
func (k ReportKind) Opposite() ReportKind {
	if k == ReportKindLost {
		return ReportKindFound
	}
	return ReportKindLost
}

func NewReportKind(kind string) (ReportKind, error) {
	k := ReportKind(kind)
	if !k.IsValid() {
		return "", apperror.Validation("некорректный тип объявления")
	}
	return k, nil
}

type ReportStatus string

const (
	ReportStatusActive   ReportStatus = "active"
	ReportStatusResolved ReportStatus = "resolved"
	ReportStatusClosed   ReportStatus = "closed"
)

func (s ReportStatus) IsValid() bool {
	switch s {
	case ReportStatusActive, ReportStatusResolved, ReportStatusClosed:
		return true
	}
	return false
}

func (s ReportStatus) CanTransitionTo(newStatus ReportStatus) bool {
	transitions := map[ReportStatus][]ReportStatus{
		ReportStatusActive:   {ReportStatusResolved, ReportStatusClosed},
		ReportStatusResolved: {},
		ReportStatusClosed:   {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == newStatus {
			return true
		}
	}
	return false
}

func NewReportStatus(status string) (ReportStatus, error) {
	s := ReportStatus(status)
	if !s.IsValid() {
		return "", apperror.Validation("некорректный статус объявления")
	}
	return s, nil
}

type NotificationType string

const (
	NotificationTypeMatch   NotificationType = "match"
	NotificationTypeUpdate  NotificationType = "update"
	NotificationTypeInfo    NotificationType = "info"
	NotificationTypeSuccess NotificationType = "success"
)

func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationTypeMatch, NotificationTypeUpdate, NotificationTypeInfo, NotificationTypeSuccess:
		return true
	}
	return false
}

type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
)

func (t MessageType) IsValid() bool {
	return t == MessageTypeText || t == MessageTypeImage
}
