package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/valueobject"
)

type Notification struct {
	ID            uuid.UUID
	RecipientID   uuid.UUID
	Type          valueobject.NotificationType
	Title         string
	Message       string
	LostReportID  *uuid.UUID
	FoundReportID *uuid.UUID
	IsRead        bool
	CreatedAt     time.Time
}

func newNotification(recipientID uuid.UUID, typ valueobject.NotificationType, title, message string, now time.Time) *Notification {
	return &Notification{
		ID:          uuid.New(),
		RecipientID: recipientID,
		Type:        typ,
		Title:       title,
		Message:     message,
		CreatedAt:   now,
	}
}

// NewMatchNotification адресует уведомление владельцу candidate.
func NewMatchNotification(submitted, candidate *Report, now time.Time) *Notification {
	lostID, foundID := LostFoundIDs(submitted, candidate)

	var message string
	if candidate.Kind == valueobject.ReportKindLost {
		message = fmt.Sprintf("We found a match for your lost %s. Check it out!", candidate.ItemName)
	} else {
		message = fmt.Sprintf("Someone lost an item that looks like the %s you found.", candidate.ItemName)
	}

	n := newNotification(candidate.OwnerID, valueobject.NotificationTypeMatch, "Potential Match Found", message, now)
	n.LostReportID = &lostID
	n.FoundReportID = &foundID
	return n
}

func NewMatchSummaryNotification(submitted *Report, matches int, now time.Time) *Notification {
	message := fmt.Sprintf("Your %s report has %d potential match(es).", submitted.Kind, matches)
	return newNotification(submitted.OwnerID, valueobject.NotificationTypeInfo, "Matches Found", message, now)
}

func NewResolvedNotification(report *Report, now time.Time) *Notification {
	message := fmt.Sprintf("Congratulations! Your %s %s has been marked as returned.", report.Kind, report.ItemName)
	return newNotification(report.OwnerID, valueobject.NotificationTypeSuccess, "Item Returned", message, now)
}

func (n *Notification) IsMatch() bool {
	return n.Type == valueobject.NotificationTypeMatch && n.LostReportID != nil && n.FoundReportID != nil
}

func (n *Notification) BelongsTo(userID uuid.UUID) bool {
	return n.RecipientID == userID
}
