package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/valueobject"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-backend/internal/validation"
)

const EventDateLayout = "2006-01-02"

type Report struct {
	ID             uuid.UUID
	OwnerID        uuid.UUID
	Kind           valueobject.ReportKind
	Category       valueobject.Category
	ItemName       string
	Description    string
	EventDate      time.Time
	ContactDetails string
	PhotoURLs      []string
	Location       valueobject.Location
	Status         valueobject.ReportStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type ReportInput struct {
	Kind           string
	Category       string
	ItemName       string
	Description    string
	EventDate      string
	ContactDetails string
	PhotoURLs      []string
	Latitude       float64
	Longitude      float64
}

func NewReport(ownerID uuid.UUID, in ReportInput, now time.Time) (*Report, error) {
	if ownerID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}

	kind, err := valueobject.NewReportKind(in.Kind)
	if err != nil {
		return nil, err
	}

	category, err := valueobject.NewCategory(in.Category)
	if err != nil {
		return nil, err
	}

	if err := validation.ValidateItemName(in.ItemName); err != nil {
		return nil, err
	}
	if err := validation.ValidateDescription(in.Description); err != nil {
		return nil, err
	}
	if err := validation.ValidateContactDetails(in.ContactDetails); err != nil {
		return nil, err
	}

	eventDate, err := time.Parse(EventDateLayout, strings.TrimSpace(in.EventDate))
	if err != nil {
		return nil, apperror.Validation("дата должна быть в формате ГГГГ-ММ-ДД")
	}
	// Сутки запаса на разницу часовых поясов устройства и сервера.
	if eventDate.After(now.AddDate(0, 0, 1)) {
		return nil, apperror.Validation("дата не может быть в будущем")
	}

	location, err := valueobject.NewLocation(in.Latitude, in.Longitude)
	if err != nil {
		return nil, err
	}

	return &Report{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		Kind:           kind,
		Category:       category,
		ItemName:       strings.TrimSpace(in.ItemName),
		Description:    strings.TrimSpace(in.Description),
		EventDate:      eventDate,
		ContactDetails: strings.TrimSpace(in.ContactDetails),
		PhotoURLs:      cleanURLs(in.PhotoURLs),
		Location:       location,
		Status:         valueobject.ReportStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// AttachPhotos добавляет ссылки на загруженные фотографии. Объявление без
// фотографий не принимается.
func (r *Report) AttachPhotos(urls []string) error {
	r.PhotoURLs = append(r.PhotoURLs, cleanURLs(urls)...)
	if len(r.PhotoURLs) == 0 {
		return apperror.Validation("нужна хотя бы одна фотография")
	}
	return nil
}

func cleanURLs(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

func (r *Report) IsActive() bool {
	return r.Status == valueobject.ReportStatusActive
}

func (r *Report) IsOwnedBy(userID uuid.UUID) bool {
	return r.OwnerID == userID
}

func (r *Report) ChangeStatus(status valueobject.ReportStatus, now time.Time) error {
	if !r.Status.CanTransitionTo(status) {
		return apperror.Validation("невозможно изменить статус объявления")
	}
	r.Status = status
	r.UpdatedAt = now
	return nil
}

// LostFoundIDs раскладывает пару объявлений на (потерянное, найденное).
func LostFoundIDs(a, b *Report) (lostID, foundID uuid.UUID) {
	if a.Kind == valueobject.ReportKindLost {
		return a.ID, b.ID
	}
	return b.ID, a.ID
}
