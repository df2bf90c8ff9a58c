package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/matching"
)

// SubmitReportForm - текстовые поля multipart-формы подачи объявления.
// Файлы приходят отдельно в поле photos.
type SubmitReportForm struct {
	Kind           string  `form:"kind" binding:"required,oneof=lost found"`
	Category       string  `form:"category" binding:"required"`
	ItemName       string  `form:"item_name" binding:"required"`
	Description    string  `form:"description" binding:"required"`
	EventDate      string  `form:"event_date" binding:"required"`
	ContactDetails string  `form:"contact_details" binding:"required"`
	Latitude       float64 `form:"latitude"`
	Longitude      float64 `form:"longitude"`
}

func (f SubmitReportForm) ToInput() entity.ReportInput {
	return entity.ReportInput{
		Kind:           f.Kind,
		Category:       f.Category,
		ItemName:       f.ItemName,
		Description:    f.Description,
		EventDate:      f.EventDate,
		ContactDetails: f.ContactDetails,
		Latitude:       f.Latitude,
		Longitude:      f.Longitude,
	}
}

type UpdateReportStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ReportResponse struct {
	ID             uuid.UUID `json:"id"`
	OwnerID        uuid.UUID `json:"owner_id"`
	Kind           string    `json:"kind"`
	Category       string    `json:"category"`
	ItemName       string    `json:"item_name"`
	Description    string    `json:"description"`
	EventDate      string    `json:"event_date"`
	ContactDetails string    `json:"contact_details"`
	PhotoURLs      []string  `json:"photo_urls"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type MatchResponse struct {
	ReportID       uuid.UUID `json:"report_id"`
	NameSimilarity bool      `json:"name_similarity"`
	CategoryMatch  bool      `json:"category_match"`
	DistanceKm     float64   `json:"distance_km"`
}

type SubmitReportResponse struct {
	Report  ReportResponse  `json:"report"`
	Matches []MatchResponse `json:"matches"`
}

func ToReportResponse(r *entity.Report) ReportResponse {
	photos := r.PhotoURLs
	if photos == nil {
		photos = []string{}
	}
	return ReportResponse{
		ID:             r.ID,
		OwnerID:        r.OwnerID,
		Kind:           string(r.Kind),
		Category:       string(r.Category),
		ItemName:       r.ItemName,
		Description:    r.Description,
		EventDate:      r.EventDate.Format(entity.EventDateLayout),
		ContactDetails: r.ContactDetails,
		PhotoURLs:      photos,
		Latitude:       r.Location.Latitude,
		Longitude:      r.Location.Longitude,
		Status:         string(r.Status),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func ToReportListResponse(reports []*entity.Report) []ReportResponse {
	out := make([]ReportResponse, 0, len(reports))
	for _, r := range reports {
		out = append(out, ToReportResponse(r))
	}
	return out
}

func ToSubmitReportResponse(result *matching.SubmitResult) SubmitReportResponse {
	matches := make([]MatchResponse, 0, len(result.Matches))
	for _, m := range result.Matches {
		matches = append(matches, MatchResponse{
			ReportID:       m.ReportBID,
			NameSimilarity: m.NameSimilarity,
			CategoryMatch:  m.CategoryMatch,
			DistanceKm:     m.DistanceKm,
		})
	}
	return SubmitReportResponse{
		Report:  ToReportResponse(result.Report),
		Matches: matches,
	}
}
