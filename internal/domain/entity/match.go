package entity

import "github.com/google/uuid"

// MatchCandidate вычисляется на каждой подаче объявления и не сохраняется.
type MatchCandidate struct {
	ReportAID      uuid.UUID `json:"report_a_id"`
	ReportBID      uuid.UUID `json:"report_b_id"`
	NameSimilarity bool      `json:"name_similarity"`
	CategoryMatch  bool      `json:"category_match"`
	DistanceKm     float64   `json:"distance_km"`
	IsMatch        bool      `json:"is_match"`
}
