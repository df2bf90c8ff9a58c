package matching

import (
	"strings"

	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/valueobject"
)

const DefaultDistanceThresholdKm = 1.0

type Scorer struct {
	thresholdKm float64
}

func NewScorer(thresholdKm float64) *Scorer {
	if thresholdKm <= 0 {
		thresholdKm = DefaultDistanceThresholdKm
	}
	return &Scorer{thresholdKm: thresholdKm}
}

// Score сравнивает новое объявление с кандидатом из встречного потока:
// совпадение = похожее название И (та же категория ИЛИ ближе порога).
func (s *Scorer) Score(newReport, candidate *entity.Report) entity.MatchCandidate {
	nameSimilar := NamesSimilar(newReport.ItemName, candidate.ItemName)
	categoryMatch := newReport.Category == candidate.Category
	distance := valueobject.DistanceKm(newReport.Location, candidate.Location)

	return entity.MatchCandidate{
		ReportAID:      newReport.ID,
		ReportBID:      candidate.ID,
		NameSimilarity: nameSimilar,
		CategoryMatch:  categoryMatch,
		DistanceKm:     distance,
		IsMatch:        (nameSimilar && categoryMatch) || (nameSimilar && distance < s.thresholdKm),
	}
}

// Rank оценивает всех кандидатов, пропуская само объявление, объявления
// того же владельца и того же вида.
func (s *Scorer) Rank(newReport *entity.Report, candidates []*entity.Report) []entity.MatchCandidate {
	scored := make([]entity.MatchCandidate, 0, len(candidates))
	for _, c := range candidates {
		if !eligible(newReport, c) {
			continue
		}
		scored = append(scored, s.Score(newReport, c))
	}
	return scored
}

func eligible(newReport, candidate *entity.Report) bool {
	if candidate == nil || candidate.ID == newReport.ID {
		return false
	}
	if candidate.OwnerID == newReport.OwnerID {
		return false
	}
	return candidate.Kind != newReport.Kind
}

// NamesSimilar - проверка подстроки в обе стороны без учёта регистра.
// Пустое название не совпадает ни с чем.
func NamesSimilar(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
