package valueobject

import (
	"math"

	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
)

const EarthRadiusKm = 6371.0

type Location struct {
	Latitude  float64
	Longitude float64
}

func NewLocation(lat, lng float64) (Location, error) {
	loc := Location{Latitude: lat, Longitude: lng}
	if err := loc.Validate(); err != nil {
		return Location{}, err
	}
	return loc, nil
}

func (l Location) Validate() error {
	if math.IsNaN(l.Latitude) || l.Latitude < -90 || l.Latitude > 90 {
		return apperror.Validation("широта должна быть в диапазоне [-90, 90]")
	}
	if math.IsNaN(l.Longitude) || l.Longitude < -180 || l.Longitude > 180 {
		return apperror.Validation("долгота должна быть в диапазоне [-180, 180]")
	}
	return nil
}

func (l Location) DistanceTo(other Location) float64 {
	return DistanceKm(l, other)
}

// DistanceKm считает расстояние по большой окружности (формула гаверсинусов).
func DistanceKm(a, b Location) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := toRadians(b.Latitude - a.Latitude)
	dLng := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
