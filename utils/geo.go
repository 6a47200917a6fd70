package utils

import (
	"fmt"
	"math"

	"github.com/LovationAdmin/storefinder-api/models"
)

const (
	EarthRadiusKm = 6371.0

	// UnknownDistanceKm is returned for missing or invalid coordinates so that
	// such entries sort last instead of breaking the pipeline.
	UnknownDistanceKm = 99999.0
)

// DistanceKm returns the great-circle distance between two points, rounded to
// two decimals.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	if !ValidLatLng(lat1, lng1) || !ValidLatLng(lat2, lng2) {
		return UnknownDistanceKm
	}

	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return RoundTo2(EarthRadiusKm * c)
}

// DistanceBetween is DistanceKm for optional coordinates.
func DistanceBetween(a, b *models.Coordinates) float64 {
	if a == nil || b == nil {
		return UnknownDistanceKm
	}
	return DistanceKm(a.Lat, a.Lng, b.Lat, b.Lng)
}

// ValidLatLng rejects NaN, infinities and out-of-range values.
func ValidLatLng(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// FormatCoordinateAddress is the address placeholder used when a provider
// returns coordinates but no postal address.
func FormatCoordinateAddress(lat, lng float64) string {
	return fmt.Sprintf("Location: %.4f°, %.4f°", lat, lng)
}

func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
