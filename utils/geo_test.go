package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/LovationAdmin/storefinder-api/models"
)

func TestDistanceKmKnownPair(t *testing.T) {
	// Frankfurt -> Milan is roughly 520 km
	d := DistanceKm(50.1109, 8.6821, 45.4642, 9.19)
	assert.InDelta(t, 518, d, 5)
}

func TestDistanceKmSymmetricAndZero(t *testing.T) {
	points := [][2]float64{
		{50.1109, 8.6821},
		{45.4642, 9.19},
		{-33.8688, 151.2093},
		{40.7128, -74.006},
		{0, 0},
		{89.9, 179.9},
	}

	for _, a := range points {
		assert.Equal(t, 0.0, DistanceKm(a[0], a[1], a[0], a[1]))
		for _, b := range points {
			ab := DistanceKm(a[0], a[1], b[0], b[1])
			ba := DistanceKm(b[0], b[1], a[0], a[1])
			assert.InDelta(t, ab, ba, 1e-9)
			assert.GreaterOrEqual(t, ab, 0.0)
		}
	}
}

func TestDistanceKmRoundsToTwoDecimals(t *testing.T) {
	d := DistanceKm(50.1109, 8.6821, 50.1209, 8.6921)
	assert.Equal(t, d, math.Round(d*100)/100)
}

func TestDistanceKmInvalidCoordinates(t *testing.T) {
	assert.Equal(t, UnknownDistanceKm, DistanceKm(math.NaN(), 8, 50, 8))
	assert.Equal(t, UnknownDistanceKm, DistanceKm(50, math.Inf(1), 50, 8))
	assert.Equal(t, UnknownDistanceKm, DistanceKm(91, 8, 50, 8))
	assert.Equal(t, UnknownDistanceKm, DistanceKm(50, 8, 50, -181))
}

func TestDistanceBetweenNil(t *testing.T) {
	a := &models.Coordinates{Lat: 50.1, Lng: 8.6}
	assert.Equal(t, UnknownDistanceKm, DistanceBetween(nil, a))
	assert.Equal(t, UnknownDistanceKm, DistanceBetween(a, nil))
	assert.Equal(t, 0.0, DistanceBetween(a, a))
}

func TestFormatCoordinateAddress(t *testing.T) {
	assert.Equal(t, "Location: 50.1109°, 8.6821°", FormatCoordinateAddress(50.1109, 8.6821))
}
