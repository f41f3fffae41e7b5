package geo

import (
	"math"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/pkg/validator"
)

const (
	// EarthRadiusMeters is the mean Earth radius used by the Haversine formula.
	EarthRadiusMeters = 6371000

	// DefaultAllowedRadiusMeters is the geofence radius around a company headquarters.
	DefaultAllowedRadiusMeters = 5000
)

// HaversineDistance returns the great-circle distance between two coordinates in meters.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	lat1Rad := toRadians(lat1)
	lat2Rad := toRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// IsWithinAllowedArea reports whether (lat, lng) lies within radiusMeters of the center.
// A non-positive radius falls back to DefaultAllowedRadiusMeters.
func IsWithinAllowedArea(lat, lng, centerLat, centerLng, radiusMeters float64) bool {
	if radiusMeters <= 0 {
		radiusMeters = DefaultAllowedRadiusMeters
	}
	return HaversineDistance(lat, lng, centerLat, centerLng) <= radiusMeters
}

// IsValidCoordinate reports whether lat/lng are finite and inside the WGS84 range.
func IsValidCoordinate(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return validator.IsValidLatitude(lat) && validator.IsValidLongitude(lng)
}

// DetectSpoof is the baseline spoof heuristic: any coordinate outside the valid range is spoofed.
func DetectSpoof(lat, lng float64) bool {
	return !IsValidCoordinate(lat, lng)
}

// DetectSpoofPtr treats a missing coordinate as spoofed.
func DetectSpoofPtr(lat, lng *float64) bool {
	if lat == nil || lng == nil {
		return true
	}
	return DetectSpoof(*lat, *lng)
}

func toRadians(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}
