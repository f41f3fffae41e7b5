package geo

import (
	"fmt"
	"time"
)

// TrackPoint is a single GPS sample fed to a SpoofDetector.
type TrackPoint struct {
	Lat       float64
	Lng       float64
	Timestamp time.Time
}

// SpoofDetector decides whether a point is implausible. previous is nil for the first point of a session.
type SpoofDetector interface {
	Detect(p TrackPoint, previous *TrackPoint) (spoofed bool, reason string)
}

// RangeDetector flags coordinates outside the valid numeric range.
type RangeDetector struct{}

func (RangeDetector) Detect(p TrackPoint, _ *TrackPoint) (bool, string) {
	if DetectSpoof(p.Lat, p.Lng) {
		return true, "coordinates out of range"
	}
	return false, ""
}

// DefaultMaxSpeedMPS is roughly 250 km/h.
const DefaultMaxSpeedMPS = 70.0

// VelocityDetector flags a point whose implied speed from the previous point exceeds MaxSpeedMPS.
type VelocityDetector struct {
	MaxSpeedMPS float64
}

func (d VelocityDetector) Detect(p TrackPoint, previous *TrackPoint) (bool, string) {
	if previous == nil || !IsValidCoordinate(previous.Lat, previous.Lng) || !IsValidCoordinate(p.Lat, p.Lng) {
		return false, ""
	}

	limit := d.MaxSpeedMPS
	if limit <= 0 {
		limit = DefaultMaxSpeedMPS
	}

	elapsed := p.Timestamp.Sub(previous.Timestamp).Seconds()
	distance := HaversineDistance(previous.Lat, previous.Lng, p.Lat, p.Lng)
	if elapsed <= 0 {
		// Same instant, different place.
		if distance > 1 {
			return true, "position jumped without elapsed time"
		}
		return false, ""
	}

	if speed := distance / elapsed; speed > limit {
		return true, fmt.Sprintf("implied speed %.0f m/s exceeds %.0f m/s", speed, limit)
	}
	return false, ""
}

// ChainDetector runs detectors in order; the first hit wins.
type ChainDetector []SpoofDetector

func (c ChainDetector) Detect(p TrackPoint, previous *TrackPoint) (bool, string) {
	for _, d := range c {
		if spoofed, reason := d.Detect(p, previous); spoofed {
			return true, reason
		}
	}
	return false, ""
}

// NewDefaultDetector returns the range check followed by the velocity check.
func NewDefaultDetector() SpoofDetector {
	return ChainDetector{RangeDetector{}, VelocityDetector{MaxSpeedMPS: DefaultMaxSpeedMPS}}
}
