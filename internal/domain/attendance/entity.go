package attendance

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const StatusPresent = "present"

// Auto-checkout and spoof reasons recorded on sessions.
const (
	ReasonShiftEnded       = "Shift ended"
	ReasonGPSOff           = "GPS turned off"
	ReasonSpoofing         = "Spoofing detected"
	ReasonDuplicateSession = "Duplicate open session"

	SpoofReasonCheckIn  = "Fake GPS detected"
	SpoofReasonTracking = "Fake GPS detected during tracking"
)

// InactivityReason formats the inactivity auto-checkout reason, e.g. "Inactive > 30 mins".
func InactivityReason(limitMinutes int) string {
	return fmt.Sprintf("Inactive > %d mins", limitMinutes)
}

// Location is a session endpoint with its reverse-geocoded address.
type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

// RoutePoint is one GPS sample recorded while a session is open.
type RoutePoint struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Accuracy  *float64  `json:"accuracy,omitempty"`
	Speed     *float64  `json:"speed,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is one check-in to check-out interval. Sessions are never deleted.
type Session struct {
	ID        string
	StaffID   string
	CompanyID string

	CheckInTime  time.Time
	CheckOutTime *time.Time

	CheckInLocation  Location
	CheckOutLocation *Location

	Route []RoutePoint

	IsSpoofed   bool
	SpoofReason *string

	TotalHours *float64
	Status     string

	AutoCheckOut       bool
	AutoCheckOutReason *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s Session) IsOpen() bool {
	return s.CheckOutTime == nil
}

// LastRoutePoint returns the newest route point, or nil when none was recorded.
func (s Session) LastRoutePoint() *RoutePoint {
	if len(s.Route) == 0 {
		return nil
	}
	p := s.Route[len(s.Route)-1]
	return &p
}

// LastActivity is the newest route point timestamp, else the check-in time.
func (s Session) LastActivity() time.Time {
	if p := s.LastRoutePoint(); p != nil {
		return p.Timestamp
	}
	return s.CheckInTime
}

// ComputeTotalHours returns checkOut-checkIn in hours, rounded to 2 decimals, never negative.
func ComputeTotalHours(checkIn, checkOut time.Time) float64 {
	elapsed := checkOut.Sub(checkIn)
	if elapsed < 0 {
		elapsed = 0
	}
	hours := decimal.NewFromInt(elapsed.Nanoseconds()).Div(decimal.NewFromInt(int64(time.Hour)))
	return hours.Round(2).InexactFloat64()
}

// Closure describes how a session is being closed.
type Closure struct {
	CheckOutTime       time.Time
	CheckOutLocation   *Location
	TotalHours         float64
	AutoCheckOut       bool
	AutoCheckOutReason *string
}

// NewClosure builds a closure for s at the given time.
func NewClosure(s Session, at time.Time, loc *Location, autoReason *string) Closure {
	return Closure{
		CheckOutTime:       at,
		CheckOutLocation:   loc,
		TotalHours:         ComputeTotalHours(s.CheckInTime, at),
		AutoCheckOut:       autoReason != nil,
		AutoCheckOutReason: autoReason,
	}
}
