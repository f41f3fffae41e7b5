package tracking

import (
	"time"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/staff"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/sysconfig"
)

// Fallback position used when a checked-in staff member has no recorded location.
const (
	FallbackLat = 27.7172
	FallbackLng = 85.324
)

// LocationSource tells which record a live position was taken from.
type LocationSource string

const (
	SourceRoute    LocationSource = "route"
	SourceLast     LocationSource = "last_location"
	SourceCheckIn  LocationSource = "check_in"
	SourceFallback LocationSource = "fallback"
)

const UnknownCompanyName = "N/A"

type LiveLocation struct {
	StaffID        string           `json:"staffId"`
	Name           string           `json:"name"`
	Phone          *string          `json:"phone"`
	CompanyID      string           `json:"companyId"`
	Company        string           `json:"company"`
	GPSStatus      bool             `json:"gpsStatus"`
	LastCheckIn    *time.Time       `json:"lastCheckIn"`
	LastCheckOut   *time.Time       `json:"lastCheckOut"`
	Location       staff.Location   `json:"location"`
	LocationSource LocationSource   `json:"locationSource"`
	IsSpoofed      bool             `json:"isSpoofed"`
	SpoofReason    *string          `json:"spoofReason"`
	RoutePoints    []staff.Location `json:"routePoints"`
}

type LiveLocationsResponse struct {
	Data   []LiveLocation       `json:"data"`
	Config sysconfig.ConfigEcho `json:"config"`
}

// Event types published on the live stream.
const (
	EventCheckIn        = "check_in"
	EventCheckOut       = "check_out"
	EventAutoCheckOut   = "auto_check_out"
	EventLocationUpdate = "location_update"
	EventSpoofDetected  = "spoof_detected"
)

// LiveEvent is the payload of a live stream message.
type LiveEvent struct {
	StaffID   string          `json:"staffId"`
	CompanyID string          `json:"companyId"`
	SessionID string          `json:"sessionId,omitempty"`
	Location  *staff.Location `json:"location,omitempty"`
	IsSpoofed bool            `json:"isSpoofed"`
	Reason    *string         `json:"reason,omitempty"`
}

type StreamTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}
