package attendance

import (
	"time"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/pkg/geo"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/pkg/validator"
)

// ========================================
// REQUESTS
// ========================================

type CheckInRequest struct {
	StaffID   string   `json:"-"`
	CompanyID string   `json:"-"`
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
}

func (r *CheckInRequest) Validate() error {
	return validateStrictCoordinates(r.StaffID, r.Lat, r.Lng)
}

type CheckOutRequest struct {
	StaffID   string   `json:"-"`
	CompanyID string   `json:"-"`
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
}

func (r *CheckOutRequest) Validate() error {
	return validateStrictCoordinates(r.StaffID, r.Lat, r.Lng)
}

// UpdateLocationRequest accepts out-of-range coordinates; they are recorded and flagged as spoofed.
type UpdateLocationRequest struct {
	StaffID   string   `json:"-"`
	CompanyID string   `json:"-"`
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
	Accuracy  *float64 `json:"accuracy"`
	Speed     *float64 `json:"speed"`
}

func (r *UpdateLocationRequest) Validate() error {
	if validator.IsEmpty(r.StaffID) {
		return user.ErrStaffIDRequired
	}
	if r.Lat == nil || r.Lng == nil {
		return ErrInvalidCoordinates
	}
	var errs validator.ValidationErrors
	if r.Accuracy != nil && *r.Accuracy < 0 {
		errs.Add("accuracy", "accuracy must not be negative")
	}
	if r.Speed != nil && *r.Speed < 0 {
		errs.Add("speed", "speed must not be negative")
	}
	return errs.Err()
}

type VerifyLocationRequest struct {
	CompanyID string   `json:"-"`
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
}

func (r *VerifyLocationRequest) Validate() error {
	if r.Lat == nil || r.Lng == nil {
		return ErrInvalidCoordinates
	}
	return nil
}

func validateStrictCoordinates(staffID string, lat, lng *float64) error {
	if validator.IsEmpty(staffID) {
		return user.ErrStaffIDRequired
	}
	if lat == nil || lng == nil || !geo.IsValidCoordinate(*lat, *lng) {
		return ErrInvalidCoordinates
	}
	return nil
}

// ========================================
// RESPONSES
// ========================================

// SessionRecord is the wire shape of a session in check-in, check-out, route and history responses.
type SessionRecord struct {
	ID                 string       `json:"id"`
	StaffID            string       `json:"staffId"`
	CompanyID          string       `json:"companyId"`
	Date               string       `json:"date,omitempty"`
	CheckIn            time.Time    `json:"checkIn"`
	CheckOut           *time.Time   `json:"checkOut"`
	TotalHours         *float64     `json:"totalHours"`
	Status             string       `json:"status"`
	CheckInLocation    Location     `json:"checkInLocation"`
	CheckOutLocation   *Location    `json:"checkOutLocation"`
	RoutePoints        []RoutePoint `json:"routePoints"`
	IsSpoofed          bool         `json:"isSpoofed"`
	SpoofReason        *string      `json:"spoofReason"`
	AutoCheckOut       bool         `json:"autoCheckOut"`
	AutoCheckOutReason *string      `json:"autoCheckOutReason"`
}

func NewSessionRecord(s Session) SessionRecord {
	route := s.Route
	if route == nil {
		route = []RoutePoint{}
	}
	return SessionRecord{
		ID:                 s.ID,
		StaffID:            s.StaffID,
		CompanyID:          s.CompanyID,
		CheckIn:            s.CheckInTime,
		CheckOut:           s.CheckOutTime,
		TotalHours:         s.TotalHours,
		Status:             s.Status,
		CheckInLocation:    s.CheckInLocation,
		CheckOutLocation:   s.CheckOutLocation,
		RoutePoints:        route,
		IsSpoofed:          s.IsSpoofed,
		SpoofReason:        s.SpoofReason,
		AutoCheckOut:       s.AutoCheckOut,
		AutoCheckOutReason: s.AutoCheckOutReason,
	}
}

// ToSession converts a record back into a Session.
func (r SessionRecord) ToSession() Session {
	return Session{
		ID:                 r.ID,
		StaffID:            r.StaffID,
		CompanyID:          r.CompanyID,
		CheckInTime:        r.CheckIn,
		CheckOutTime:       r.CheckOut,
		CheckInLocation:    r.CheckInLocation,
		CheckOutLocation:   r.CheckOutLocation,
		Route:              r.RoutePoints,
		IsSpoofed:          r.IsSpoofed,
		SpoofReason:        r.SpoofReason,
		TotalHours:         r.TotalHours,
		Status:             r.Status,
		AutoCheckOut:       r.AutoCheckOut,
		AutoCheckOutReason: r.AutoCheckOutReason,
	}
}

type LocationUpdateResponse struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	IsSpoof bool    `json:"isSpoof"`
}

type HistoryResponse struct {
	TotalCount int64           `json:"totalCount"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"totalPages"`
	Records    []SessionRecord `json:"records"`
}

type VerifyLocationResponse struct {
	Valid             bool   `json:"valid"`
	IsSpoof           bool   `json:"isSpoof"`
	WithinAllowedArea *bool  `json:"withinAllowedArea,omitempty"`
	City              string `json:"city,omitempty"`
	Message           string `json:"message"`
}
