package staff

import "time"

// Location is a timestamped coordinate snapshot.
type Location struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Timestamp time.Time `json:"timestamp"`
}

// Shift is the staff member's daily working window in "HH:MM", interpreted in the company timezone.
type Shift struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

const (
	DefaultShiftStart = "09:00"
	DefaultShiftEnd   = "17:00"
)

type Staff struct {
	ID        string
	CompanyID string
	Name      string
	Email     string
	Phone     *string

	// GPSStatus is true while the staff member has an open session.
	GPSStatus bool
	// SpoofingDetected stays true until an operator clears it.
	SpoofingDetected bool

	LastLocation         *Location
	LastCheckInLocation  *Location
	LastCheckOutLocation *Location
	LastCheckIn          *time.Time
	LastCheckOut         *time.Time

	Shift Shift

	// ActiveSessionID points at the open attendance session, nil when checked out.
	ActiveSessionID *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ShiftOrDefault fills unset shift bounds with the 09:00-17:00 default.
func (s Staff) ShiftOrDefault() Shift {
	shift := s.Shift
	if shift.StartTime == "" {
		shift.StartTime = DefaultShiftStart
	}
	if shift.EndTime == "" {
		shift.EndTime = DefaultShiftEnd
	}
	return shift
}

// IsCheckedIn reports whether either half of the checked-in state is set.
func (s Staff) IsCheckedIn() bool {
	return s.GPSStatus || s.ActiveSessionID != nil
}
