package sysconfig

import "time"

type ConfigType string

const (
	ConfigTypeAdmin   ConfigType = "admin"
	ConfigTypeCompany ConfigType = "company"
)

const (
	DefaultLocationTrackingInterval = 5
	DefaultStaffLimitPerCompany     = 50
	DefaultAutoCheckoutInactivity   = 30
	DefaultFakeLocationDetection    = true
	DefaultThemeColor               = "#0d6efd"
	DefaultDateFormat               = "DD-MM-YYYY"
	DefaultTimeFormat               = "24-hour"

	MinLocationTrackingInterval = 1
	MaxLocationTrackingInterval = 60
)

var (
	DateFormats = []string{"DD-MM-YYYY", "MM-DD-YYYY"}
	TimeFormats = []string{"12-hour", "24-hour"}
)

// DefaultWorkWeekDays is Monday through Friday.
func DefaultWorkWeekDays() []string {
	return []string{"Mon", "Tue", "Wed", "Thu", "Fri"}
}

// Holiday is a calendar date ("YYYY-MM-DD") on which attendance is closed.
type Holiday struct {
	Date        string `json:"date"`
	Description string `json:"description"`
}

// SystemConfig is a stored configuration document. Nil fields are unset and
// inherit from the admin config, then from the package defaults.
type SystemConfig struct {
	ID        string
	Type      ConfigType
	CompanyID *string

	Holidays                    []Holiday
	WorkWeekDays                []string
	EnableFakeLocationDetection *bool
	LocationTrackingInterval    *int
	AutoCheckoutInactivity      *int
	StaffLimitPerCompany        *int
	Timezone                    *string

	ThemeColor *string
	DateFormat *string
	TimeFormat *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
