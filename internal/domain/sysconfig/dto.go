package sysconfig

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/pkg/validator"
)

type UpdateSystemConfigRequest struct {
	ThemeColor                  *string    `json:"themeColor"`
	DateFormat                  *string    `json:"dateFormat"`
	TimeFormat                  *string    `json:"timeFormat"`
	Holidays                    *[]Holiday `json:"holidays"`
	WorkWeekDays                *[]string  `json:"workWeekDays"`
	EnableFakeLocationDetection *bool      `json:"enableFakeLocationDetection"`
	AutoCheckoutInactivity      *int       `json:"autoCheckoutInactivity"`
	Timezone                    *string    `json:"timezone"`

	// Admin only
	LocationTrackingInterval *int `json:"locationTrackingInterval"`
	StaffLimitPerCompany     *int `json:"staffLimitPerCompany"`
}

func (r *UpdateSystemConfigRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.ThemeColor != nil && !validator.IsValidHexColor(*r.ThemeColor) {
		errs.Add("themeColor", "themeColor must be a HEX color such as #0d6efd")
	}
	if r.DateFormat != nil && !validator.IsInSlice(*r.DateFormat, DateFormats) {
		errs.Add("dateFormat", fmt.Sprintf("dateFormat must be one of %v", DateFormats))
	}
	if r.TimeFormat != nil && !validator.IsInSlice(*r.TimeFormat, TimeFormats) {
		errs.Add("timeFormat", fmt.Sprintf("timeFormat must be one of %v", TimeFormats))
	}
	if r.Holidays != nil {
		for i, h := range *r.Holidays {
			if _, ok := validator.IsValidDate(h.Date); !ok {
				errs.Add(fmt.Sprintf("holidays[%d].date", i), "date must be in YYYY-MM-DD format")
			}
		}
	}
	if r.WorkWeekDays != nil {
		for _, d := range *r.WorkWeekDays {
			if !validator.IsValidWeekday(d) {
				errs.Add("workWeekDays", fmt.Sprintf("invalid weekday %q, use Mon..Sun", d))
				break
			}
		}
	}
	if r.AutoCheckoutInactivity != nil && *r.AutoCheckoutInactivity < 1 {
		errs.Add("autoCheckoutInactivity", "autoCheckoutInactivity must be at least 1 minute")
	}
	if r.Timezone != nil && !validator.IsValidTimezone(*r.Timezone) {
		errs.Add("timezone", "timezone must be a valid IANA name")
	}
	if r.LocationTrackingInterval != nil &&
		(*r.LocationTrackingInterval < MinLocationTrackingInterval || *r.LocationTrackingInterval > MaxLocationTrackingInterval) {
		errs.Add("locationTrackingInterval", "Invalid GPS interval: must be between 1 and 60 minutes")
	}
	if r.StaffLimitPerCompany != nil && *r.StaffLimitPerCompany < 1 {
		errs.Add("staffLimitPerCompany", "staffLimitPerCompany must be at least 1")
	}

	return errs.Err()
}

// HasAdminOnlyFields reports whether the request touches settings reserved for administrators.
func (r *UpdateSystemConfigRequest) HasAdminOnlyFields() bool {
	return r.LocationTrackingInterval != nil || r.StaffLimitPerCompany != nil
}

// Apply writes the set fields of r onto cfg.
func (r *UpdateSystemConfigRequest) Apply(cfg *SystemConfig) {
	if r.ThemeColor != nil {
		cfg.ThemeColor = r.ThemeColor
	}
	if r.DateFormat != nil {
		cfg.DateFormat = r.DateFormat
	}
	if r.TimeFormat != nil {
		cfg.TimeFormat = r.TimeFormat
	}
	if r.Holidays != nil {
		cfg.Holidays = *r.Holidays
	}
	if r.WorkWeekDays != nil {
		cfg.WorkWeekDays = *r.WorkWeekDays
	}
	if r.EnableFakeLocationDetection != nil {
		cfg.EnableFakeLocationDetection = r.EnableFakeLocationDetection
	}
	if r.AutoCheckoutInactivity != nil {
		cfg.AutoCheckoutInactivity = r.AutoCheckoutInactivity
	}
	if r.Timezone != nil {
		cfg.Timezone = r.Timezone
	}
	if r.LocationTrackingInterval != nil {
		cfg.LocationTrackingInterval = r.LocationTrackingInterval
	}
	if r.StaffLimitPerCompany != nil {
		cfg.StaffLimitPerCompany = r.StaffLimitPerCompany
	}
}

// SystemConfigResponse shows the effective values for the caller's scope.
type SystemConfigResponse struct {
	ID                          string     `json:"id"`
	Type                        ConfigType `json:"type"`
	CompanyID                   *string    `json:"companyId,omitempty"`
	Holidays                    []Holiday  `json:"holidays"`
	WorkWeekDays                []string   `json:"workWeekDays"`
	EnableFakeLocationDetection bool       `json:"enableFakeLocationDetection"`
	LocationTrackingInterval    int        `json:"locationTrackingInterval"`
	AutoCheckoutInactivity      int        `json:"autoCheckoutInactivity"`
	StaffLimitPerCompany        int        `json:"staffLimitPerCompany"`
	Timezone                    string     `json:"timezone"`
	ThemeColor                  string     `json:"themeColor"`
	DateFormat                  string     `json:"dateFormat"`
	TimeFormat                  string     `json:"timeFormat"`
	CreatedAt                   time.Time  `json:"createdAt"`
	UpdatedAt                   time.Time  `json:"updatedAt"`
}

// NewSystemConfigResponse renders cfg with its effective policy values.
func NewSystemConfigResponse(cfg SystemConfig, effective Policy) SystemConfigResponse {
	return SystemConfigResponse{
		ID:                          cfg.ID,
		Type:                        cfg.Type,
		CompanyID:                   cfg.CompanyID,
		Holidays:                    effective.Holidays,
		WorkWeekDays:                effective.WorkWeekDays,
		EnableFakeLocationDetection: effective.EnableFakeLocationDetection,
		LocationTrackingInterval:    effective.LocationTrackingInterval,
		AutoCheckoutInactivity:      effective.AutoCheckoutInactivity,
		StaffLimitPerCompany:        effective.StaffLimitPerCompany,
		Timezone:                    effective.Location.String(),
		ThemeColor:                  effective.ThemeColor,
		DateFormat:                  effective.DateFormat,
		TimeFormat:                  effective.TimeFormat,
		CreatedAt:                   cfg.CreatedAt,
		UpdatedAt:                   cfg.UpdatedAt,
	}
}

// ConfigEcho is the subset of the policy returned alongside live locations.
type ConfigEcho struct {
	ThemeColor                  string    `json:"themeColor"`
	DateFormat                  string    `json:"dateFormat"`
	TimeFormat                  string    `json:"timeFormat"`
	Holidays                    []Holiday `json:"holidays"`
	WorkWeekDays                []string  `json:"workWeekDays"`
	LocationTrackingInterval    int       `json:"locationTrackingInterval"`
	StaffLimitPerCompany        int       `json:"staffLimitPerCompany"`
	EnableFakeLocationDetection bool      `json:"enableFakeLocationDetection"`
}

func NewConfigEcho(p Policy) ConfigEcho {
	return ConfigEcho{
		ThemeColor:                  p.ThemeColor,
		DateFormat:                  p.DateFormat,
		TimeFormat:                  p.TimeFormat,
		Holidays:                    p.Holidays,
		WorkWeekDays:                p.WorkWeekDays,
		LocationTrackingInterval:    p.LocationTrackingInterval,
		StaffLimitPerCompany:        p.StaffLimitPerCompany,
		EnableFakeLocationDetection: p.EnableFakeLocationDetection,
	}
}
