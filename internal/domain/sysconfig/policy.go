package sysconfig

import "time"

// Policy is a fully resolved configuration. Every field is set.
type Policy struct {
	Holidays                    []Holiday
	WorkWeekDays                []string
	EnableFakeLocationDetection bool
	LocationTrackingInterval    int
	AutoCheckoutInactivity      int
	StaffLimitPerCompany        int
	Location                    *time.Location

	ThemeColor string
	DateFormat string
	TimeFormat string
}

// DefaultPolicy is used when neither a company nor an admin config exists.
func DefaultPolicy(loc *time.Location) Policy {
	if loc == nil {
		loc = time.UTC
	}
	return Policy{
		Holidays:                    []Holiday{},
		WorkWeekDays:                DefaultWorkWeekDays(),
		EnableFakeLocationDetection: DefaultFakeLocationDetection,
		LocationTrackingInterval:    DefaultLocationTrackingInterval,
		AutoCheckoutInactivity:      DefaultAutoCheckoutInactivity,
		StaffLimitPerCompany:        DefaultStaffLimitPerCompany,
		Location:                    loc,
		ThemeColor:                  DefaultThemeColor,
		DateFormat:                  DefaultDateFormat,
		TimeFormat:                  DefaultTimeFormat,
	}
}

// Overlay returns p with every set field of cfg applied on top.
func (p Policy) Overlay(cfg SystemConfig) Policy {
	if cfg.Holidays != nil {
		p.Holidays = cfg.Holidays
	}
	if cfg.WorkWeekDays != nil {
		p.WorkWeekDays = cfg.WorkWeekDays
	}
	if cfg.EnableFakeLocationDetection != nil {
		p.EnableFakeLocationDetection = *cfg.EnableFakeLocationDetection
	}
	if cfg.LocationTrackingInterval != nil && *cfg.LocationTrackingInterval > 0 {
		p.LocationTrackingInterval = *cfg.LocationTrackingInterval
	}
	if cfg.AutoCheckoutInactivity != nil && *cfg.AutoCheckoutInactivity > 0 {
		p.AutoCheckoutInactivity = *cfg.AutoCheckoutInactivity
	}
	if cfg.StaffLimitPerCompany != nil && *cfg.StaffLimitPerCompany > 0 {
		p.StaffLimitPerCompany = *cfg.StaffLimitPerCompany
	}
	if cfg.Timezone != nil {
		if loc, err := time.LoadLocation(*cfg.Timezone); err == nil {
			p.Location = loc
		}
	}
	if cfg.ThemeColor != nil {
		p.ThemeColor = *cfg.ThemeColor
	}
	if cfg.DateFormat != nil {
		p.DateFormat = *cfg.DateFormat
	}
	if cfg.TimeFormat != nil {
		p.TimeFormat = *cfg.TimeFormat
	}
	return p
}

// Holiday returns the holiday that falls on t's calendar day in the policy timezone.
func (p Policy) Holiday(t time.Time) (Holiday, bool) {
	day := t.In(p.location()).Format("2006-01-02")
	for _, h := range p.Holidays {
		if h.Date == day {
			return h, true
		}
	}
	return Holiday{}, false
}

// IsWorkday reports whether t's weekday (policy timezone) is in the work week.
func (p Policy) IsWorkday(t time.Time) bool {
	day := t.In(p.location()).Format("Mon")
	for _, d := range p.WorkWeekDays {
		if d == day {
			return true
		}
	}
	return false
}

// InactivityLimit is AutoCheckoutInactivity as a duration.
func (p Policy) InactivityLimit() time.Duration {
	return time.Duration(p.AutoCheckoutInactivity) * time.Minute
}

// DayBounds returns [start of day, start of next day) for t in the policy timezone.
func (p Policy) DayBounds(t time.Time) (time.Time, time.Time) {
	local := t.In(p.location())
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
	return start, start.AddDate(0, 0, 1)
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}
