package report

import "errors"

var (
	ErrInvalidRangeType       = errors.New("rangeType must be daily, weekly, monthly or yearly")
	ErrInvalidDateRange       = errors.New("end date must be after start date")
	ErrNoCompaniesFound       = errors.New("no companies found")
	ErrNoStaffFound           = errors.New("no staff found")
	ErrForbidden              = errors.New("reports are not available for this role")
	ErrReportGenerationFailed = errors.New("failed to generate report")
)
