package report

import (
	"time"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/pkg/validator"
)

type RangeType string

const (
	RangeDaily   RangeType = "daily"
	RangeWeekly  RangeType = "weekly"
	RangeMonthly RangeType = "monthly"
	RangeYearly  RangeType = "yearly"
)

const ExportExcel = "excel"

// Staff status labels, taken from the newest session in range.
const (
	StatusCheckedIn    = "Checked In"
	StatusCheckedOut   = "Checked Out"
	StatusNotCheckedIn = "Not Checked In"
)

const NotAvailable = "N/A"

// ========================================
// STAFF ATTENDANCE REPORT
// ========================================

// ReportRequest selects a date range by preset or explicit dates. Explicit
// dates win over RangeType; with neither, the report covers all time.
type ReportRequest struct {
	RangeType RangeType `json:"rangeType"`
	StartDate string    `json:"startDate"`
	EndDate   string    `json:"endDate"`
	CompanyID *string   `json:"companyId"`
	StaffID   *string   `json:"staffId"`
	Export    string    `json:"export"`
}

func (r *ReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.RangeType != "" && !validator.IsInSlice(string(r.RangeType),
		[]string{string(RangeDaily), string(RangeWeekly), string(RangeMonthly), string(RangeYearly)}) {
		errs.Add("rangeType", ErrInvalidRangeType.Error())
	}
	if r.CompanyID != nil && !validator.IsValidUUID(*r.CompanyID) {
		errs.Add("companyId", "companyId must be a valid UUID")
	}
	if r.StaffID != nil && !validator.IsValidUUID(*r.StaffID) {
		errs.Add("staffId", "staffId must be a valid UUID")
	}
	if r.Export != "" && r.Export != ExportExcel {
		errs.Add("export", "export must be excel")
	}

	if r.StartDate != "" || r.EndDate != "" {
		start, startOK := validator.IsValidDate(r.StartDate)
		if !startOK {
			errs.Add("startDate", "startDate must be in YYYY-MM-DD format")
		}
		end, endOK := validator.IsValidDate(r.EndDate)
		if !endOK {
			errs.Add("endDate", "endDate must be in YYYY-MM-DD format")
		}
		if startOK && endOK && start.After(end) {
			errs.Add("endDate", ErrInvalidDateRange.Error())
		}
	}

	return errs.Err()
}

// HasExplicitDates reports whether both StartDate and EndDate are set.
func (r *ReportRequest) HasExplicitDates() bool {
	return r.StartDate != "" && r.EndDate != ""
}

type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type CompanySummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StaffRow is one line of the report and one row of the exported sheet.
type StaffRow struct {
	StaffID       string `json:"staffId"`
	StaffName     string `json:"staffName"`
	StaffEmail    string `json:"staffEmail"`
	StaffPhone    string `json:"staffPhone"`
	Company       string `json:"company"`
	TotalCheckIns int    `json:"totalCheckIns"`
	Spoofed       int    `json:"spoofed"`
	WorkingHours  string `json:"workingHours"`
	Status        string `json:"status"`
}

type StaffReport struct {
	Range       DateRange        `json:"range"`
	Companies   []CompanySummary `json:"companies"`
	Staffs      int              `json:"staffs"`
	Attendance  []StaffRow       `json:"attendance"`
	GeneratedAt string           `json:"generatedAt"`
}

// ExcelFile is a rendered workbook ready to be streamed.
type ExcelFile struct {
	FileName string
	Content  []byte
}
