package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/staff"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/sysconfig"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/tracking"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/pkg/validator"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// errorMappings is checked in order with errors.Is. The domain error text is the message.
var errorMappings = []errorMapping{
	// Attendance policy
	{attendance.ErrHolidayBlocked, http.StatusBadRequest, "HOLIDAY_BLOCKED"},
	{attendance.ErrNonWorkingDay, http.StatusBadRequest, "NON_WORKING_DAY"},
	{attendance.ErrOnApprovedLeave, http.StatusBadRequest, "ON_APPROVED_LEAVE"},
	{attendance.ErrOutsideAllowedArea, http.StatusBadRequest, "OUTSIDE_ALLOWED_AREA"},
	{attendance.ErrNotCheckedIn, http.StatusBadRequest, "NOT_CHECKED_IN"},
	{attendance.ErrNoActiveSession, http.StatusBadRequest, "NO_ACTIVE_SESSION"},
	{attendance.ErrAlreadyCheckedIn, http.StatusConflict, "ALREADY_CHECKED_IN"},
	{attendance.ErrInvalidCoordinates, http.StatusBadRequest, "INVALID_COORDINATES"},
	{attendance.ErrSessionNotFound, http.StatusNotFound, "SESSION_NOT_FOUND"},
	{attendance.ErrSessionClosed, http.StatusConflict, "SESSION_CLOSED"},
	{attendance.ErrInconsistentState, http.StatusInternalServerError, "INCONSISTENT_STATE"},

	// Identity
	{user.ErrInvalidToken, http.StatusUnauthorized, "UNAUTHORIZED"},
	{user.ErrInsufficientPermissions, http.StatusForbidden, "FORBIDDEN"},
	{user.ErrForbiddenCompany, http.StatusForbidden, "FORBIDDEN"},
	{user.ErrCompanyIDRequired, http.StatusForbidden, "COMPANY_ID_REQUIRED"},
	{user.ErrStaffIDRequired, http.StatusForbidden, "STAFF_ID_REQUIRED"},

	// Staff and company
	{staff.ErrStaffNotFound, http.StatusNotFound, "STAFF_NOT_FOUND"},
	{staff.ErrUnauthorized, http.StatusForbidden, "FORBIDDEN"},
	{staff.ErrActiveSessionExists, http.StatusConflict, "ALREADY_CHECKED_IN"},
	{company.ErrCompanyNotFound, http.StatusNotFound, "COMPANY_NOT_FOUND"},

	// Leave
	{leave.ErrLeaveRequestNotFound, http.StatusNotFound, "LEAVE_NOT_FOUND"},
	{leave.ErrLeaveRequestAlreadyProcessed, http.StatusConflict, "LEAVE_ALREADY_PROCESSED"},
	{leave.ErrCannotDeleteProcessed, http.StatusConflict, "LEAVE_ALREADY_PROCESSED"},
	{leave.ErrInvalidDateRange, http.StatusBadRequest, "INVALID_DATE_RANGE"},
	{leave.ErrUnauthorized, http.StatusForbidden, "FORBIDDEN"},

	// System configuration
	{sysconfig.ErrConfigNotFound, http.StatusNotFound, "CONFIG_NOT_FOUND"},
	{sysconfig.ErrAdminOnlySetting, http.StatusForbidden, "ADMIN_ONLY_SETTING"},
	{sysconfig.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},

	// Live tracking
	{tracking.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},

	// Reports
	{report.ErrInvalidRangeType, http.StatusBadRequest, "INVALID_RANGE_TYPE"},
	{report.ErrInvalidDateRange, http.StatusBadRequest, "INVALID_DATE_RANGE"},
	{report.ErrNoCompaniesFound, http.StatusNotFound, "NO_COMPANIES_FOUND"},
	{report.ErrNoStaffFound, http.StatusNotFound, "NO_STAFF_FOUND"},
	{report.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{report.ErrReportGenerationFailed, http.StatusInternalServerError, "REPORT_GENERATION_FAILED"},
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			message := m.err.Error()
			if m.status >= http.StatusInternalServerError {
				slog.Error("request failed", "code", m.code, "error", err)
			}
			Fail(w, m.status, m.code, message, nil)
			return
		}
	}

	slog.Error("unhandled error", "error", err)
	InternalServerError(w, "An unexpected error occurred")
}
