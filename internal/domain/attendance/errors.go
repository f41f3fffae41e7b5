package attendance

import "errors"

// Attendance domain errors
var (
	// Input validation
	ErrInvalidCoordinates = errors.New("invalid coordinates")

	// Policy violations
	ErrHolidayBlocked     = errors.New("today is a holiday")
	ErrNonWorkingDay      = errors.New("today is not a working day")
	ErrOnApprovedLeave    = errors.New("you are on approved leave today")
	ErrOutsideAllowedArea = errors.New("out of allowed area")
	ErrAlreadyCheckedIn   = errors.New("already checked in")
	ErrNotCheckedIn       = errors.New("not checked in")
	ErrNoActiveSession    = errors.New("no active check-in")

	// Storage and integrity
	ErrSessionNotFound   = errors.New("attendance session not found")
	ErrSessionClosed     = errors.New("attendance session is already closed")
	ErrInconsistentState = errors.New("attendance state is inconsistent")
)
