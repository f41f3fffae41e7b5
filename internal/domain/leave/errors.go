package leave

import "errors"

var (
	ErrLeaveRequestNotFound         = errors.New("leave request not found")
	ErrLeaveRequestAlreadyProcessed = errors.New("leave already processed")
	ErrInvalidDateRange             = errors.New("start date cannot be after end date")
	ErrUnauthorized                 = errors.New("unauthorized to access this leave request")
	ErrCannotDeleteProcessed        = errors.New("only pending leave requests can be deleted")
)
