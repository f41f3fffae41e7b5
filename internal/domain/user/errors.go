package user

import "errors"

var (
	ErrInvalidToken            = errors.New("invalid or missing access token")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrCompanyIDRequired       = errors.New("company ID is required")
	ErrStaffIDRequired         = errors.New("staff ID is required")
	ErrForbiddenCompany        = errors.New("access to this company is not allowed")
)
