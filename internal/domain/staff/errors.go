package staff

import "errors"

var (
	ErrStaffNotFound       = errors.New("staff not found")
	ErrActiveSessionExists = errors.New("staff already has an active session")
	ErrUnauthorized        = errors.New("unauthorized to access this staff member")
)
