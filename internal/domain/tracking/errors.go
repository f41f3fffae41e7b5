package tracking

import "errors"

var (
	ErrForbidden = errors.New("live tracking is not available for this role")
)
