package leave

import (
	"context"
	"time"
)

type LeaveFilter struct {
	CompanyID *string
	StaffID   *string
	Status    *Status
	Offset    int
	Limit     int
}

type LeaveRepository interface {
	Create(ctx context.Context, l Leave) (Leave, error)
	GetByID(ctx context.Context, id string) (Leave, error)

	// List returns matching leaves newest first, plus the total count.
	List(ctx context.Context, filter LeaveFilter) ([]Leave, int64, error)

	// UpdateStatus moves a leave from PENDING to status. It returns
	// ErrLeaveRequestAlreadyProcessed when the leave is no longer pending.
	UpdateStatus(ctx context.Context, id string, status Status, reviewerID string, at time.Time) (Leave, error)

	Delete(ctx context.Context, id string) error

	// HasApprovedLeaveOn reports whether an APPROVED leave covers day ("YYYY-MM-DD").
	HasApprovedLeaveOn(ctx context.Context, staffID string, day string) (bool, error)
}
