package leave

import (
	"context"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/user"
)

type LeaveService interface {
	// RequestLeave files a PENDING leave for the calling staff member.
	RequestLeave(ctx context.Context, actor user.Actor, req CreateLeaveRequest) (LeaveResponse, error)

	// MyLeaves lists the calling staff member's leaves, newest first.
	MyLeaves(ctx context.Context, actor user.Actor, page, limit int) (ListLeaveResponse, error)

	// ListRequests lists leaves visible to a company or platform admin.
	ListRequests(ctx context.Context, actor user.Actor, filter ListLeaveFilter) (ListLeaveResponse, error)

	UpdateStatus(ctx context.Context, actor user.Actor, req UpdateLeaveStatusRequest) (LeaveResponse, error)

	// Delete removes a leave. Staff may only delete their own pending leaves.
	Delete(ctx context.Context, actor user.Actor, id string) error
}
