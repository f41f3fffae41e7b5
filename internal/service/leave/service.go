package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/staff"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/user"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

type LeaveServiceImpl struct {
	leave.LeaveRepository
	staff.StaffRepository
	now func() time.Time
}

func NewLeaveService(leaveRepo leave.LeaveRepository, staffRepo staff.StaffRepository) leave.LeaveService {
	return &LeaveServiceImpl{
		LeaveRepository: leaveRepo,
		StaffRepository: staffRepo,
		now:             time.Now,
	}
}

// RequestLeave implements leave.LeaveService.
func (l *LeaveServiceImpl) RequestLeave(ctx context.Context, actor user.Actor, req leave.CreateLeaveRequest) (leave.LeaveResponse, error) {
	if !actor.IsStaff() {
		return leave.LeaveResponse{}, user.ErrInsufficientPermissions
	}
	if err := req.Validate(); err != nil {
		return leave.LeaveResponse{}, err
	}

	st, err := l.StaffRepository.GetByID(ctx, actor.StaffID)
	if err != nil {
		return leave.LeaveResponse{}, fmt.Errorf("failed to get staff: %w", err)
	}

	// Validate already checked the format.
	start, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = leave.DefaultReason
	}

	created, err := l.LeaveRepository.Create(ctx, leave.Leave{
		StaffID:   st.ID,
		CompanyID: st.CompanyID,
		StartDate: start,
		EndDate:   end,
		Reason:    reason,
		Status:    leave.StatusPending,
	})
	if err != nil {
		return leave.LeaveResponse{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	resp := leave.NewLeaveResponse(created)
	resp.StaffName = st.Name
	return resp, nil
}

// MyLeaves implements leave.LeaveService.
func (l *LeaveServiceImpl) MyLeaves(ctx context.Context, actor user.Actor, page, limit int) (leave.ListLeaveResponse, error) {
	if !actor.IsStaff() || actor.StaffID == "" {
		return leave.ListLeaveResponse{}, user.ErrStaffIDRequired
	}
	return l.list(ctx, leave.ListLeaveFilter{StaffID: &actor.StaffID, Page: page, Limit: limit})
}

// ListRequests implements leave.LeaveService.
func (l *LeaveServiceImpl) ListRequests(ctx context.Context, actor user.Actor, filter leave.ListLeaveFilter) (leave.ListLeaveResponse, error) {
	switch {
	case actor.IsPlatformAdmin():
	case actor.IsCompany():
		if actor.CompanyID == "" {
			return leave.ListLeaveResponse{}, user.ErrCompanyIDRequired
		}
		filter.CompanyID = &actor.CompanyID
	default:
		return leave.ListLeaveResponse{}, user.ErrInsufficientPermissions
	}
	return l.list(ctx, filter)
}

func (l *LeaveServiceImpl) list(ctx context.Context, filter leave.ListLeaveFilter) (leave.ListLeaveResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = DefaultPageLimit
	}
	if filter.Limit > MaxPageLimit {
		filter.Limit = MaxPageLimit
	}

	leaves, total, err := l.LeaveRepository.List(ctx, leave.LeaveFilter{
		CompanyID: filter.CompanyID,
		StaffID:   filter.StaffID,
		Status:    filter.Status,
		Offset:    (filter.Page - 1) * filter.Limit,
		Limit:     filter.Limit,
	})
	if err != nil {
		return leave.ListLeaveResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}

	names := make(map[string]string)
	responses := make([]leave.LeaveResponse, 0, len(leaves))
	for _, lv := range leaves {
		resp := leave.NewLeaveResponse(lv)
		name, ok := names[lv.StaffID]
		if !ok {
			if st, err := l.StaffRepository.GetByID(ctx, lv.StaffID); err == nil {
				name = st.Name
			}
			names[lv.StaffID] = name
		}
		resp.StaffName = name
		responses = append(responses, resp)
	}

	return leave.ListLeaveResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Leaves:     responses,
	}, nil
}

// UpdateStatus implements leave.LeaveService.
func (l *LeaveServiceImpl) UpdateStatus(ctx context.Context, actor user.Actor, req leave.UpdateLeaveStatusRequest) (leave.LeaveResponse, error) {
	if !user.HasPermission(actor.Role, user.PermissionLeaveApprove) {
		return leave.LeaveResponse{}, user.ErrInsufficientPermissions
	}
	if err := req.Validate(); err != nil {
		return leave.LeaveResponse{}, err
	}

	existing, err := l.LeaveRepository.GetByID(ctx, req.LeaveID)
	if err != nil {
		return leave.LeaveResponse{}, err
	}
	if !actor.CanAccessCompany(existing.CompanyID) {
		return leave.LeaveResponse{}, leave.ErrUnauthorized
	}
	if existing.Status != leave.StatusPending {
		return leave.LeaveResponse{}, leave.ErrLeaveRequestAlreadyProcessed
	}

	updated, err := l.LeaveRepository.UpdateStatus(ctx, existing.ID, req.Status, actor.UserID, l.now())
	if err != nil {
		if errors.Is(err, leave.ErrLeaveRequestAlreadyProcessed) {
			return leave.LeaveResponse{}, err
		}
		return leave.LeaveResponse{}, fmt.Errorf("failed to update leave status: %w", err)
	}

	slog.Info("leave request reviewed", "leave_id", updated.ID, "status", updated.Status, "reviewer_id", actor.UserID)
	return leave.NewLeaveResponse(updated), nil
}

// Delete implements leave.LeaveService.
func (l *LeaveServiceImpl) Delete(ctx context.Context, actor user.Actor, id string) error {
	if id == "" {
		return leave.ErrLeaveRequestNotFound
	}

	existing, err := l.LeaveRepository.GetByID(ctx, id)
	if err != nil {
		return err
	}

	switch {
	case actor.IsStaff():
		if existing.StaffID != actor.StaffID {
			return leave.ErrUnauthorized
		}
		if existing.Status != leave.StatusPending {
			return leave.ErrCannotDeleteProcessed
		}
	case actor.IsPlatformAdmin(), actor.IsCompany():
		if !actor.CanAccessCompany(existing.CompanyID) {
			return leave.ErrUnauthorized
		}
	default:
		return user.ErrInsufficientPermissions
	}

	if err := l.LeaveRepository.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete leave request: %w", err)
	}
	return nil
}
