package leave

import (
	"time"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/pkg/validator"
)

type CreateLeaveRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Reason    string `json:"reason"`
}

func (r *CreateLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs.Add("startDate", "startDate is required in YYYY-MM-DD format")
	}
	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs.Add("endDate", "endDate is required in YYYY-MM-DD format")
	}
	if len(r.Reason) > 1000 {
		errs.Add("reason", "reason must not exceed 1000 characters")
	}
	if err := errs.Err(); err != nil {
		return err
	}

	if start.After(end) {
		return ErrInvalidDateRange
	}
	return nil
}

type UpdateLeaveStatusRequest struct {
	LeaveID string `json:"leaveId"`
	Status  Status `json:"status"`
}

func (r *UpdateLeaveStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.LeaveID) {
		errs.Add("leaveId", "leaveId is required")
	}
	if r.Status != StatusApproved && r.Status != StatusRejected {
		errs.Add("status", "status must be APPROVED or REJECTED")
	}

	return errs.Err()
}

type ListLeaveFilter struct {
	CompanyID *string
	StaffID   *string
	Status    *Status
	Page      int
	Limit     int
}

type LeaveResponse struct {
	ID         string     `json:"id"`
	StaffID    string     `json:"staffId"`
	StaffName  string     `json:"staffName,omitempty"`
	CompanyID  string     `json:"companyId"`
	StartDate  string     `json:"startDate"`
	EndDate    string     `json:"endDate"`
	Reason     string     `json:"reason"`
	Status     Status     `json:"status"`
	ReviewedBy *string    `json:"reviewedBy,omitempty"`
	ReviewedAt *time.Time `json:"reviewedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func NewLeaveResponse(l Leave) LeaveResponse {
	return LeaveResponse{
		ID:         l.ID,
		StaffID:    l.StaffID,
		CompanyID:  l.CompanyID,
		StartDate:  l.StartDate.Format("2006-01-02"),
		EndDate:    l.EndDate.Format("2006-01-02"),
		Reason:     l.Reason,
		Status:     l.Status,
		ReviewedBy: l.ReviewedBy,
		ReviewedAt: l.ReviewedAt,
		CreatedAt:  l.CreatedAt,
	}
}

type ListLeaveResponse struct {
	TotalCount int64           `json:"totalCount"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"totalPages"`
	Leaves     []LeaveResponse `json:"leaves"`
}
