package staff

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/staff"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/user"
)

type StaffServiceImpl struct {
	staff.StaffRepository
}

func NewStaffService(staffRepo staff.StaffRepository) staff.StaffService {
	return &StaffServiceImpl{StaffRepository: staffRepo}
}

// GetSettings implements staff.StaffService.
func (s *StaffServiceImpl) GetSettings(ctx context.Context, actor user.Actor) (staff.SettingsResponse, error) {
	if !actor.IsStaff() || actor.StaffID == "" {
		return staff.SettingsResponse{}, user.ErrStaffIDRequired
	}

	st, err := s.StaffRepository.GetByID(ctx, actor.StaffID)
	if err != nil {
		return staff.SettingsResponse{}, err
	}
	return staff.NewSettingsResponse(st), nil
}

// UpdateSettings implements staff.StaffService.
func (s *StaffServiceImpl) UpdateSettings(ctx context.Context, actor user.Actor, req staff.UpdateSettingsRequest) (staff.SettingsResponse, error) {
	if !actor.IsStaff() || actor.StaffID == "" {
		return staff.SettingsResponse{}, user.ErrStaffIDRequired
	}
	if err := req.Validate(); err != nil {
		return staff.SettingsResponse{}, err
	}

	if err := s.StaffRepository.UpdateSettings(ctx, actor.StaffID, req); err != nil {
		return staff.SettingsResponse{}, fmt.Errorf("failed to update staff settings: %w", err)
	}

	st, err := s.StaffRepository.GetByID(ctx, actor.StaffID)
	if err != nil {
		return staff.SettingsResponse{}, fmt.Errorf("failed to get updated staff: %w", err)
	}
	return staff.NewSettingsResponse(st), nil
}

// ClearSpoofFlag implements staff.StaffService.
func (s *StaffServiceImpl) ClearSpoofFlag(ctx context.Context, actor user.Actor, staffID string) error {
	if !user.HasPermission(actor.Role, user.PermissionSpoofFlagClear) {
		return user.ErrInsufficientPermissions
	}

	st, err := s.StaffRepository.GetByID(ctx, staffID)
	if err != nil {
		return err
	}
	if !actor.CanAccessCompany(st.CompanyID) {
		return staff.ErrUnauthorized
	}
	if !st.SpoofingDetected {
		return nil
	}

	if err := s.StaffRepository.SetSpoofingDetected(ctx, staffID, false); err != nil {
		return fmt.Errorf("failed to clear spoofing flag: %w", err)
	}
	slog.Info("spoofing flag cleared", "staff_id", staffID, "cleared_by", actor.UserID)
	return nil
}
