package staff

import (
	"github.com/cmlabs-hris/geoattend-backend-go/internal/pkg/validator"
)

type UpdateSettingsRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Shift *Shift  `json:"shift"`
}

func (r *UpdateSettingsRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs.Add("name", "name must not be empty")
	}
	if r.Name != nil && len(*r.Name) > 255 {
		errs.Add("name", "name must not exceed 255 characters")
	}
	if r.Phone != nil && len(*r.Phone) > 32 {
		errs.Add("phone", "phone must not exceed 32 characters")
	}
	if r.Shift != nil {
		if !validator.IsValidTimeOfDay(r.Shift.StartTime) {
			errs.Add("shift.startTime", "startTime must be in HH:MM format")
		}
		if !validator.IsValidTimeOfDay(r.Shift.EndTime) {
			errs.Add("shift.endTime", "endTime must be in HH:MM format")
		}
	}

	return errs.Err()
}

type SettingsResponse struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Email            string  `json:"email"`
	Phone            *string `json:"phone"`
	Shift            Shift   `json:"shift"`
	SpoofingDetected bool    `json:"spoofingDetected"`
}

func NewSettingsResponse(s Staff) SettingsResponse {
	return SettingsResponse{
		ID:               s.ID,
		Name:             s.Name,
		Email:            s.Email,
		Phone:            s.Phone,
		Shift:            s.ShiftOrDefault(),
		SpoofingDetected: s.SpoofingDetected,
	}
}
