package staff

import (
	"context"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/user"
)

type StaffService interface {
	GetSettings(ctx context.Context, actor user.Actor) (SettingsResponse, error)
	UpdateSettings(ctx context.Context, actor user.Actor, req UpdateSettingsRequest) (SettingsResponse, error)

	// ClearSpoofFlag resets the sticky spoofing flag. Only operators of the
	// staff member's company or platform admins may do this.
	ClearSpoofFlag(ctx context.Context, actor user.Actor, staffID string) error
}
