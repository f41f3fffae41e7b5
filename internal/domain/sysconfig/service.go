package sysconfig

import (
	"context"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/user"
)

// Resolver turns an actor into an effective Policy. It never fails: missing or
// unreadable configs fall back to defaults.
type Resolver interface {
	Resolve(ctx context.Context, role user.Role, companyID string) Policy
}

type SystemConfigService interface {
	Resolver

	// Get returns the caller's config, creating it with defaults when absent.
	Get(ctx context.Context, actor user.Actor) (SystemConfigResponse, error)

	Update(ctx context.Context, actor user.Actor, req UpdateSystemConfigRequest) (SystemConfigResponse, error)
}
