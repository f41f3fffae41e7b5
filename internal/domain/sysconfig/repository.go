package sysconfig

import "context"

type SystemConfigRepository interface {
	// GetAdmin returns the global config or ErrConfigNotFound.
	GetAdmin(ctx context.Context) (SystemConfig, error)

	// GetByCompanyID returns the company config or ErrConfigNotFound.
	GetByCompanyID(ctx context.Context, companyID string) (SystemConfig, error)

	// Upsert inserts or replaces the config identified by Type and CompanyID.
	Upsert(ctx context.Context, cfg SystemConfig) (SystemConfig, error)
}
