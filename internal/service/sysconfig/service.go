package sysconfig

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/sysconfig"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/user"
)

type SystemConfigServiceImpl struct {
	sysconfig.SystemConfigRepository
	defaultLocation *time.Location
}

// NewSystemConfigService resolves policies on top of DefaultPolicy(defaultLocation).
func NewSystemConfigService(repo sysconfig.SystemConfigRepository, defaultLocation *time.Location) sysconfig.SystemConfigService {
	if defaultLocation == nil {
		defaultLocation = time.UTC
	}
	return &SystemConfigServiceImpl{
		SystemConfigRepository: repo,
		defaultLocation:        defaultLocation,
	}
}

// Resolve implements sysconfig.Resolver. Admin roles get the global policy;
// everyone else gets company over global over defaults.
func (s *SystemConfigServiceImpl) Resolve(ctx context.Context, role user.Role, companyID string) sysconfig.Policy {
	policy := sysconfig.DefaultPolicy(s.defaultLocation)

	if role == user.RoleAdmin || role == user.RoleAdminStaff {
		admin, err := s.getOrCreate(ctx, sysconfig.ConfigTypeAdmin, nil)
		if err != nil {
			slog.Warn("failed to load admin config, using defaults", "error", err)
			return policy
		}
		return policy.Overlay(admin)
	}

	admin, err := s.SystemConfigRepository.GetAdmin(ctx)
	switch {
	case err == nil:
		policy = policy.Overlay(admin)
	case !errors.Is(err, sysconfig.ErrConfigNotFound):
		slog.Warn("failed to load admin config, using defaults", "error", err)
	}

	if companyID == "" {
		return policy
	}

	cfg, err := s.SystemConfigRepository.GetByCompanyID(ctx, companyID)
	switch {
	case err == nil:
		policy = policy.Overlay(cfg)
	case !errors.Is(err, sysconfig.ErrConfigNotFound):
		slog.Warn("failed to load company config, using global config", "company_id", companyID, "error", err)
	}
	return policy
}

// Get implements sysconfig.SystemConfigService.
func (s *SystemConfigServiceImpl) Get(ctx context.Context, actor user.Actor) (sysconfig.SystemConfigResponse, error) {
	switch {
	case actor.IsPlatformAdmin():
		cfg, err := s.getOrCreate(ctx, sysconfig.ConfigTypeAdmin, nil)
		if err != nil {
			return sysconfig.SystemConfigResponse{}, err
		}
		return sysconfig.NewSystemConfigResponse(cfg, s.Resolve(ctx, actor.Role, "")), nil

	case actor.IsCompany():
		if actor.CompanyID == "" {
			return sysconfig.SystemConfigResponse{}, user.ErrCompanyIDRequired
		}
		cfg, err := s.getOrCreate(ctx, sysconfig.ConfigTypeCompany, &actor.CompanyID)
		if err != nil {
			return sysconfig.SystemConfigResponse{}, err
		}
		return sysconfig.NewSystemConfigResponse(cfg, s.Resolve(ctx, actor.Role, actor.CompanyID)), nil

	case actor.IsStaff():
		if actor.CompanyID == "" {
			return sysconfig.SystemConfigResponse{}, user.ErrCompanyIDRequired
		}
		cfg, err := s.SystemConfigRepository.GetByCompanyID(ctx, actor.CompanyID)
		if err != nil {
			if !errors.Is(err, sysconfig.ErrConfigNotFound) {
				return sysconfig.SystemConfigResponse{}, fmt.Errorf("failed to get company config: %w", err)
			}
			cfg = sysconfig.SystemConfig{Type: sysconfig.ConfigTypeCompany, CompanyID: &actor.CompanyID}
		}
		return sysconfig.NewSystemConfigResponse(cfg, s.Resolve(ctx, actor.Role, actor.CompanyID)), nil
	}

	return sysconfig.SystemConfigResponse{}, sysconfig.ErrForbidden
}

// Update implements sysconfig.SystemConfigService.
func (s *SystemConfigServiceImpl) Update(ctx context.Context, actor user.Actor, req sysconfig.UpdateSystemConfigRequest) (sysconfig.SystemConfigResponse, error) {
	if err := req.Validate(); err != nil {
		return sysconfig.SystemConfigResponse{}, err
	}

	var (
		cfg       sysconfig.SystemConfig
		companyID string
		err       error
	)
	switch actor.Role {
	case user.RoleAdmin:
		cfg, err = s.getOrCreate(ctx, sysconfig.ConfigTypeAdmin, nil)
	case user.RoleCompany:
		if actor.CompanyID == "" {
			return sysconfig.SystemConfigResponse{}, user.ErrCompanyIDRequired
		}
		if req.HasAdminOnlyFields() {
			return sysconfig.SystemConfigResponse{}, sysconfig.ErrAdminOnlySetting
		}
		companyID = actor.CompanyID
		cfg, err = s.getOrCreate(ctx, sysconfig.ConfigTypeCompany, &companyID)
	default:
		return sysconfig.SystemConfigResponse{}, sysconfig.ErrForbidden
	}
	if err != nil {
		return sysconfig.SystemConfigResponse{}, err
	}

	req.Apply(&cfg)
	saved, err := s.SystemConfigRepository.Upsert(ctx, cfg)
	if err != nil {
		return sysconfig.SystemConfigResponse{}, fmt.Errorf("failed to save system config: %w", err)
	}

	slog.Info("system config updated", "type", saved.Type, "company_id", companyID, "user_id", actor.UserID)
	return sysconfig.NewSystemConfigResponse(saved, s.Resolve(ctx, actor.Role, companyID)), nil
}

// getOrCreate loads a config, storing an empty one (all fields inherited) when absent.
func (s *SystemConfigServiceImpl) getOrCreate(ctx context.Context, configType sysconfig.ConfigType, companyID *string) (sysconfig.SystemConfig, error) {
	var (
		cfg sysconfig.SystemConfig
		err error
	)
	if configType == sysconfig.ConfigTypeAdmin {
		cfg, err = s.SystemConfigRepository.GetAdmin(ctx)
	} else {
		cfg, err = s.SystemConfigRepository.GetByCompanyID(ctx, *companyID)
	}
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, sysconfig.ErrConfigNotFound) {
		return sysconfig.SystemConfig{}, fmt.Errorf("failed to get system config: %w", err)
	}

	created, err := s.SystemConfigRepository.Upsert(ctx, sysconfig.SystemConfig{Type: configType, CompanyID: companyID})
	if err != nil {
		return sysconfig.SystemConfig{}, fmt.Errorf("failed to create system config: %w", err)
	}
	slog.Info("created default system config", "type", configType)
	return created, nil
}
