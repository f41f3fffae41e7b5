package memory

import (
	"context"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/sysconfig"
	"github.com/google/uuid"
)

type systemConfigRepository struct {
	store *Store
}

func NewSystemConfigRepository(store *Store) sysconfig.SystemConfigRepository {
	return &systemConfigRepository{store: store}
}

func (r *systemConfigRepository) GetAdmin(ctx context.Context) (sysconfig.SystemConfig, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if r.store.adminConfig == nil {
		return sysconfig.SystemConfig{}, sysconfig.ErrConfigNotFound
	}
	return cloneConfig(*r.store.adminConfig), nil
}

func (r *systemConfigRepository) GetByCompanyID(ctx context.Context, companyID string) (sysconfig.SystemConfig, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	cfg, ok := r.store.companyConfig[companyID]
	if !ok {
		return sysconfig.SystemConfig{}, sysconfig.ErrConfigNotFound
	}
	return cloneConfig(cfg), nil
}

func (r *systemConfigRepository) Upsert(ctx context.Context, cfg sysconfig.SystemConfig) (sysconfig.SystemConfig, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var existing *sysconfig.SystemConfig
	if cfg.Type == sysconfig.ConfigTypeAdmin {
		existing = r.store.adminConfig
	} else if cfg.CompanyID != nil {
		if c, ok := r.store.companyConfig[*cfg.CompanyID]; ok {
			existing = &c
		}
	}

	now := r.store.now()
	if existing != nil {
		cfg.ID = existing.ID
		cfg.CreatedAt = existing.CreatedAt
	} else {
		if cfg.ID == "" {
			cfg.ID = uuid.Must(uuid.NewV7()).String()
		}
		cfg.CreatedAt = now
	}
	cfg.UpdatedAt = now
	cfg = cloneConfig(cfg)

	if cfg.Type == sysconfig.ConfigTypeAdmin {
		prev := r.store.adminConfig
		r.store.record(ctx, func() { r.store.adminConfig = prev })
		stored := cfg
		r.store.adminConfig = &stored
	} else if cfg.CompanyID != nil {
		companyID := *cfg.CompanyID
		prev, existed := r.store.companyConfig[companyID]
		r.store.record(ctx, func() {
			if existed {
				r.store.companyConfig[companyID] = prev
			} else {
				delete(r.store.companyConfig, companyID)
			}
		})
		r.store.companyConfig[companyID] = cfg
	}
	return cloneConfig(cfg), nil
}

func cloneConfig(cfg sysconfig.SystemConfig) sysconfig.SystemConfig {
	if cfg.Holidays != nil {
		holidays := make([]sysconfig.Holiday, len(cfg.Holidays))
		copy(holidays, cfg.Holidays)
		cfg.Holidays = holidays
	}
	if cfg.WorkWeekDays != nil {
		days := make([]string, len(cfg.WorkWeekDays))
		copy(days, cfg.WorkWeekDays)
		cfg.WorkWeekDays = days
	}
	return cfg
}
