package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/sysconfig"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const systemConfigColumns = `
	id, type, company_id,
	holidays, work_week_days,
	enable_fake_location_detection, location_tracking_interval,
	auto_checkout_inactivity, staff_limit_per_company, timezone,
	theme_color, date_format, time_format,
	created_at, updated_at`

type systemConfigRepository struct {
	db *database.DB
}

func NewSystemConfigRepository(db *database.DB) sysconfig.SystemConfigRepository {
	return &systemConfigRepository{db: db}
}

// Holidays and work days are stored as nullable JSONB so that NULL (inherit)
// and '[]' (explicitly empty) stay distinct.
func scanSystemConfig(row pgx.Row) (sysconfig.SystemConfig, error) {
	var (
		cfg            sysconfig.SystemConfig
		holidays, days []byte
	)
	err := row.Scan(
		&cfg.ID, &cfg.Type, &cfg.CompanyID,
		&holidays, &days,
		&cfg.EnableFakeLocationDetection, &cfg.LocationTrackingInterval,
		&cfg.AutoCheckoutInactivity, &cfg.StaffLimitPerCompany, &cfg.Timezone,
		&cfg.ThemeColor, &cfg.DateFormat, &cfg.TimeFormat,
		&cfg.CreatedAt, &cfg.UpdatedAt,
	)
	if err != nil {
		return sysconfig.SystemConfig{}, err
	}
	if holidays != nil {
		if err := json.Unmarshal(holidays, &cfg.Holidays); err != nil {
			return sysconfig.SystemConfig{}, fmt.Errorf("failed to decode holidays: %w", err)
		}
	}
	if days != nil {
		if err := json.Unmarshal(days, &cfg.WorkWeekDays); err != nil {
			return sysconfig.SystemConfig{}, fmt.Errorf("failed to decode work week days: %w", err)
		}
	}
	return cfg, nil
}

func encodeNullableJSON[T any](v []T) (*string, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(raw)
	return &s, nil
}

func (r *systemConfigRepository) getOne(ctx context.Context, where string, args ...interface{}) (sysconfig.SystemConfig, error) {
	q := GetQuerier(ctx, r.db)

	cfg, err := scanSystemConfig(q.QueryRow(ctx, `SELECT `+systemConfigColumns+` FROM system_configs WHERE `+where, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sysconfig.SystemConfig{}, sysconfig.ErrConfigNotFound
		}
		return sysconfig.SystemConfig{}, fmt.Errorf("failed to get system config: %w", err)
	}
	return cfg, nil
}

// GetAdmin implements sysconfig.SystemConfigRepository.
func (r *systemConfigRepository) GetAdmin(ctx context.Context) (sysconfig.SystemConfig, error) {
	return r.getOne(ctx, `type = 'admin'`)
}

// GetByCompanyID implements sysconfig.SystemConfigRepository.
func (r *systemConfigRepository) GetByCompanyID(ctx context.Context, companyID string) (sysconfig.SystemConfig, error) {
	return r.getOne(ctx, `type = 'company' AND company_id = $1`, companyID)
}

// Upsert implements sysconfig.SystemConfigRepository.
func (r *systemConfigRepository) Upsert(ctx context.Context, cfg sysconfig.SystemConfig) (sysconfig.SystemConfig, error) {
	q := GetQuerier(ctx, r.db)

	holidays, err := encodeNullableJSON(cfg.Holidays)
	if err != nil {
		return sysconfig.SystemConfig{}, fmt.Errorf("failed to encode holidays: %w", err)
	}
	days, err := encodeNullableJSON(cfg.WorkWeekDays)
	if err != nil {
		return sysconfig.SystemConfig{}, fmt.Errorf("failed to encode work week days: %w", err)
	}

	conflict := `ON CONFLICT (company_id) WHERE type = 'company'`
	if cfg.Type == sysconfig.ConfigTypeAdmin {
		conflict = `ON CONFLICT (type) WHERE type = 'admin'`
	}

	query := `
		INSERT INTO system_configs (
			type, company_id, holidays, work_week_days,
			enable_fake_location_detection, location_tracking_interval,
			auto_checkout_inactivity, staff_limit_per_company, timezone,
			theme_color, date_format, time_format
		) VALUES ($1, $2, $3::jsonb, $4::jsonb, $5, $6, $7, $8, $9, $10, $11, $12)
		` + conflict + ` DO UPDATE SET
			holidays = EXCLUDED.holidays,
			work_week_days = EXCLUDED.work_week_days,
			enable_fake_location_detection = EXCLUDED.enable_fake_location_detection,
			location_tracking_interval = EXCLUDED.location_tracking_interval,
			auto_checkout_inactivity = EXCLUDED.auto_checkout_inactivity,
			staff_limit_per_company = EXCLUDED.staff_limit_per_company,
			timezone = EXCLUDED.timezone,
			theme_color = EXCLUDED.theme_color,
			date_format = EXCLUDED.date_format,
			time_format = EXCLUDED.time_format,
			updated_at = NOW()
		RETURNING ` + systemConfigColumns

	saved, err := scanSystemConfig(q.QueryRow(ctx, query,
		cfg.Type, cfg.CompanyID, holidays, days,
		cfg.EnableFakeLocationDetection, cfg.LocationTrackingInterval,
		cfg.AutoCheckoutInactivity, cfg.StaffLimitPerCompany, cfg.Timezone,
		cfg.ThemeColor, cfg.DateFormat, cfg.TimeFormat,
	))
	if err != nil {
		return sysconfig.SystemConfig{}, fmt.Errorf("failed to upsert system config: %w", err)
	}
	return saved, nil
}
