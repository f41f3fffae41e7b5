package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("STORAGE_DRIVER", StorageDriverMemory)
	t.Setenv("APP_TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, StorageDriverMemory, cfg.Attendance.StorageDriver)
	assert.Equal(t, "0 * * * * *", cfg.Attendance.SweepSchedule)
	assert.Equal(t, 5*time.Second, cfg.Geocoder.Timeout)
	assert.Empty(t, cfg.Redis.Host)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("GEOCODER_CACHE_TTL", "1h")
	t.Setenv("REDIS_HOST", "cache")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.App.CORSOrigins)
	assert.Equal(t, time.Hour, cfg.Geocoder.CacheTTL)
	assert.Equal(t, "cache", cfg.Redis.Host)
	assert.Equal(t, "postgres://postgres:pw@localhost:5432/geoattend?sslmode=disable", cfg.DatabaseURL())
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("STORAGE_DRIVER", StorageDriverMemory)
	t.Setenv("APP_PORT", "eighty")
	t.Setenv("GEOCODER_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_PORT")
	assert.Contains(t, err.Error(), "GEOCODER_TIMEOUT")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			JWT:        JWTConfig{Secret: "s", AccessExpiration: "1h"},
			App:        AppConfig{Timezone: "UTC"},
			Database:   DatabaseConfig{Password: "pw"},
			Attendance: AttendanceConfig{StorageDriver: StorageDriverPostgres},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing secret", func(c *Config) { c.JWT.Secret = "" }, "JWT_SECRET_KEY"},
		{"bad expiration", func(c *Config) { c.JWT.AccessExpiration = "1 hour" }, "JWT_ACCESS_EXPIRATION_TIME"},
		{"postgres needs password", func(c *Config) { c.Database.Password = "" }, "DB_PASSWORD"},
		{"memory needs no password", func(c *Config) {
			c.Database.Password = ""
			c.Attendance.StorageDriver = StorageDriverMemory
		}, ""},
		{"unknown driver", func(c *Config) { c.Attendance.StorageDriver = "mongo" }, "STORAGE_DRIVER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_SlogLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
	} {
		cfg := Config{App: AppConfig{LogLevel: in}}
		assert.Equal(t, want, cfg.SlogLevel(), in)
	}
}
