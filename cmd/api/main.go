package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/config"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/staff"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/sysconfig"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/fixtures"
	appHTTP "github.com/cmlabs-hris/geoattend-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/pkg/geocode"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/pkg/keymutex"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/repository/memory"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/geoattend-backend-go/internal/service/attendance"
	leaveService "github.com/cmlabs-hris/geoattend-backend-go/internal/service/leave"
	reportService "github.com/cmlabs-hris/geoattend-backend-go/internal/service/report"
	staffService "github.com/cmlabs-hris/geoattend-backend-go/internal/service/staff"
	sysconfigService "github.com/cmlabs-hris/geoattend-backend-go/internal/service/sysconfig"
	trackingService "github.com/cmlabs-hris/geoattend-backend-go/internal/service/tracking"
)

const version = "v1.0.0"

type repositories struct {
	tx        database.Transactor
	sessions  attendance.SessionRepository
	staff     staff.StaffRepository
	companies company.CompanyRepository
	leaves    leave.LeaveRepository
	configs   sysconfig.SystemConfigRepository
	close     func()
}

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})).With(
		slog.String("app", "geoattend"),
		slog.String("env", cfg.App.Env),
	))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.close()

	geocoder, closeGeocoder := newGeocoder(cfg)
	defer closeGeocoder()

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return fmt.Errorf("error creating jwt service: %w", err)
	}

	hub := sse.NewHub()
	locks := keymutex.New()
	configService := sysconfigService.NewSystemConfigService(repos.configs, cfg.Location())

	enforcer := attendanceService.NewEnforcer(
		repos.tx,
		repos.sessions,
		repos.staff,
		configService,
		locks,
		attendanceService.WithEnforcerPublisher(hub),
		attendanceService.WithSweepConcurrency(cfg.Attendance.SweepConcurrency),
	)
	attendanceSvc := attendanceService.NewAttendanceService(
		repos.tx,
		repos.sessions,
		repos.staff,
		repos.companies,
		repos.leaves,
		configService,
		enforcer,
		geocoder,
		locks,
		attendanceService.WithPublisher(hub),
	)
	trackingSvc := trackingService.NewTrackingService(repos.staff, repos.sessions, repos.companies, configService)
	reportSvc := reportService.NewReportService(repos.sessions, repos.staff, repos.companies, configService)
	leaveSvc := leaveService.NewLeaveService(repos.leaves, repos.staff)
	staffSvc := staffService.NewStaffService(repos.staff)

	scheduler := cron.NewScheduler(cfg.Attendance.SweepTimeout)
	if err := cron.NewAttendanceJobs(enforcer, cfg.Attendance.SweepSchedule).RegisterJobs(scheduler); err != nil {
		return fmt.Errorf("error registering cron jobs: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(appHTTP.RouterOptions{
		AllowedOrigins: cfg.App.CORSOrigins,
		Env:            cfg.App.Env,
		Version:        version,
		LogLevel:       cfg.SlogLevel(),
	}, JWTService, appHTTP.Handlers{
		Attendance:   appHTTP.NewAttendanceHandler(attendanceSvc),
		Tracking:     appHTTP.NewTrackingHandler(trackingSvc, JWTService, hub),
		Staff:        appHTTP.NewStaffHandler(staffSvc),
		Leave:        appHTTP.NewLeaveHandler(leaveSvc),
		SystemConfig: appHTTP.NewSystemConfigHandler(configService),
		Report:       appHTTP.NewReportHandler(reportSvc),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "storage", cfg.Attendance.StorageDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	// Open SSE streams end when their request contexts are cancelled.
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	return nil
}

func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	switch cfg.Attendance.StorageDriver {
	case config.StorageDriverMemory:
		store := memory.NewStore()
		if cfg.Attendance.SeedDemoData {
			ids, err := fixtures.SeedMemory(ctx, store)
			if err != nil {
				return nil, fmt.Errorf("error seeding demo data: %w", err)
			}
			slog.Info("Demo data seeded", "companies", len(ids.CompanyIDs), "staff", len(ids.StaffIDs))
		}
		slog.Warn("Using in-memory storage; data is lost on restart")
		return &repositories{
			tx:        memory.NewTransactor(store),
			sessions:  memory.NewSessionRepository(store),
			staff:     memory.NewStaffRepository(store),
			companies: memory.NewCompanyRepository(store),
			leaves:    memory.NewLeaveRepository(store),
			configs:   memory.NewSystemConfigRepository(store),
			close:     func() {},
		}, nil

	default:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
			MaxConns: cfg.Database.MaxConns,
		})
		if err != nil {
			return nil, fmt.Errorf("error connecting to database: %w", err)
		}
		if cfg.Database.AutoMigrate {
			if err := postgresql.Migrate(ctx, db); err != nil {
				db.Close()
				return nil, fmt.Errorf("error migrating database: %w", err)
			}
		}
		return &repositories{
			tx:        postgresql.NewTransactor(db),
			sessions:  postgresql.NewSessionRepository(db),
			staff:     postgresql.NewStaffRepository(db),
			companies: postgresql.NewCompanyRepository(db),
			leaves:    postgresql.NewLeaveRepository(db),
			configs:   postgresql.NewSystemConfigRepository(db),
			close:     db.Close,
		}, nil
	}
}

// newGeocoder falls back to a static place name when geocoding is disabled,
// and runs without a cache when Redis is not configured or unreachable.
func newGeocoder(cfg *config.Config) (geocode.Geocoder, func()) {
	if !cfg.Geocoder.Enabled {
		return geocode.Static(""), func() {}
	}

	var cache geocode.Cache
	closeCache := func() {}
	if cfg.Redis.Host != "" {
		client, err := geocode.NewRedisClient(geocode.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			slog.Warn("Geocode cache disabled", "error", err)
		} else {
			cache = geocode.NewRedisCache(client)
			closeCache = func() { _ = client.Close() }
		}
	}

	return geocode.NewNominatimGeocoder(geocode.Config{
		BaseURL:   cfg.Geocoder.BaseURL,
		UserAgent: cfg.Geocoder.UserAgent,
		Timeout:   cfg.Geocoder.Timeout,
		CacheTTL:  cfg.Geocoder.CacheTTL,
	}, cache), closeCache
}
