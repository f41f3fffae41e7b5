package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	AllowedOrigins []string
	Env            string
	Version        string
	LogLevel       slog.Level
}

type Handlers struct {
	Attendance   AttendanceHandler
	Tracking     TrackingHandler
	Staff        StaffHandler
	Leave        LeaveHandler
	SystemConfig SystemConfigHandler
	Report       ReportHandler
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       opts.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "geoattend"),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	operators := []user.Role{user.RoleAdmin, user.RoleAdminStaff, user.RoleCompany}
	authenticated := chi.Chain(
		jwtauth.Verifier(JWTService.JWTAuth()),
		middleware.AuthRequired(JWTService.JWTAuth()),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/staff", func(r chi.Router) {
			// EventSource cannot send an Authorization header, so the stream
			// authenticates with a short-lived token in the query instead.
			r.Get("/live-locations/stream", h.Tracking.Stream)

			// Requires authentication
			r.Group(func(r chi.Router) {
				r.Use(authenticated...)

				// Staff only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireStaff)
					r.Post("/check-in", h.Attendance.CheckIn)
					r.Post("/check-out", h.Attendance.CheckOut)
					r.Post("/update-location", h.Attendance.UpdateLocation)
					r.Post("/verify-location", h.Attendance.VerifyLocation)
					r.Get("/route", h.Attendance.GetRoute)
					r.Get("/history", h.Attendance.GetHistory)

					r.Get("/settings", h.Staff.GetSettings)
					r.Put("/settings", h.Staff.UpdateSettings)

					r.Post("/leave-request", h.Leave.RequestLeave)
					r.Get("/leave-history", h.Leave.MyLeaves)
				})

				// Operators
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(operators...))
					r.Get("/live-locations", h.Tracking.ListLiveLocations)
					r.Get("/live-locations/stream-token", h.Tracking.GetStreamToken)
					r.Put("/{id}/spoof-flag/clear", h.Staff.ClearSpoofFlag)

					r.Get("/leave-requests", h.Leave.ListRequests)
					r.Put("/leave-status", h.Leave.UpdateStatus)
				})

				r.Delete("/leave-delete", h.Leave.Delete)
			})
		})

		// ADMIN and COMPANY only
		r.Group(func(r chi.Router) {
			r.Use(authenticated...)
			r.Use(middleware.RequireRole(user.RoleAdmin, user.RoleCompany))

			r.Get("/system-config", h.SystemConfig.Get)
			r.Put("/system-config", h.SystemConfig.Update)
			r.Get("/reports", h.Report.Generate)
		})
	})
	return r
}
