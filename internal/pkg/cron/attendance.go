package cron

import (
	"context"
	"log/slog"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/attendance"
)

// DefaultSweepSchedule runs the stale-session sweep every minute.
const DefaultSweepSchedule = "0 * * * * *"

type AttendanceJobs struct {
	enforcer attendance.Enforcer
	schedule string
}

func NewAttendanceJobs(enforcer attendance.Enforcer, schedule string) *AttendanceJobs {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	return &AttendanceJobs{enforcer: enforcer, schedule: schedule}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) error {
	return scheduler.AddJob("close_stale_sessions", j.schedule, j.CloseStaleSessions)
}

// CloseStaleSessions auto-checks-out every open session whose close condition
// holds, so stale sessions end even when the staff app stops calling in.
func (j *AttendanceJobs) CloseStaleSessions(ctx context.Context) error {
	closed, err := j.enforcer.SweepOpenSessions(ctx)
	if err != nil {
		return err
	}
	if closed > 0 {
		slog.Info("Cron: stale sessions closed", "count", closed)
	}
	return nil
}
