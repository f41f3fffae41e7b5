package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/staff"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/sysconfig"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/tracking"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/pkg/keymutex"
	"golang.org/x/sync/errgroup"
)

const DefaultSweepConcurrency = 8

// EnforcerImpl closes stale sessions. EnforceStaleSession expects the caller to
// hold the staff lock; SweepOpenSessions takes it itself.
type EnforcerImpl struct {
	tx database.Transactor
	attendance.SessionRepository
	staff.StaffRepository

	resolver    sysconfig.Resolver
	publisher   tracking.Publisher
	locks       *keymutex.KeyMutex
	now         func() time.Time
	concurrency int
}

type EnforcerOption func(*EnforcerImpl)

func WithEnforcerClock(now func() time.Time) EnforcerOption {
	return func(e *EnforcerImpl) { e.now = now }
}

func WithEnforcerPublisher(p tracking.Publisher) EnforcerOption {
	return func(e *EnforcerImpl) { e.publisher = p }
}

// WithSweepConcurrency bounds how many staff a sweep processes at once.
func WithSweepConcurrency(n int) EnforcerOption {
	return func(e *EnforcerImpl) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

func NewEnforcer(
	tx database.Transactor,
	sessionRepo attendance.SessionRepository,
	staffRepo staff.StaffRepository,
	resolver sysconfig.Resolver,
	locks *keymutex.KeyMutex,
	opts ...EnforcerOption,
) attendance.Enforcer {
	e := &EnforcerImpl{
		tx:                tx,
		SessionRepository: sessionRepo,
		StaffRepository:   staffRepo,
		resolver:          resolver,
		publisher:         noopPublisher{},
		locks:             locks,
		now:               time.Now,
		concurrency:       DefaultSweepConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EnforceStaleSession implements attendance.Enforcer.
func (e *EnforcerImpl) EnforceStaleSession(ctx context.Context, staffID string) (*attendance.Session, error) {
	now := e.now()

	st, err := e.StaffRepository.GetByID(ctx, staffID)
	if err != nil {
		slog.Warn("enforcer skipped: failed to get staff", "staff_id", staffID, "error", err)
		return nil, nil
	}

	open, err := e.SessionRepository.ListOpenByStaff(ctx, staffID)
	if err != nil {
		slog.Warn("enforcer skipped: failed to list open sessions", "staff_id", staffID, "error", err)
		return nil, nil
	}

	if len(open) == 0 {
		if st.IsCheckedIn() {
			if err := e.StaffRepository.ResetCheckedIn(ctx, staffID); err != nil {
				slog.Error("failed to reset checked-in flag without open session", "staff_id", staffID, "error", err)
			} else {
				slog.Warn("reset checked-in flag without open session", "staff_id", staffID)
			}
		}
		return nil, nil
	}

	current := open[0]
	if len(open) > 1 {
		if err := e.closeDuplicates(ctx, open[1:], now); err != nil {
			return nil, err
		}
	}

	policy := e.resolver.Resolve(ctx, user.RoleStaff, st.CompanyID)
	reason := CloseReason(st, current, policy, now)
	if reason == "" {
		return nil, nil
	}

	closure := attendance.NewClosure(current, now, nil, &reason)
	err = e.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := e.SessionRepository.Close(txCtx, current.ID, closure); err != nil {
			return err
		}
		return e.StaffRepository.MarkCheckedOut(txCtx, staffID, now, nil)
	})
	if err != nil {
		if !errors.Is(err, attendance.ErrSessionClosed) {
			slog.Error("auto checkout failed", "staff_id", staffID, "session_id", current.ID, "error", err)
		}
		return nil, nil
	}

	closed, err := e.SessionRepository.GetByID(ctx, current.ID)
	if err != nil {
		slog.Warn("failed to reload auto-closed session", "session_id", current.ID, "error", err)
		closed = current
	}

	slog.Info("session auto checked out",
		"staff_id", staffID,
		"session_id", current.ID,
		"reason", reason,
	)
	e.publisher.Publish(st.CompanyID, tracking.EventAutoCheckOut, tracking.LiveEvent{
		StaffID:   staffID,
		CompanyID: st.CompanyID,
		SessionID: current.ID,
		IsSpoofed: closed.IsSpoofed,
		Reason:    &reason,
	})
	return &closed, nil
}

// closeDuplicates closes every extra open session. It fails with
// ErrInconsistentState when one of them cannot be closed.
func (e *EnforcerImpl) closeDuplicates(ctx context.Context, stale []attendance.Session, now time.Time) error {
	reason := attendance.ReasonDuplicateSession
	for _, s := range stale {
		err := e.SessionRepository.Close(ctx, s.ID, attendance.NewClosure(s, now, nil, &reason))
		if err != nil && !errors.Is(err, attendance.ErrSessionClosed) {
			slog.Error("failed to close duplicate open session", "staff_id", s.StaffID, "session_id", s.ID, "error", err)
			return fmt.Errorf("%w: staff %s has more than one open session", attendance.ErrInconsistentState, s.StaffID)
		}
		slog.Warn("closed duplicate open session", "staff_id", s.StaffID, "session_id", s.ID)
	}
	return nil
}

// SweepOpenSessions implements attendance.Enforcer.
func (e *EnforcerImpl) SweepOpenSessions(ctx context.Context) (int, error) {
	staffIDs, err := e.SessionRepository.ListStaffWithOpenSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list staff with open sessions: %w", err)
	}

	var closed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for _, staffID := range staffIDs {
		staffID := staffID
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			unlock := e.locks.Lock(staffID)
			defer unlock()

			session, err := e.EnforceStaleSession(gctx, staffID)
			if err != nil {
				slog.Error("sweep failed for staff", "staff_id", staffID, "error", err)
				return nil
			}
			if session != nil {
				closed.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(closed.Load()), err
	}
	return int(closed.Load()), nil
}

// CloseReason returns the auto-checkout reason for an open session, or "" when
// the session may stay open. Conditions are checked in priority order.
func CloseReason(st staff.Staff, session attendance.Session, policy sysconfig.Policy, now time.Time) string {
	if now.Sub(session.LastActivity()) > policy.InactivityLimit() {
		return attendance.InactivityReason(policy.AutoCheckoutInactivity)
	}
	if !now.Before(ShiftEnd(session.CheckInTime, st.ShiftOrDefault(), policy.Location)) {
		return attendance.ReasonShiftEnded
	}
	if !st.GPSStatus || st.ActiveSessionID == nil || *st.ActiveSessionID != session.ID {
		return attendance.ReasonGPSOff
	}
	if st.SpoofingDetected {
		return attendance.ReasonSpoofing
	}
	return ""
}

// ShiftEnd is the end of the shift that started on checkIn's calendar day in loc.
// An end time at or before the start time belongs to the next day.
func ShiftEnd(checkIn time.Time, shift staff.Shift, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	start, okStart := parseClock(shift.StartTime)
	end, okEnd := parseClock(shift.EndTime)
	if !okEnd {
		end, _ = parseClock(staff.DefaultShiftEnd)
	}
	if !okStart {
		start, _ = parseClock(staff.DefaultShiftStart)
	}

	local := checkIn.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	if end <= start {
		day = day.AddDate(0, 0, 1)
	}
	return day.Add(end)
}

func parseClock(hhmm string) (time.Duration, bool) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, false
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, true
}
