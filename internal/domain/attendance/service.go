package attendance

import (
	"context"
)

// AttendanceService owns the check-in/check-out state machine of each staff member.
type AttendanceService interface {
	// CheckIn opens a session after holiday, workday, leave, geofence and
	// already-checked-in checks. A spoofed position is flagged, not rejected.
	CheckIn(ctx context.Context, req CheckInRequest) (SessionRecord, error)

	// CheckOut closes the staff member's open session.
	CheckOut(ctx context.Context, req CheckOutRequest) (SessionRecord, error)

	// UpdateLocation appends a route point to the open session.
	UpdateLocation(ctx context.Context, req UpdateLocationRequest) (LocationUpdateResponse, error)

	// GetRoute returns today's sessions for the staff member, oldest first.
	GetRoute(ctx context.Context, staffID string, companyID string) ([]SessionRecord, error)

	// GetHistory pages through all sessions, newest first.
	GetHistory(ctx context.Context, staffID string, companyID string, page, limit int) (HistoryResponse, error)

	// VerifyLocation checks a coordinate without changing any state.
	VerifyLocation(ctx context.Context, req VerifyLocationRequest) (VerifyLocationResponse, error)
}

// Enforcer closes stale open sessions.
type Enforcer interface {
	// EnforceStaleSession auto-closes the staff member's open session when a close
	// condition holds. It returns the closed session, or nil when nothing changed.
	// Only ErrInconsistentState is returned; other failures are logged.
	EnforceStaleSession(ctx context.Context, staffID string) (*Session, error)

	// SweepOpenSessions runs EnforceStaleSession for every staff member with an
	// open session and returns how many sessions were closed.
	SweepOpenSessions(ctx context.Context) (int, error)
}
