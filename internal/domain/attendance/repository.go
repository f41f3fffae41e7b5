package attendance

import (
	"context"
	"time"
)

// SessionFilter selects sessions overlapping [From, To).
type SessionFilter struct {
	CompanyID *string
	StaffID   *string
	From      time.Time
	To        time.Time
}

// SessionRepository defines data access for attendance sessions.
type SessionRepository interface {
	Create(ctx context.Context, s Session) (Session, error)

	GetByID(ctx context.Context, id string) (Session, error)

	// ListOpenByStaff returns the staff member's open sessions, newest first, with routes.
	ListOpenByStaff(ctx context.Context, staffID string) ([]Session, error)

	// ListStaffWithOpenSessions returns the IDs of staff that have at least one open session.
	ListStaffWithOpenSessions(ctx context.Context) ([]string, error)

	// Close sets the check-out fields once. It returns ErrSessionClosed if the session
	// was closed concurrently.
	Close(ctx context.Context, id string, c Closure) error

	// AppendRoutePoint appends to an open session's route, or returns ErrSessionClosed.
	AppendRoutePoint(ctx context.Context, id string, p RoutePoint) error

	// MarkSpoofed sets IsSpoofed and records reason only if no reason is stored yet.
	MarkSpoofed(ctx context.Context, id string, reason string) error

	// ListByStaffBetween returns sessions whose check-in falls in [from, to), oldest first.
	ListByStaffBetween(ctx context.Context, staffID string, from, to time.Time) ([]Session, error)

	// ListByStaff pages through a staff member's sessions, newest first.
	ListByStaff(ctx context.Context, staffID string, offset, limit int) ([]Session, int64, error)

	// ListOverlapping returns sessions that were open at any point in [From, To), oldest first.
	ListOverlapping(ctx context.Context, filter SessionFilter) ([]Session, error)
}
