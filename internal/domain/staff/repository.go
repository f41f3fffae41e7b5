package staff

import (
	"context"
	"time"
)

// StaffRepository persists staff attendance state. Mutations are single-row updates;
// callers combine them inside a database.Transactor when they must be atomic.
type StaffRepository interface {
	GetByID(ctx context.Context, id string) (Staff, error)

	// GetByIDForUpdate locks the staff row for the rest of the surrounding transaction.
	GetByIDForUpdate(ctx context.Context, id string) (Staff, error)

	// List returns staff of one company, or all staff when companyID is nil.
	List(ctx context.Context, companyID *string) ([]Staff, error)

	// ListCheckedIn returns staff with GPSStatus=true. limit <= 0 means no limit.
	ListCheckedIn(ctx context.Context, companyID *string, limit int) ([]Staff, error)

	// MarkCheckedIn sets GPSStatus and the active session pointer. It fails with
	// ErrActiveSessionExists when the pointer is already set.
	MarkCheckedIn(ctx context.Context, staffID, sessionID string, loc Location) error

	// MarkCheckedOut clears GPSStatus and the pointer and records the check-out time.
	// loc is nil for automatic closures that have no client position.
	MarkCheckedOut(ctx context.Context, staffID string, at time.Time, loc *Location) error

	// ResetCheckedIn clears GPSStatus and the pointer without touching check-out fields.
	ResetCheckedIn(ctx context.Context, staffID string) error

	// AppendRoutePoint appends to the staff route log and updates LastLocation.
	AppendRoutePoint(ctx context.Context, staffID string, p Location) error

	// RoutePoints returns the full route log, oldest first.
	RoutePoints(ctx context.Context, staffID string) ([]Location, error)

	SetSpoofingDetected(ctx context.Context, staffID string, detected bool) error

	UpdateSettings(ctx context.Context, staffID string, req UpdateSettingsRequest) error
}
