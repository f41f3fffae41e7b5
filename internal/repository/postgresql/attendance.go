package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the SQLSTATE raised by a unique index conflict.
const uniqueViolation = "23505"

const sessionColumns = `
	id, staff_id, company_id,
	check_in_time, check_out_time,
	check_in_lat, check_in_lng, check_in_address,
	check_out_lat, check_out_lng, check_out_address,
	route, is_spoofed, spoof_reason, total_hours, status,
	auto_check_out, auto_check_out_reason,
	created_at, updated_at`

type sessionRepository struct {
	db *database.DB
}

func NewSessionRepository(db *database.DB) attendance.SessionRepository {
	return &sessionRepository{db: db}
}

func scanSession(row pgx.Row) (attendance.Session, error) {
	var (
		s              attendance.Session
		outLat, outLng *float64
		outAddress     *string
		route          []byte
	)
	err := row.Scan(
		&s.ID, &s.StaffID, &s.CompanyID,
		&s.CheckInTime, &s.CheckOutTime,
		&s.CheckInLocation.Lat, &s.CheckInLocation.Lng, &s.CheckInLocation.Address,
		&outLat, &outLng, &outAddress,
		&route, &s.IsSpoofed, &s.SpoofReason, &s.TotalHours, &s.Status,
		&s.AutoCheckOut, &s.AutoCheckOutReason,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return attendance.Session{}, err
	}

	if outLat != nil && outLng != nil {
		s.CheckOutLocation = &attendance.Location{Lat: *outLat, Lng: *outLng}
		if outAddress != nil {
			s.CheckOutLocation.Address = *outAddress
		}
	}
	if len(route) > 0 {
		if err := json.Unmarshal(route, &s.Route); err != nil {
			return attendance.Session{}, fmt.Errorf("failed to decode route: %w", err)
		}
	}
	return s, nil
}

func (r *sessionRepository) querySessions(ctx context.Context, query string, args ...interface{}) ([]attendance.Session, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]attendance.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Create implements attendance.SessionRepository.
func (r *sessionRepository) Create(ctx context.Context, s attendance.Session) (attendance.Session, error) {
	q := GetQuerier(ctx, r.db)

	route := s.Route
	if route == nil {
		route = []attendance.RoutePoint{}
	}
	routeJSON, err := json.Marshal(route)
	if err != nil {
		return attendance.Session{}, fmt.Errorf("failed to encode route: %w", err)
	}

	query := `
		INSERT INTO attendance_sessions (
			staff_id, company_id, check_in_time,
			check_in_lat, check_in_lng, check_in_address,
			route, is_spoofed, spoof_reason, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		s.StaffID,
		s.CompanyID,
		s.CheckInTime,
		s.CheckInLocation.Lat,
		s.CheckInLocation.Lng,
		s.CheckInLocation.Address,
		string(routeJSON),
		s.IsSpoofed,
		s.SpoofReason,
		s.Status,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return attendance.Session{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Session{}, fmt.Errorf("failed to create attendance session: %w", err)
	}

	s.Route = route
	return s, nil
}

// GetByID implements attendance.SessionRepository.
func (r *sessionRepository) GetByID(ctx context.Context, id string) (attendance.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + sessionColumns + ` FROM attendance_sessions WHERE id = $1`

	s, err := scanSession(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Session{}, attendance.ErrSessionNotFound
		}
		return attendance.Session{}, fmt.Errorf("failed to get attendance session: %w", err)
	}
	return s, nil
}

// ListOpenByStaff implements attendance.SessionRepository.
func (r *sessionRepository) ListOpenByStaff(ctx context.Context, staffID string) ([]attendance.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM attendance_sessions
		WHERE staff_id = $1
		  AND check_out_time IS NULL
		ORDER BY check_in_time DESC
	`
	sessions, err := r.querySessions(ctx, query, staffID)
	if err != nil {
		return nil, fmt.Errorf("failed to list open sessions: %w", err)
	}
	return sessions, nil
}

// ListStaffWithOpenSessions implements attendance.SessionRepository.
func (r *sessionRepository) ListStaffWithOpenSessions(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT DISTINCT staff_id FROM attendance_sessions WHERE check_out_time IS NULL`)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff with open sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan staff id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close implements attendance.SessionRepository.
func (r *sessionRepository) Close(ctx context.Context, id string, c attendance.Closure) error {
	q := GetQuerier(ctx, r.db)

	var outLat, outLng *float64
	var outAddress *string
	if c.CheckOutLocation != nil {
		outLat, outLng, outAddress = &c.CheckOutLocation.Lat, &c.CheckOutLocation.Lng, &c.CheckOutLocation.Address
	}

	query := `
		UPDATE attendance_sessions
		SET check_out_time = $2,
			check_out_lat = $3,
			check_out_lng = $4,
			check_out_address = $5,
			total_hours = $6,
			auto_check_out = $7,
			auto_check_out_reason = $8,
			updated_at = NOW()
		WHERE id = $1
		  AND check_out_time IS NULL
	`

	tag, err := q.Exec(ctx, query, id,
		c.CheckOutTime, outLat, outLng, outAddress,
		c.TotalHours, c.AutoCheckOut, c.AutoCheckOutReason,
	)
	if err != nil {
		return fmt.Errorf("failed to close attendance session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.notOpenError(ctx, id)
	}
	return nil
}

// AppendRoutePoint implements attendance.SessionRepository. The point is
// appended in place so concurrent appends never overwrite each other.
func (r *sessionRepository) AppendRoutePoint(ctx context.Context, id string, p attendance.RoutePoint) error {
	q := GetQuerier(ctx, r.db)

	point, err := json.Marshal([]attendance.RoutePoint{p})
	if err != nil {
		return fmt.Errorf("failed to encode route point: %w", err)
	}

	query := `
		UPDATE attendance_sessions
		SET route = route || $2::jsonb,
			updated_at = NOW()
		WHERE id = $1
		  AND check_out_time IS NULL
	`

	tag, err := q.Exec(ctx, query, id, string(point))
	if err != nil {
		return fmt.Errorf("failed to append route point: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.notOpenError(ctx, id)
	}
	return nil
}

// MarkSpoofed implements attendance.SessionRepository.
func (r *sessionRepository) MarkSpoofed(ctx context.Context, id string, reason string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_sessions
		SET is_spoofed = TRUE,
			spoof_reason = COALESCE(spoof_reason, $2),
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id, reason)
	if err != nil {
		return fmt.Errorf("failed to mark session spoofed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrSessionNotFound
	}
	return nil
}

// ListByStaffBetween implements attendance.SessionRepository.
func (r *sessionRepository) ListByStaffBetween(ctx context.Context, staffID string, from, to time.Time) ([]attendance.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM attendance_sessions
		WHERE staff_id = $1
		  AND check_in_time >= $2
		  AND check_in_time < $3
		ORDER BY check_in_time ASC
	`
	sessions, err := r.querySessions(ctx, query, staffID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions between dates: %w", err)
	}
	return sessions, nil
}

// ListByStaff implements attendance.SessionRepository.
func (r *sessionRepository) ListByStaff(ctx context.Context, staffID string, offset, limit int) ([]attendance.Session, int64, error) {
	q := GetQuerier(ctx, r.db)

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM attendance_sessions WHERE staff_id = $1`, staffID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	query := `
		SELECT ` + sessionColumns + `
		FROM attendance_sessions
		WHERE staff_id = $1
		ORDER BY check_in_time DESC
		LIMIT $2 OFFSET $3
	`
	sessions, err := r.querySessions(ctx, query, staffID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list session history: %w", err)
	}
	return sessions, total, nil
}

// ListOverlapping implements attendance.SessionRepository.
func (r *sessionRepository) ListOverlapping(ctx context.Context, filter attendance.SessionFilter) ([]attendance.Session, error) {
	where := []string{"check_in_time < $1", "(check_out_time IS NULL OR check_out_time >= $2)"}
	args := []interface{}{filter.To, filter.From}
	argIdx := 3

	if filter.CompanyID != nil {
		where = append(where, fmt.Sprintf("company_id = $%d", argIdx))
		args = append(args, *filter.CompanyID)
		argIdx++
	}
	if filter.StaffID != nil {
		where = append(where, fmt.Sprintf("staff_id = $%d", argIdx))
		args = append(args, *filter.StaffID)
	}

	query := `SELECT ` + sessionColumns + ` FROM attendance_sessions WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY check_in_time ASC`

	sessions, err := r.querySessions(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list overlapping sessions: %w", err)
	}
	return sessions, nil
}

// notOpenError tells a missing session apart from one that is already closed.
func (r *sessionRepository) notOpenError(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM attendance_sessions WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check attendance session: %w", err)
	}
	if !exists {
		return attendance.ErrSessionNotFound
	}
	return attendance.ErrSessionClosed
}
