package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/staff"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const staffColumns = `
	id, company_id, name, email, phone,
	gps_status, spoofing_detected,
	last_location, last_check_in_location, last_check_out_location,
	last_check_in, last_check_out,
	shift_start, shift_end, active_session_id,
	created_at, updated_at`

type staffRepository struct {
	db *database.DB
}

func NewStaffRepository(db *database.DB) staff.StaffRepository {
	return &staffRepository{db: db}
}

func scanStaff(row pgx.Row) (staff.Staff, error) {
	var (
		st                    staff.Staff
		last, lastIn, lastOut []byte
		shiftStart, shiftEnd  *string
	)
	err := row.Scan(
		&st.ID, &st.CompanyID, &st.Name, &st.Email, &st.Phone,
		&st.GPSStatus, &st.SpoofingDetected,
		&last, &lastIn, &lastOut,
		&st.LastCheckIn, &st.LastCheckOut,
		&shiftStart, &shiftEnd, &st.ActiveSessionID,
		&st.CreatedAt, &st.UpdatedAt,
	)
	if err != nil {
		return staff.Staff{}, err
	}

	if st.LastLocation, err = decodeLocation(last); err != nil {
		return staff.Staff{}, err
	}
	if st.LastCheckInLocation, err = decodeLocation(lastIn); err != nil {
		return staff.Staff{}, err
	}
	if st.LastCheckOutLocation, err = decodeLocation(lastOut); err != nil {
		return staff.Staff{}, err
	}
	if shiftStart != nil {
		st.Shift.StartTime = *shiftStart
	}
	if shiftEnd != nil {
		st.Shift.EndTime = *shiftEnd
	}
	return st, nil
}

func decodeLocation(raw []byte) (*staff.Location, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var loc staff.Location
	if err := json.Unmarshal(raw, &loc); err != nil {
		return nil, fmt.Errorf("failed to decode location: %w", err)
	}
	return &loc, nil
}

func encodeLocation(loc *staff.Location) (*string, error) {
	if loc == nil {
		return nil, nil
	}
	raw, err := json.Marshal(loc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode location: %w", err)
	}
	s := string(raw)
	return &s, nil
}

func (r *staffRepository) getByID(ctx context.Context, id string, forUpdate bool) (staff.Staff, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + staffColumns + ` FROM staff WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	st, err := scanStaff(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return staff.Staff{}, staff.ErrStaffNotFound
		}
		return staff.Staff{}, fmt.Errorf("failed to get staff: %w", err)
	}
	return st, nil
}

// GetByID implements staff.StaffRepository.
func (r *staffRepository) GetByID(ctx context.Context, id string) (staff.Staff, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate implements staff.StaffRepository.
func (r *staffRepository) GetByIDForUpdate(ctx context.Context, id string) (staff.Staff, error) {
	return r.getByID(ctx, id, true)
}

func (r *staffRepository) queryStaff(ctx context.Context, query string, args ...interface{}) ([]staff.Staff, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]staff.Staff, 0)
	for rows.Next() {
		st, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// List implements staff.StaffRepository.
func (r *staffRepository) List(ctx context.Context, companyID *string) ([]staff.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff`
	var args []interface{}
	if companyID != nil {
		query += ` WHERE company_id = $1`
		args = append(args, *companyID)
	}
	query += ` ORDER BY name ASC, id ASC`

	out, err := r.queryStaff(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	return out, nil
}

// ListCheckedIn implements staff.StaffRepository.
func (r *staffRepository) ListCheckedIn(ctx context.Context, companyID *string, limit int) ([]staff.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE gps_status = TRUE`
	args := []interface{}{}
	if companyID != nil {
		args = append(args, *companyID)
		query += fmt.Sprintf(` AND company_id = $%d`, len(args))
	}
	query += ` ORDER BY last_check_in DESC NULLS LAST, id ASC`
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	out, err := r.queryStaff(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list checked-in staff: %w", err)
	}
	return out, nil
}

// MarkCheckedIn implements staff.StaffRepository.
func (r *staffRepository) MarkCheckedIn(ctx context.Context, staffID, sessionID string, loc staff.Location) error {
	q := GetQuerier(ctx, r.db)

	encoded, err := encodeLocation(&loc)
	if err != nil {
		return err
	}

	query := `
		UPDATE staff
		SET gps_status = TRUE,
			active_session_id = $2,
			last_check_in = $3,
			last_check_in_location = $4::jsonb,
			last_location = $4::jsonb,
			updated_at = NOW()
		WHERE id = $1
		  AND active_session_id IS NULL
	`

	tag, err := q.Exec(ctx, query, staffID, sessionID, loc.Timestamp, encoded)
	if err != nil {
		return fmt.Errorf("failed to mark staff checked in: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, staffID); err != nil {
			return err
		}
		return staff.ErrActiveSessionExists
	}
	return nil
}

// MarkCheckedOut implements staff.StaffRepository.
func (r *staffRepository) MarkCheckedOut(ctx context.Context, staffID string, at time.Time, loc *staff.Location) error {
	q := GetQuerier(ctx, r.db)

	encoded, err := encodeLocation(loc)
	if err != nil {
		return err
	}

	query := `
		UPDATE staff
		SET gps_status = FALSE,
			active_session_id = NULL,
			last_check_out = $2,
			last_check_out_location = COALESCE($3::jsonb, last_check_out_location),
			last_location = COALESCE($3::jsonb, last_location),
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, staffID, at, encoded)
	if err != nil {
		return fmt.Errorf("failed to mark staff checked out: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return staff.ErrStaffNotFound
	}
	return nil
}

// ResetCheckedIn implements staff.StaffRepository.
func (r *staffRepository) ResetCheckedIn(ctx context.Context, staffID string) error {
	return r.exec(ctx, "failed to reset checked-in state",
		`UPDATE staff SET gps_status = FALSE, active_session_id = NULL, updated_at = NOW() WHERE id = $1`,
		staffID,
	)
}

// AppendRoutePoint implements staff.StaffRepository.
func (r *staffRepository) AppendRoutePoint(ctx context.Context, staffID string, p staff.Location) error {
	q := GetQuerier(ctx, r.db)

	encoded, err := encodeLocation(&p)
	if err != nil {
		return err
	}

	if err := r.exec(ctx, "failed to update last location",
		`UPDATE staff SET last_location = $2::jsonb, updated_at = NOW() WHERE id = $1`,
		staffID, encoded,
	); err != nil {
		return err
	}

	_, err = q.Exec(ctx,
		`INSERT INTO staff_route_points (staff_id, lat, lng, recorded_at) VALUES ($1, $2, $3, $4)`,
		staffID, p.Lat, p.Lng, p.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert staff route point: %w", err)
	}
	return nil
}

// RoutePoints implements staff.StaffRepository.
func (r *staffRepository) RoutePoints(ctx context.Context, staffID string) ([]staff.Location, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT lat, lng, recorded_at
		FROM staff_route_points
		WHERE staff_id = $1
		ORDER BY recorded_at ASC, id ASC
	`, staffID)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff route points: %w", err)
	}
	defer rows.Close()

	out := make([]staff.Location, 0)
	for rows.Next() {
		var p staff.Location
		if err := rows.Scan(&p.Lat, &p.Lng, &p.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan staff route point: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SetSpoofingDetected implements staff.StaffRepository.
func (r *staffRepository) SetSpoofingDetected(ctx context.Context, staffID string, detected bool) error {
	return r.exec(ctx, "failed to set spoofing flag",
		`UPDATE staff SET spoofing_detected = $2, updated_at = NOW() WHERE id = $1`,
		staffID, detected,
	)
}

// UpdateSettings implements staff.StaffRepository.
func (r *staffRepository) UpdateSettings(ctx context.Context, staffID string, req staff.UpdateSettingsRequest) error {
	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Shift != nil {
		updates["shift_start"] = req.Shift.StartTime
		updates["shift_end"] = req.Shift.EndTime
	}
	if len(updates) == 0 {
		return nil
	}

	setClauses := make([]string, 0, len(updates)+1)
	args := make([]interface{}, 0, len(updates)+1)
	i := 1
	for col, val := range updates {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, i))
		args = append(args, val)
		i++
	}
	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, staffID)

	sql := "UPDATE staff SET " + strings.Join(setClauses, ", ") + fmt.Sprintf(" WHERE id = $%d", i)
	return r.exec(ctx, "failed to update staff settings", sql, args...)
}

func (r *staffRepository) exec(ctx context.Context, msg string, sql string, args ...interface{}) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", msg, err)
	}
	if tag.RowsAffected() == 0 {
		return staff.ErrStaffNotFound
	}
	return nil
}
