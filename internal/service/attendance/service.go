package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/staff"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/sysconfig"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/tracking"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/pkg/geo"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/pkg/geocode"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/pkg/keymutex"
)

const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100
)

type AttendanceServiceImpl struct {
	tx database.Transactor
	attendance.SessionRepository
	staff.StaffRepository
	company.CompanyRepository
	leave.LeaveRepository

	resolver  sysconfig.Resolver
	enforcer  attendance.Enforcer
	geocoder  geocode.Geocoder
	detector  geo.SpoofDetector
	publisher tracking.Publisher
	locks     *keymutex.KeyMutex
	now       func() time.Time
}

// Option customizes an AttendanceServiceImpl.
type Option func(*AttendanceServiceImpl)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *AttendanceServiceImpl) { a.now = now }
}

// WithDetector replaces the default spoof detector.
func WithDetector(d geo.SpoofDetector) Option {
	return func(a *AttendanceServiceImpl) { a.detector = d }
}

// WithPublisher sends check-in, location and check-out events to p.
func WithPublisher(p tracking.Publisher) Option {
	return func(a *AttendanceServiceImpl) { a.publisher = p }
}

func NewAttendanceService(
	tx database.Transactor,
	sessionRepo attendance.SessionRepository,
	staffRepo staff.StaffRepository,
	companyRepo company.CompanyRepository,
	leaveRepo leave.LeaveRepository,
	resolver sysconfig.Resolver,
	enforcer attendance.Enforcer,
	geocoder geocode.Geocoder,
	locks *keymutex.KeyMutex,
	opts ...Option,
) attendance.AttendanceService {
	a := &AttendanceServiceImpl{
		tx:                tx,
		SessionRepository: sessionRepo,
		StaffRepository:   staffRepo,
		CompanyRepository: companyRepo,
		LeaveRepository:   leaveRepo,
		resolver:          resolver,
		enforcer:          enforcer,
		geocoder:          geocoder,
		detector:          geo.NewDefaultDetector(),
		publisher:         noopPublisher{},
		locks:             locks,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// CheckIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.SessionRecord, error) {
	if err := req.Validate(); err != nil {
		return attendance.SessionRecord{}, err
	}
	now := a.now()
	lat, lng := *req.Lat, *req.Lng

	st, err := a.StaffRepository.GetByID(ctx, req.StaffID)
	if err != nil {
		return attendance.SessionRecord{}, fmt.Errorf("failed to get staff: %w", err)
	}
	policy := a.resolver.Resolve(ctx, user.RoleStaff, st.CompanyID)

	unlock := a.locks.Lock(st.ID)
	defer unlock()

	if _, err := a.enforcer.EnforceStaleSession(ctx, st.ID); err != nil {
		return attendance.SessionRecord{}, err
	}
	if err := a.checkAttendancePolicy(ctx, policy, st.ID, now); err != nil {
		return attendance.SessionRecord{}, err
	}
	if err := a.checkAllowedArea(ctx, st.CompanyID, lat, lng); err != nil {
		return attendance.SessionRecord{}, err
	}

	session := attendance.Session{
		StaffID:     st.ID,
		CompanyID:   st.CompanyID,
		CheckInTime: now,
		CheckInLocation: attendance.Location{
			Lat:     lat,
			Lng:     lng,
			Address: a.geocoder.ReverseGeocode(ctx, lat, lng),
		},
		Route:  []attendance.RoutePoint{},
		Status: attendance.StatusPresent,
	}

	if policy.EnableFakeLocationDetection {
		var previous *geo.TrackPoint
		if st.LastLocation != nil {
			previous = &geo.TrackPoint{Lat: st.LastLocation.Lat, Lng: st.LastLocation.Lng, Timestamp: st.LastLocation.Timestamp}
		}
		if spoofed, detail := a.detector.Detect(geo.TrackPoint{Lat: lat, Lng: lng, Timestamp: now}, previous); spoofed {
			reason := attendance.SpoofReasonCheckIn
			session.IsSpoofed = true
			session.SpoofReason = &reason
			slog.Warn("spoofed check-in", "staff_id", st.ID, "detail", detail)
		}
	}

	snapshot := staff.Location{Lat: lat, Lng: lng, Timestamp: now}
	var created attendance.Session
	err = a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		current, err := a.StaffRepository.GetByIDForUpdate(txCtx, st.ID)
		if err != nil {
			return fmt.Errorf("failed to lock staff: %w", err)
		}
		if current.IsCheckedIn() {
			return attendance.ErrAlreadyCheckedIn
		}

		created, err = a.SessionRepository.Create(txCtx, session)
		if err != nil {
			if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
				return err
			}
			return fmt.Errorf("failed to create session: %w", err)
		}

		if err := a.StaffRepository.MarkCheckedIn(txCtx, st.ID, created.ID, snapshot); err != nil {
			if errors.Is(err, staff.ErrActiveSessionExists) {
				return attendance.ErrAlreadyCheckedIn
			}
			return fmt.Errorf("failed to mark staff checked in: %w", err)
		}
		if err := a.StaffRepository.AppendRoutePoint(txCtx, st.ID, snapshot); err != nil {
			return fmt.Errorf("failed to append staff route point: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.SessionRecord{}, err
	}

	a.publisher.Publish(created.CompanyID, tracking.EventCheckIn, tracking.LiveEvent{
		StaffID:   created.StaffID,
		CompanyID: created.CompanyID,
		SessionID: created.ID,
		Location:  &snapshot,
		IsSpoofed: created.IsSpoofed,
		Reason:    created.SpoofReason,
	})

	return attendance.NewSessionRecord(created), nil
}

// CheckOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.SessionRecord, error) {
	if err := req.Validate(); err != nil {
		return attendance.SessionRecord{}, err
	}
	now := a.now()
	lat, lng := *req.Lat, *req.Lng

	st, err := a.StaffRepository.GetByID(ctx, req.StaffID)
	if err != nil {
		return attendance.SessionRecord{}, fmt.Errorf("failed to get staff: %w", err)
	}
	policy := a.resolver.Resolve(ctx, user.RoleStaff, st.CompanyID)

	unlock := a.locks.Lock(st.ID)
	defer unlock()

	if _, err := a.enforcer.EnforceStaleSession(ctx, st.ID); err != nil {
		return attendance.SessionRecord{}, err
	}
	if err := a.checkAttendancePolicy(ctx, policy, st.ID, now); err != nil {
		return attendance.SessionRecord{}, err
	}
	if err := a.checkAllowedArea(ctx, st.CompanyID, lat, lng); err != nil {
		return attendance.SessionRecord{}, err
	}

	current, err := a.StaffRepository.GetByID(ctx, st.ID)
	if err != nil {
		return attendance.SessionRecord{}, fmt.Errorf("failed to get staff: %w", err)
	}
	if !current.GPSStatus {
		return attendance.SessionRecord{}, attendance.ErrNoActiveSession
	}
	open, err := a.SessionRepository.ListOpenByStaff(ctx, st.ID)
	if err != nil {
		return attendance.SessionRecord{}, fmt.Errorf("failed to get open session: %w", err)
	}
	if len(open) == 0 {
		return attendance.SessionRecord{}, attendance.ErrNoActiveSession
	}
	session := open[0]

	checkOutLocation := attendance.Location{
		Lat:     lat,
		Lng:     lng,
		Address: a.geocoder.ReverseGeocode(ctx, lat, lng),
	}
	snapshot := staff.Location{Lat: lat, Lng: lng, Timestamp: now}
	closure := attendance.NewClosure(session, now, &checkOutLocation, nil)
	err = a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := a.SessionRepository.Close(txCtx, session.ID, closure); err != nil {
			if errors.Is(err, attendance.ErrSessionClosed) {
				return attendance.ErrNoActiveSession
			}
			return fmt.Errorf("failed to close session: %w", err)
		}
		if err := a.StaffRepository.MarkCheckedOut(txCtx, st.ID, now, &snapshot); err != nil {
			return fmt.Errorf("failed to mark staff checked out: %w", err)
		}
		if err := a.StaffRepository.AppendRoutePoint(txCtx, st.ID, snapshot); err != nil {
			return fmt.Errorf("failed to append staff route point: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.SessionRecord{}, err
	}

	closed, err := a.SessionRepository.GetByID(ctx, session.ID)
	if err != nil {
		return attendance.SessionRecord{}, fmt.Errorf("failed to get closed session: %w", err)
	}

	a.publisher.Publish(closed.CompanyID, tracking.EventCheckOut, tracking.LiveEvent{
		StaffID:   closed.StaffID,
		CompanyID: closed.CompanyID,
		SessionID: closed.ID,
		Location:  &snapshot,
		IsSpoofed: closed.IsSpoofed,
	})

	return attendance.NewSessionRecord(closed), nil
}

// UpdateLocation implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) UpdateLocation(ctx context.Context, req attendance.UpdateLocationRequest) (attendance.LocationUpdateResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.LocationUpdateResponse{}, err
	}
	now := a.now()
	lat, lng := *req.Lat, *req.Lng

	st, err := a.StaffRepository.GetByID(ctx, req.StaffID)
	if err != nil {
		return attendance.LocationUpdateResponse{}, fmt.Errorf("failed to get staff: %w", err)
	}
	policy := a.resolver.Resolve(ctx, user.RoleStaff, st.CompanyID)

	unlock := a.locks.Lock(st.ID)
	defer unlock()

	if _, err := a.enforcer.EnforceStaleSession(ctx, st.ID); err != nil {
		return attendance.LocationUpdateResponse{}, err
	}

	current, err := a.StaffRepository.GetByID(ctx, st.ID)
	if err != nil {
		return attendance.LocationUpdateResponse{}, fmt.Errorf("failed to get staff: %w", err)
	}
	if !current.GPSStatus {
		return attendance.LocationUpdateResponse{}, attendance.ErrNotCheckedIn
	}
	open, err := a.SessionRepository.ListOpenByStaff(ctx, st.ID)
	if err != nil {
		return attendance.LocationUpdateResponse{}, fmt.Errorf("failed to get open session: %w", err)
	}
	if len(open) == 0 {
		return attendance.LocationUpdateResponse{}, attendance.ErrNotCheckedIn
	}
	session := open[0]

	point := attendance.RoutePoint{
		Lat:       lat,
		Lng:       lng,
		Accuracy:  req.Accuracy,
		Speed:     req.Speed,
		Timestamp: now,
	}

	spoofed := false
	if policy.EnableFakeLocationDetection {
		previous := &geo.TrackPoint{Lat: session.CheckInLocation.Lat, Lng: session.CheckInLocation.Lng, Timestamp: session.CheckInTime}
		if last := session.LastRoutePoint(); last != nil {
			previous = &geo.TrackPoint{Lat: last.Lat, Lng: last.Lng, Timestamp: last.Timestamp}
		}
		var detail string
		spoofed, detail = a.detector.Detect(geo.TrackPoint{Lat: lat, Lng: lng, Timestamp: now}, previous)
		if spoofed {
			slog.Warn("spoofed location update", "staff_id", st.ID, "session_id", session.ID, "detail", detail)
		}
	}

	snapshot := staff.Location{Lat: lat, Lng: lng, Timestamp: now}
	err = a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := a.SessionRepository.AppendRoutePoint(txCtx, session.ID, point); err != nil {
			if errors.Is(err, attendance.ErrSessionClosed) {
				return attendance.ErrNotCheckedIn
			}
			return fmt.Errorf("failed to append session route point: %w", err)
		}
		if spoofed {
			if err := a.SessionRepository.MarkSpoofed(txCtx, session.ID, attendance.SpoofReasonTracking); err != nil {
				return fmt.Errorf("failed to flag session: %w", err)
			}
			if err := a.StaffRepository.SetSpoofingDetected(txCtx, st.ID, true); err != nil {
				return fmt.Errorf("failed to flag staff: %w", err)
			}
		}
		if err := a.StaffRepository.AppendRoutePoint(txCtx, st.ID, snapshot); err != nil {
			return fmt.Errorf("failed to append staff route point: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.LocationUpdateResponse{}, err
	}

	eventType := tracking.EventLocationUpdate
	if spoofed {
		eventType = tracking.EventSpoofDetected
	}
	a.publisher.Publish(session.CompanyID, eventType, tracking.LiveEvent{
		StaffID:   st.ID,
		CompanyID: session.CompanyID,
		SessionID: session.ID,
		Location:  &snapshot,
		IsSpoofed: spoofed || session.IsSpoofed,
	})

	return attendance.LocationUpdateResponse{Lat: lat, Lng: lng, IsSpoof: spoofed}, nil
}

// GetRoute implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetRoute(ctx context.Context, staffID string, companyID string) ([]attendance.SessionRecord, error) {
	if staffID == "" {
		return nil, user.ErrStaffIDRequired
	}
	policy := a.resolver.Resolve(ctx, user.RoleStaff, companyID)
	from, to := policy.DayBounds(a.now())

	sessions, err := a.SessionRepository.ListByStaffBetween(ctx, staffID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list today's sessions: %w", err)
	}

	records := make([]attendance.SessionRecord, 0, len(sessions))
	for _, s := range sessions {
		records = append(records, attendance.NewSessionRecord(s))
	}
	return records, nil
}

// GetHistory implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetHistory(ctx context.Context, staffID string, companyID string, page, limit int) (attendance.HistoryResponse, error) {
	if staffID == "" {
		return attendance.HistoryResponse{}, user.ErrStaffIDRequired
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	policy := a.resolver.Resolve(ctx, user.RoleStaff, companyID)

	sessions, total, err := a.SessionRepository.ListByStaff(ctx, staffID, (page-1)*limit, limit)
	if err != nil {
		return attendance.HistoryResponse{}, fmt.Errorf("failed to list sessions: %w", err)
	}

	records := make([]attendance.SessionRecord, 0, len(sessions))
	for _, s := range sessions {
		record := attendance.NewSessionRecord(s)
		record.Date = s.CheckInTime.In(policy.Location).Format("2006-01-02")
		records = append(records, record)
	}

	return attendance.HistoryResponse{
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		Records:    records,
	}, nil
}

// VerifyLocation implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) VerifyLocation(ctx context.Context, req attendance.VerifyLocationRequest) (attendance.VerifyLocationResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.VerifyLocationResponse{}, err
	}
	lat, lng := *req.Lat, *req.Lng

	if geo.DetectSpoof(lat, lng) {
		return attendance.VerifyLocationResponse{
			Valid:   false,
			IsSpoof: true,
			Message: "Fake location detected",
		}, nil
	}

	resp := attendance.VerifyLocationResponse{Valid: true, Message: "Location valid"}
	if req.CompanyID != "" {
		c, err := a.CompanyRepository.GetByID(ctx, req.CompanyID)
		if err != nil && !errors.Is(err, company.ErrCompanyNotFound) {
			return attendance.VerifyLocationResponse{}, fmt.Errorf("failed to get company: %w", err)
		}
		if err == nil && c.HasHeadquarters() {
			within := geo.IsWithinAllowedArea(lat, lng, *c.HQLat, *c.HQLng, geo.DefaultAllowedRadiusMeters)
			resp.WithinAllowedArea = &within
		}
	}
	resp.City = a.geocoder.ReverseGeocode(ctx, lat, lng)
	return resp, nil
}

// checkAttendancePolicy evaluates holiday, work week and approved leave in that order.
func (a *AttendanceServiceImpl) checkAttendancePolicy(ctx context.Context, policy sysconfig.Policy, staffID string, now time.Time) error {
	if _, ok := policy.Holiday(now); ok {
		return attendance.ErrHolidayBlocked
	}
	if !policy.IsWorkday(now) {
		return attendance.ErrNonWorkingDay
	}

	today := now.In(policy.Location).Format("2006-01-02")
	onLeave, err := a.LeaveRepository.HasApprovedLeaveOn(ctx, staffID, today)
	if err != nil {
		return fmt.Errorf("failed to check approved leave: %w", err)
	}
	if onLeave {
		return attendance.ErrOnApprovedLeave
	}
	return nil
}

// checkAllowedArea enforces the headquarters geofence when the company defines one.
func (a *AttendanceServiceImpl) checkAllowedArea(ctx context.Context, companyID string, lat, lng float64) error {
	c, err := a.CompanyRepository.GetByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, company.ErrCompanyNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get company: %w", err)
	}
	if !c.HasHeadquarters() {
		return nil
	}
	if !geo.IsWithinAllowedArea(lat, lng, *c.HQLat, *c.HQLng, geo.DefaultAllowedRadiusMeters) {
		return attendance.ErrOutsideAllowedArea
	}
	return nil
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, string, tracking.LiveEvent) {}
