package tracking

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/staff"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/sysconfig"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/tracking"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/user"
)

type TrackingServiceImpl struct {
	staff.StaffRepository
	attendance.SessionRepository
	company.CompanyRepository
	resolver sysconfig.Resolver
}

func NewTrackingService(
	staffRepo staff.StaffRepository,
	sessionRepo attendance.SessionRepository,
	companyRepo company.CompanyRepository,
	resolver sysconfig.Resolver,
) tracking.TrackingService {
	return &TrackingServiceImpl{
		StaffRepository:   staffRepo,
		SessionRepository: sessionRepo,
		CompanyRepository: companyRepo,
		resolver:          resolver,
	}
}

// ListLiveLocations implements tracking.TrackingService.
func (t *TrackingServiceImpl) ListLiveLocations(ctx context.Context, actor user.Actor) (tracking.LiveLocationsResponse, error) {
	var (
		companyID *string
		limit     int
		policy    sysconfig.Policy
	)
	switch {
	case actor.IsPlatformAdmin():
		policy = t.resolver.Resolve(ctx, actor.Role, "")
		limit = policy.StaffLimitPerCompany
	case actor.IsCompany():
		if actor.CompanyID == "" {
			return tracking.LiveLocationsResponse{}, user.ErrCompanyIDRequired
		}
		companyID = &actor.CompanyID
		policy = t.resolver.Resolve(ctx, actor.Role, actor.CompanyID)
	default:
		return tracking.LiveLocationsResponse{}, tracking.ErrForbidden
	}

	checkedIn, err := t.StaffRepository.ListCheckedIn(ctx, companyID, limit)
	if err != nil {
		return tracking.LiveLocationsResponse{}, fmt.Errorf("failed to list checked-in staff: %w", err)
	}

	companyNames := make(map[string]string)
	data := make([]tracking.LiveLocation, 0, len(checkedIn))
	for _, st := range checkedIn {
		name, ok := companyNames[st.CompanyID]
		if !ok {
			name = tracking.UnknownCompanyName
			if c, err := t.CompanyRepository.GetByID(ctx, st.CompanyID); err == nil {
				name = c.Name
			}
			companyNames[st.CompanyID] = name
		}

		entry, err := t.liveLocation(ctx, st)
		if err != nil {
			return tracking.LiveLocationsResponse{}, err
		}
		entry.Company = name
		data = append(data, entry)
	}

	return tracking.LiveLocationsResponse{
		Data:   data,
		Config: sysconfig.NewConfigEcho(policy),
	}, nil
}

func (t *TrackingServiceImpl) liveLocation(ctx context.Context, st staff.Staff) (tracking.LiveLocation, error) {
	open, err := t.SessionRepository.ListOpenByStaff(ctx, st.ID)
	if err != nil {
		return tracking.LiveLocation{}, fmt.Errorf("failed to get open session: %w", err)
	}
	route, err := t.StaffRepository.RoutePoints(ctx, st.ID)
	if err != nil {
		return tracking.LiveLocation{}, fmt.Errorf("failed to get route points: %w", err)
	}

	entry := tracking.LiveLocation{
		StaffID:      st.ID,
		Name:         st.Name,
		Phone:        st.Phone,
		CompanyID:    st.CompanyID,
		GPSStatus:    st.GPSStatus,
		LastCheckIn:  st.LastCheckIn,
		LastCheckOut: st.LastCheckOut,
		IsSpoofed:    st.SpoofingDetected,
		RoutePoints:  route,
	}

	var session *attendance.Session
	if len(open) > 0 {
		session = &open[0]
		checkIn := session.CheckInTime
		entry.LastCheckIn = &checkIn
		if session.IsSpoofed {
			entry.IsSpoofed = true
			entry.SpoofReason = session.SpoofReason
		}
	}
	if entry.IsSpoofed && entry.SpoofReason == nil {
		reason := attendance.ReasonSpoofing
		entry.SpoofReason = &reason
	}

	entry.Location, entry.LocationSource = latestLocation(st, session)
	return entry, nil
}

// latestLocation picks the newest route point of the open session, then the
// last known location, then the check-in location, then the fallback point.
func latestLocation(st staff.Staff, session *attendance.Session) (staff.Location, tracking.LocationSource) {
	if session != nil {
		if p := session.LastRoutePoint(); p != nil {
			return staff.Location{Lat: p.Lat, Lng: p.Lng, Timestamp: p.Timestamp}, tracking.SourceRoute
		}
	}
	if st.LastLocation != nil {
		return *st.LastLocation, tracking.SourceLast
	}
	if st.LastCheckInLocation != nil {
		return *st.LastCheckInLocation, tracking.SourceCheckIn
	}
	return staff.Location{Lat: tracking.FallbackLat, Lng: tracking.FallbackLng}, tracking.SourceFallback
}
