package tracking

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/staff"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/sysconfig"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/tracking"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/repository/memory"
	sysconfigservice "github.com/cmlabs-hris/geoattend-backend-go/internal/service/sysconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	companyA = "6f1d8a52-0c3e-4f6b-9a51-2d4c8e7b1a10"
	companyB = "1a2b3c4d-5e6f-4a7b-8c9d-0e1f2a3b4c5d"
)

var baseTime = time.Date(2025, time.January, 6, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store   *memory.Store
	configs sysconfig.SystemConfigRepository
	service tracking.TrackingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.SetClock(func() time.Time { return baseTime })
	store.PutCompany(company.Company{ID: companyA, Name: "Acme Nepal"})
	store.PutCompany(company.Company{ID: companyB, Name: "Himal Traders"})

	configs := memory.NewSystemConfigRepository(store)
	svc := NewTrackingService(
		memory.NewStaffRepository(store),
		memory.NewSessionRepository(store),
		memory.NewCompanyRepository(store),
		sysconfigservice.NewSystemConfigService(configs, time.UTC),
	)
	return &fixture{store: store, configs: configs, service: svc}
}

func (f *fixture) checkedIn(id, companyID string, at time.Time) staff.Staff {
	st := staff.Staff{
		ID:              id,
		CompanyID:       companyID,
		Name:            "Staff " + id,
		GPSStatus:       true,
		LastCheckIn:     &at,
		ActiveSessionID: &id,
	}
	f.store.PutStaff(st)
	return st
}

func TestTrackingService_ListLiveLocations_CompanyScope(t *testing.T) {
	f := newFixture(t)
	f.checkedIn("a1", companyA, baseTime)
	f.checkedIn("b1", companyB, baseTime)
	f.store.PutStaff(staff.Staff{ID: "a2", CompanyID: companyA, Name: "Checked out"})

	resp, err := f.service.ListLiveLocations(context.Background(), user.Actor{CompanyID: companyA, Role: user.RoleCompany})

	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "a1", resp.Data[0].StaffID)
	assert.Equal(t, "Acme Nepal", resp.Data[0].Company)
	assert.True(t, resp.Data[0].GPSStatus)
	assert.Equal(t, sysconfig.DefaultLocationTrackingInterval, resp.Config.LocationTrackingInterval)
}

func TestTrackingService_ListLiveLocations_AdminSeesAllUpToLimit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.checkedIn("a1", companyA, baseTime.Add(-3*time.Hour))
	f.checkedIn("a2", companyA, baseTime.Add(-1*time.Hour))
	f.checkedIn("b1", companyB, baseTime.Add(-2*time.Hour))

	limit := 2
	_, err := f.configs.Upsert(ctx, sysconfig.SystemConfig{Type: sysconfig.ConfigTypeAdmin, StaffLimitPerCompany: &limit})
	require.NoError(t, err)

	resp, err := f.service.ListLiveLocations(ctx, user.Actor{Role: user.RoleAdmin})

	require.NoError(t, err)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "a2", resp.Data[0].StaffID)
	assert.Equal(t, "b1", resp.Data[1].StaffID)
	assert.Equal(t, "Himal Traders", resp.Data[1].Company)
	assert.Equal(t, 2, resp.Config.StaffLimitPerCompany)
}

func TestTrackingService_ListLiveLocations_Forbidden(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.ListLiveLocations(context.Background(), user.Actor{StaffID: "s1", CompanyID: companyA, Role: user.RoleStaff})

	assert.ErrorIs(t, err, tracking.ErrForbidden)
}

func TestTrackingService_ListLiveLocations_UnknownCompany(t *testing.T) {
	f := newFixture(t)
	f.checkedIn("z1", "deleted-company", baseTime)

	resp, err := f.service.ListLiveLocations(context.Background(), user.Actor{Role: user.RoleAdminStaff})

	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, tracking.UnknownCompanyName, resp.Data[0].Company)
}

func TestTrackingService_ListLiveLocations_LocationFallbacks(t *testing.T) {
	actor := user.Actor{CompanyID: companyA, Role: user.RoleCompany}

	t.Run("route point of open session", func(t *testing.T) {
		f := newFixture(t)
		st := f.checkedIn("a1", companyA, baseTime)
		st.LastLocation = &staff.Location{Lat: 1, Lng: 1, Timestamp: baseTime}
		f.store.PutStaff(st)
		f.store.PutSession(attendance.Session{
			ID: "sess", StaffID: "a1", CompanyID: companyA, CheckInTime: baseTime,
			Route: []attendance.RoutePoint{{Lat: 27.70, Lng: 85.31, Timestamp: baseTime.Add(5 * time.Minute)}},
		})

		resp, err := f.service.ListLiveLocations(context.Background(), actor)

		require.NoError(t, err)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, tracking.SourceRoute, resp.Data[0].LocationSource)
		assert.Equal(t, 27.70, resp.Data[0].Location.Lat)
	})

	t.Run("last location", func(t *testing.T) {
		f := newFixture(t)
		st := f.checkedIn("a1", companyA, baseTime)
		st.LastLocation = &staff.Location{Lat: 27.68, Lng: 85.32, Timestamp: baseTime}
		f.store.PutStaff(st)

		resp, err := f.service.ListLiveLocations(context.Background(), actor)

		require.NoError(t, err)
		assert.Equal(t, tracking.SourceLast, resp.Data[0].LocationSource)
		assert.Equal(t, 27.68, resp.Data[0].Location.Lat)
	})

	t.Run("check-in location", func(t *testing.T) {
		f := newFixture(t)
		st := f.checkedIn("a1", companyA, baseTime)
		st.LastCheckInLocation = &staff.Location{Lat: 27.66, Lng: 85.33, Timestamp: baseTime}
		f.store.PutStaff(st)

		resp, err := f.service.ListLiveLocations(context.Background(), actor)

		require.NoError(t, err)
		assert.Equal(t, tracking.SourceCheckIn, resp.Data[0].LocationSource)
	})

	t.Run("fallback point", func(t *testing.T) {
		f := newFixture(t)
		f.checkedIn("a1", companyA, baseTime)

		resp, err := f.service.ListLiveLocations(context.Background(), actor)

		require.NoError(t, err)
		assert.Equal(t, tracking.SourceFallback, resp.Data[0].LocationSource)
		assert.Equal(t, tracking.FallbackLat, resp.Data[0].Location.Lat)
		assert.Equal(t, tracking.FallbackLng, resp.Data[0].Location.Lng)
	})
}

func TestTrackingService_ListLiveLocations_SpoofFlags(t *testing.T) {
	actor := user.Actor{CompanyID: companyA, Role: user.RoleCompany}

	t.Run("session reason wins", func(t *testing.T) {
		f := newFixture(t)
		f.checkedIn("a1", companyA, baseTime)
		reason := attendance.SpoofReasonCheckIn
		f.store.PutSession(attendance.Session{
			ID: "sess", StaffID: "a1", CompanyID: companyA,
			CheckInTime: baseTime.Add(-time.Minute), IsSpoofed: true, SpoofReason: &reason,
		})

		resp, err := f.service.ListLiveLocations(context.Background(), actor)

		require.NoError(t, err)
		assert.True(t, resp.Data[0].IsSpoofed)
		require.NotNil(t, resp.Data[0].SpoofReason)
		assert.Equal(t, attendance.SpoofReasonCheckIn, *resp.Data[0].SpoofReason)
		require.NotNil(t, resp.Data[0].LastCheckIn)
		assert.Equal(t, baseTime.Add(-time.Minute), *resp.Data[0].LastCheckIn)
	})

	t.Run("sticky staff flag", func(t *testing.T) {
		f := newFixture(t)
		st := f.checkedIn("a1", companyA, baseTime)
		st.SpoofingDetected = true
		f.store.PutStaff(st)

		resp, err := f.service.ListLiveLocations(context.Background(), actor)

		require.NoError(t, err)
		assert.True(t, resp.Data[0].IsSpoofed)
		require.NotNil(t, resp.Data[0].SpoofReason)
		assert.Equal(t, attendance.ReasonSpoofing, *resp.Data[0].SpoofReason)
	})
}
