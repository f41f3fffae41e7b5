package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/staff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testCompanyID = "6f1d8a52-0c3e-4f6b-9a51-2d4c8e7b1a10"
	testStaffID   = "0b7e4c1a-5d2f-4e8a-b3c6-9f1a2e3d4c5b"
)

var testNow = time.Date(2025, time.January, 6, 10, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore()
	store.SetClock(func() time.Time { return testNow })
	store.PutStaff(staff.Staff{ID: testStaffID, CompanyID: testCompanyID, Name: "Sita Sharma"})
	return store
}

func openSession() attendance.Session {
	return attendance.Session{
		StaffID:     testStaffID,
		CompanyID:   testCompanyID,
		CheckInTime: testNow,
		Status:      attendance.StatusPresent,
	}
}

// ===== TRANSACTOR TESTS =====

func TestTransactor_WithinTransaction_CommitKeepsWrites(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	tx := NewTransactor(store)
	sessions := NewSessionRepository(store)
	staffRepo := NewStaffRepository(store)
	loc := staff.Location{Lat: 27.7, Lng: 85.3, Timestamp: testNow}

	err := tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		created, err := sessions.Create(txCtx, openSession())
		if err != nil {
			return err
		}
		return staffRepo.MarkCheckedIn(txCtx, testStaffID, created.ID, loc)
	})

	require.NoError(t, err)
	open, err := sessions.ListOpenByStaff(ctx, testStaffID)
	require.NoError(t, err)
	require.Len(t, open, 1)
	st, err := staffRepo.GetByID(ctx, testStaffID)
	require.NoError(t, err)
	assert.True(t, st.GPSStatus)
	require.NotNil(t, st.ActiveSessionID)
	assert.Equal(t, open[0].ID, *st.ActiveSessionID)
}

func TestTransactor_WithinTransaction_FailedCheckInLeavesNoOpenSession(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	store.PutStaff(staff.Staff{ID: testStaffID, CompanyID: testCompanyID, Name: "Sita Sharma", ActiveSessionID: ptr("stale")})
	tx := NewTransactor(store)
	sessions := NewSessionRepository(store)
	staffRepo := NewStaffRepository(store)
	loc := staff.Location{Lat: 27.7, Lng: 85.3, Timestamp: testNow}

	// Act
	err := tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		created, err := sessions.Create(txCtx, openSession())
		if err != nil {
			return err
		}
		if err := staffRepo.AppendRoutePoint(txCtx, testStaffID, loc); err != nil {
			return err
		}
		return staffRepo.MarkCheckedIn(txCtx, testStaffID, created.ID, loc)
	})

	// Assert
	assert.ErrorIs(t, err, staff.ErrActiveSessionExists)
	open, err := sessions.ListOpenByStaff(ctx, testStaffID)
	require.NoError(t, err)
	assert.Empty(t, open)

	st, err := staffRepo.GetByID(ctx, testStaffID)
	require.NoError(t, err)
	assert.Nil(t, st.LastLocation)
	require.NotNil(t, st.ActiveSessionID)
	assert.Equal(t, "stale", *st.ActiveSessionID)

	route, err := staffRepo.RoutePoints(ctx, testStaffID)
	require.NoError(t, err)
	assert.Empty(t, route)
}

func TestTransactor_WithinTransaction_RollbackRestoresClosedSession(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	tx := NewTransactor(store)
	sessions := NewSessionRepository(store)
	created, err := sessions.Create(ctx, openSession())
	require.NoError(t, err)
	boom := errors.New("boom")

	err = tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := sessions.AppendRoutePoint(txCtx, created.ID, attendance.RoutePoint{Lat: 1, Lng: 1, Timestamp: testNow}); err != nil {
			return err
		}
		closure := attendance.NewClosure(created, testNow.Add(time.Hour), nil, nil)
		if err := sessions.Close(txCtx, created.ID, closure); err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	got, err := sessions.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.IsOpen())
	assert.Empty(t, got.Route)
}

func TestTransactor_WithinTransaction_NestedJoinsOuter(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	tx := NewTransactor(store)
	leaves := NewLeaveRepository(store)
	boom := errors.New("boom")

	err := tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		err := tx.WithinTransaction(txCtx, func(innerCtx context.Context) error {
			_, err := leaves.Create(innerCtx, leave.Leave{StaffID: testStaffID, CompanyID: testCompanyID, Status: leave.StatusPending})
			return err
		})
		if err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	list, total, err := leaves.List(ctx, leave.LeaveFilter{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, total)
}

func TestTransactor_WithinTransaction_PanicRollsBack(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	tx := NewTransactor(store)
	sessions := NewSessionRepository(store)

	assert.Panics(t, func() {
		_ = tx.WithinTransaction(ctx, func(txCtx context.Context) error {
			if _, err := sessions.Create(txCtx, openSession()); err != nil {
				return err
			}
			panic("boom")
		})
	})

	open, err := sessions.ListOpenByStaff(ctx, testStaffID)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestTransactor_WritesOutsideTransactionAreKept(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	sessions := NewSessionRepository(store)

	_, err := sessions.Create(ctx, openSession())
	require.NoError(t, err)

	open, err := sessions.ListOpenByStaff(ctx, testStaffID)
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func ptr[T any](v T) *T {
	return &v
}
