package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

// ===== LEAVE REPOSITORY TESTS =====

func TestLeaveRepository_CreateAndApprove(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	companyID := setup.createCompany(t, "Acme")
	staffID := setup.createStaff(t, companyID, "sita")
	repo := postgresql.NewLeaveRepository(setup.DB)

	created, err := repo.Create(ctx, leave.Leave{
		StaffID:   staffID,
		CompanyID: companyID,
		StartDate: date("2025-01-06"),
		EndDate:   date("2025-01-08"),
		Reason:    leave.DefaultReason,
		Status:    leave.StatusPending,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	covered, err := repo.HasApprovedLeaveOn(ctx, staffID, "2025-01-07")
	require.NoError(t, err)
	assert.False(t, covered, "pending leave does not block")

	approved, err := repo.UpdateStatus(ctx, created.ID, leave.StatusApproved, "reviewer-1", date("2025-01-05"))
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, approved.Status)
	assert.Equal(t, "reviewer-1", *approved.ReviewedBy)

	for day, want := range map[string]bool{
		"2025-01-05": false,
		"2025-01-06": true,
		"2025-01-08": true,
		"2025-01-09": false,
	} {
		got, err := repo.HasApprovedLeaveOn(ctx, staffID, day)
		require.NoError(t, err)
		assert.Equal(t, want, got, day)
	}

	_, err = repo.UpdateStatus(ctx, created.ID, leave.StatusRejected, "reviewer-2", date("2025-01-05"))
	assert.ErrorIs(t, err, leave.ErrLeaveRequestAlreadyProcessed)

	_, err = repo.UpdateStatus(ctx, "6f1d8a52-0c3e-4f6b-9a51-2d4c8e7b1a10", leave.StatusRejected, "reviewer-2", date("2025-01-05"))
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)
}

func TestLeaveRepository_ListAndDelete(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	companyA := setup.createCompany(t, "Acme")
	companyB := setup.createCompany(t, "Globex")
	sita := setup.createStaff(t, companyA, "sita")
	ram := setup.createStaff(t, companyB, "ram")
	repo := postgresql.NewLeaveRepository(setup.DB)

	var ids []string
	for _, owner := range []struct{ staff, company string }{{sita, companyA}, {sita, companyA}, {ram, companyB}} {
		l, err := repo.Create(ctx, leave.Leave{
			StaffID: owner.staff, CompanyID: owner.company,
			StartDate: date("2025-02-01"), EndDate: date("2025-02-01"),
			Reason: "trip", Status: leave.StatusPending,
		})
		require.NoError(t, err)
		ids = append(ids, l.ID)
	}

	leaves, total, err := repo.List(ctx, leave.LeaveFilter{CompanyID: &companyA, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, leaves, 1)

	pending := leave.StatusPending
	_, total, err = repo.List(ctx, leave.LeaveFilter{Status: &pending, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	require.NoError(t, repo.Delete(ctx, ids[2]))
	assert.ErrorIs(t, repo.Delete(ctx, ids[2]), leave.ErrLeaveRequestNotFound)

	_, err = repo.GetByID(ctx, ids[2])
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)
}
