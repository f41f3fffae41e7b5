package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/staff"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/repository/memory"
	sysconfigservice "github.com/cmlabs-hris/geoattend-backend-go/internal/service/sysconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const (
	companyA = "6f1d8a52-0c3e-4f6b-9a51-2d4c8e7b1a10"
	companyB = "1a2b3c4d-5e6f-4a7b-8c9d-0e1f2a3b4c5d"
	staffA1  = "0b7e4c1a-5d2f-4e8a-b3c6-9f1a2e3d4c5b"
	staffA2  = "9c2d1e3f-4a5b-4c6d-8e7f-0a1b2c3d4e5f"
	staffB1  = "3e4f5a6b-7c8d-4e9f-a0b1-c2d3e4f5a6b7"
)

// Wednesday 2025-01-08 12:00 UTC.
var now = time.Date(2025, time.January, 8, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T {
	return &v
}

func closedSession(id, staffID, companyID string, checkIn time.Time, hours float64) attendance.Session {
	out := checkIn.Add(time.Duration(hours * float64(time.Hour)))
	return attendance.Session{
		ID: id, StaffID: staffID, CompanyID: companyID,
		CheckInTime: checkIn, CheckOutTime: &out, TotalHours: &hours,
		Status: attendance.StatusPresent,
	}
}

func newService(t *testing.T) *ReportServiceImpl {
	t.Helper()

	store := memory.NewStore()
	store.PutCompany(company.Company{ID: companyA, Name: "Acme Nepal"})
	store.PutCompany(company.Company{ID: companyB, Name: "Himal Traders"})
	store.PutStaff(staff.Staff{ID: staffA1, CompanyID: companyA, Name: "Sita Sharma", Email: "sita@example.com", Phone: ptr("9800000001")})
	store.PutStaff(staff.Staff{ID: staffA2, CompanyID: companyA, Name: "Ram Thapa", Email: "ram@example.com"})
	store.PutStaff(staff.Staff{ID: staffB1, CompanyID: companyB, Name: "Hari Gurung", Email: "hari@example.com"})

	// Sita: two closed sessions today, one spoofed, then an open one.
	store.PutSession(closedSession("s1", staffA1, companyA, now.Add(-4*time.Hour), 1.25))
	spoofed := closedSession("s2", staffA1, companyA, now.Add(-2*time.Hour), 0.5)
	spoofed.IsSpoofed = true
	store.PutSession(spoofed)
	store.PutSession(attendance.Session{ID: "s3", StaffID: staffA1, CompanyID: companyA, CheckInTime: now.Add(-time.Hour)})
	// Hari: one session last month.
	store.PutSession(closedSession("s4", staffB1, companyB, time.Date(2024, time.December, 20, 9, 0, 0, 0, time.UTC), 8))

	configs := memory.NewSystemConfigRepository(store)
	svc := NewReportService(
		memory.NewSessionRepository(store),
		memory.NewStaffRepository(store),
		memory.NewCompanyRepository(store),
		sysconfigservice.NewSystemConfigService(configs, time.UTC),
	).(*ReportServiceImpl)
	svc.now = func() time.Time { return now }
	return svc
}

func rowByStaff(t *testing.T, rep report.StaffReport, staffID string) report.StaffRow {
	t.Helper()
	for _, r := range rep.Attendance {
		if r.StaffID == staffID {
			return r
		}
	}
	t.Fatalf("no row for staff %s", staffID)
	return report.StaffRow{}
}

// ===== RANGE TESTS =====

func TestRange(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name      string
		req       report.ReportRequest
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"daily", report.ReportRequest{RangeType: report.RangeDaily}, day(2025, 1, 8), day(2025, 1, 9)},
		{"weekly starts sunday", report.ReportRequest{RangeType: report.RangeWeekly}, day(2025, 1, 5), day(2025, 1, 12)},
		{"monthly", report.ReportRequest{RangeType: report.RangeMonthly}, day(2025, 1, 1), day(2025, 2, 1)},
		{"yearly", report.ReportRequest{RangeType: report.RangeYearly}, day(2025, 1, 1), day(2026, 1, 1)},
		{
			"explicit dates include end day",
			report.ReportRequest{RangeType: report.RangeDaily, StartDate: "2024-12-01", EndDate: "2024-12-31"},
			day(2024, 12, 1), day(2025, 1, 1),
		},
		{"all time", report.ReportRequest{}, time.Unix(0, 0), now},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := Range(tt.req, now, time.UTC)
			assert.True(t, tt.wantStart.Equal(start), "start: want %s, got %s", tt.wantStart, start)
			assert.True(t, tt.wantEnd.Equal(end), "end: want %s, got %s", tt.wantEnd, end)
		})
	}
}

func TestRange_UsesLocation(t *testing.T) {
	npt := time.FixedZone("NPT", 5*3600+45*60)
	// 20:00 UTC is already the next day in Kathmandu.
	late := time.Date(2025, time.January, 8, 20, 0, 0, 0, time.UTC)

	start, end := Range(report.ReportRequest{RangeType: report.RangeDaily}, late, npt)

	assert.True(t, time.Date(2025, time.January, 9, 0, 0, 0, 0, npt).Equal(start))
	assert.True(t, time.Date(2025, time.January, 10, 0, 0, 0, 0, npt).Equal(end))
}

// ===== ROW TESTS =====

func TestBuildRow(t *testing.T) {
	st := staff.Staff{ID: staffA1, Name: "Sita Sharma", Email: "sita@example.com"}

	t.Run("no sessions", func(t *testing.T) {
		row := buildRow(st, "", nil)
		assert.Equal(t, report.StatusNotCheckedIn, row.Status)
		assert.Equal(t, "0.00", row.WorkingHours)
		assert.Equal(t, report.NotAvailable, row.StaffPhone)
		assert.Equal(t, report.NotAvailable, row.Company)
	})

	t.Run("hours are summed exactly", func(t *testing.T) {
		sessions := []attendance.Session{
			closedSession("a", st.ID, companyA, now.Add(-5*time.Hour), 0.1),
			closedSession("b", st.ID, companyA, now.Add(-3*time.Hour), 0.2),
		}
		row := buildRow(st, "Acme Nepal", sessions)
		assert.Equal(t, "0.30", row.WorkingHours)
		assert.Equal(t, report.StatusCheckedOut, row.Status)
		assert.Equal(t, 2, row.TotalCheckIns)
	})
}

// ===== GENERATE TESTS =====

func TestReportService_GenerateReport_AdminAllCompanies(t *testing.T) {
	svc := newService(t)

	rep, err := svc.GenerateReport(context.Background(), user.Actor{Role: user.RoleAdmin}, report.ReportRequest{RangeType: report.RangeDaily})

	require.NoError(t, err)
	assert.Equal(t, 3, rep.Staffs)
	assert.Len(t, rep.Companies, 2)
	assert.Equal(t, now.Format(time.RFC3339), rep.GeneratedAt)

	sita := rowByStaff(t, rep, staffA1)
	assert.Equal(t, 3, sita.TotalCheckIns)
	assert.Equal(t, 1, sita.Spoofed)
	assert.Equal(t, "1.75", sita.WorkingHours)
	assert.Equal(t, report.StatusCheckedIn, sita.Status)
	assert.Equal(t, "9800000001", sita.StaffPhone)
	assert.Equal(t, "Acme Nepal", sita.Company)

	hari := rowByStaff(t, rep, staffB1)
	assert.Equal(t, 0, hari.TotalCheckIns)
	assert.Equal(t, report.StatusNotCheckedIn, hari.Status)
}

func TestReportService_GenerateReport_CompanyPinnedToOwnCompany(t *testing.T) {
	svc := newService(t)
	actor := user.Actor{CompanyID: companyA, Role: user.RoleCompany}

	rep, err := svc.GenerateReport(context.Background(), actor, report.ReportRequest{CompanyID: ptr(companyB)})

	require.NoError(t, err)
	require.Len(t, rep.Companies, 1)
	assert.Equal(t, companyA, rep.Companies[0].ID)
	assert.Equal(t, 2, rep.Staffs)
}

func TestReportService_GenerateReport_AllTimeIncludesOldSessions(t *testing.T) {
	svc := newService(t)

	rep, err := svc.GenerateReport(context.Background(), user.Actor{Role: user.RoleAdmin}, report.ReportRequest{StaffID: ptr(staffB1)})

	require.NoError(t, err)
	require.Len(t, rep.Attendance, 1)
	assert.Equal(t, "8.00", rep.Attendance[0].WorkingHours)
	assert.Equal(t, report.StatusCheckedOut, rep.Attendance[0].Status)
}

func TestReportService_GenerateReport_Errors(t *testing.T) {
	admin := user.Actor{Role: user.RoleAdmin}

	tests := []struct {
		name    string
		actor   user.Actor
		req     report.ReportRequest
		wantErr error
	}{
		{"staff forbidden", user.Actor{StaffID: staffA1, CompanyID: companyA, Role: user.RoleStaff}, report.ReportRequest{}, report.ErrForbidden},
		{"unknown company", admin, report.ReportRequest{CompanyID: ptr("7d8e9f0a-1b2c-4d3e-8f4a-5b6c7d8e9f0a")}, report.ErrNoCompaniesFound},
		{"unknown staff", admin, report.ReportRequest{StaffID: ptr("7d8e9f0a-1b2c-4d3e-8f4a-5b6c7d8e9f0a")}, report.ErrNoStaffFound},
		{
			"staff of another company",
			user.Actor{CompanyID: companyA, Role: user.RoleCompany},
			report.ReportRequest{StaffID: ptr(staffB1)},
			report.ErrNoStaffFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(t)
			_, err := svc.GenerateReport(context.Background(), tt.actor, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestReportService_GenerateReport_ValidationError(t *testing.T) {
	svc := newService(t)
	admin := user.Actor{Role: user.RoleAdmin}

	tests := []report.ReportRequest{
		{RangeType: "hourly"},
		{StartDate: "2025-01-10", EndDate: "2025-01-01"},
		{StartDate: "2025-01-10"},
		{CompanyID: ptr("not-a-uuid")},
		{Export: "pdf"},
	}

	for _, req := range tests {
		_, err := svc.GenerateReport(context.Background(), admin, req)
		var verrs validator.ValidationErrors
		assert.ErrorAs(t, err, &verrs, "request %+v", req)
	}
}

// ===== EXCEL TESTS =====

func TestReportService_ExportExcel(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	req := report.ReportRequest{RangeType: report.RangeDaily, CompanyID: ptr(companyA), Export: report.ExportExcel}

	rep, err := svc.GenerateReport(ctx, user.Actor{Role: user.RoleAdmin}, req)
	require.NoError(t, err)

	// Act
	file, err := svc.ExportExcel(ctx, rep, req)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Staff_Report_Acme_Nepal_All_2025-01-08.xlsx", file.FileName)

	wb, err := excelize.OpenReader(bytes.NewReader(file.Content))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("Staff Report")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Staff Name", "Email", "Phone", "Company", "Total Check-Ins", "Spoofed Attempts", "Working Hours", "Status"}, rows[0])
	assert.Equal(t, "Ram Thapa", rows[1][0])
	assert.Equal(t, "Sita Sharma", rows[2][0])
	assert.Equal(t, "1.75", rows[2][6])

	width, err := wb.GetColWidth("Staff Report", "B")
	require.NoError(t, err)
	assert.Equal(t, 30.0, width)
}

func TestExcelFileName(t *testing.T) {
	rep := report.StaffReport{Companies: []report.CompanySummary{{ID: companyA, Name: "Acme  Nepal Pvt"}}}

	assert.Equal(t, "Staff_Report_Acme_Nepal_Pvt_All_2025-01-08.xlsx", excelFileName(rep, report.ReportRequest{}, "2025-01-08"))
	assert.Equal(t, "Staff_Report_Acme_Nepal_Pvt_"+staffA1+"_2025-01-08.xlsx",
		excelFileName(rep, report.ReportRequest{StaffID: ptr(staffA1)}, "2025-01-08"))
	assert.Equal(t, "Staff_Report_All_All_2025-01-08.xlsx", excelFileName(report.StaffReport{}, report.ReportRequest{}, "2025-01-08"))
}
