package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/staff"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/sysconfig"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/user"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const maxConcurrentStaffQueries = 8

type ReportServiceImpl struct {
	attendance.SessionRepository
	staff.StaffRepository
	company.CompanyRepository
	resolver sysconfig.Resolver
	now      func() time.Time
}

func NewReportService(
	sessionRepo attendance.SessionRepository,
	staffRepo staff.StaffRepository,
	companyRepo company.CompanyRepository,
	resolver sysconfig.Resolver,
) report.ReportService {
	return &ReportServiceImpl{
		SessionRepository: sessionRepo,
		StaffRepository:   staffRepo,
		CompanyRepository: companyRepo,
		resolver:          resolver,
		now:               time.Now,
	}
}

// GenerateReport implements report.ReportService.
func (s *ReportServiceImpl) GenerateReport(ctx context.Context, actor user.Actor, req report.ReportRequest) (report.StaffReport, error) {
	if !user.HasPermission(actor.Role, user.PermissionReportsView) {
		return report.StaffReport{}, report.ErrForbidden
	}
	if err := req.Validate(); err != nil {
		return report.StaffReport{}, err
	}

	// Company accounts only ever see their own company.
	companyID := req.CompanyID
	if actor.IsCompany() {
		if actor.CompanyID == "" {
			return report.StaffReport{}, user.ErrCompanyIDRequired
		}
		companyID = &actor.CompanyID
	}

	companies, err := s.companies(ctx, companyID)
	if err != nil {
		return report.StaffReport{}, err
	}
	staffs, err := s.staff(ctx, companyID, req.StaffID)
	if err != nil {
		return report.StaffReport{}, err
	}

	policyCompany := ""
	if companyID != nil {
		policyCompany = *companyID
	}
	policy := s.resolver.Resolve(ctx, actor.Role, policyCompany)
	from, to := Range(req, s.now(), policy.Location)

	companyNames := make(map[string]string, len(companies))
	for _, c := range companies {
		companyNames[c.ID] = c.Name
	}

	rows := make([]report.StaffRow, len(staffs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentStaffQueries)
	for i, st := range staffs {
		i, st := i, st
		g.Go(func() error {
			sessions, err := s.SessionRepository.ListOverlapping(gctx, attendance.SessionFilter{
				StaffID: &st.ID,
				From:    from,
				To:      to,
			})
			if err != nil {
				return fmt.Errorf("failed to list sessions for staff %s: %w", st.ID, err)
			}
			rows[i] = buildRow(st, companyNames[st.CompanyID], sessions)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report.StaffReport{}, fmt.Errorf("%w: %w", report.ErrReportGenerationFailed, err)
	}

	summaries := make([]report.CompanySummary, 0, len(companies))
	for _, c := range companies {
		summaries = append(summaries, report.CompanySummary{ID: c.ID, Name: c.Name})
	}

	return report.StaffReport{
		Range:       report.DateRange{Start: from, End: to},
		Companies:   summaries,
		Staffs:      len(staffs),
		Attendance:  rows,
		GeneratedAt: s.now().Format(time.RFC3339),
	}, nil
}

func (s *ReportServiceImpl) companies(ctx context.Context, companyID *string) ([]company.Company, error) {
	if companyID != nil {
		c, err := s.CompanyRepository.GetByID(ctx, *companyID)
		if err != nil {
			if errors.Is(err, company.ErrCompanyNotFound) {
				return nil, report.ErrNoCompaniesFound
			}
			return nil, fmt.Errorf("failed to get company: %w", err)
		}
		return []company.Company{c}, nil
	}

	companies, err := s.CompanyRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	if len(companies) == 0 {
		return nil, report.ErrNoCompaniesFound
	}
	return companies, nil
}

func (s *ReportServiceImpl) staff(ctx context.Context, companyID, staffID *string) ([]staff.Staff, error) {
	if staffID != nil {
		st, err := s.StaffRepository.GetByID(ctx, *staffID)
		if err != nil {
			if errors.Is(err, staff.ErrStaffNotFound) {
				return nil, report.ErrNoStaffFound
			}
			return nil, fmt.Errorf("failed to get staff: %w", err)
		}
		if companyID != nil && st.CompanyID != *companyID {
			return nil, report.ErrNoStaffFound
		}
		return []staff.Staff{st}, nil
	}

	staffs, err := s.StaffRepository.List(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	if len(staffs) == 0 {
		return nil, report.ErrNoStaffFound
	}
	return staffs, nil
}

// buildRow summarizes sessions, given oldest first.
func buildRow(st staff.Staff, companyName string, sessions []attendance.Session) report.StaffRow {
	phone := report.NotAvailable
	if st.Phone != nil && *st.Phone != "" {
		phone = *st.Phone
	}
	if companyName == "" {
		companyName = report.NotAvailable
	}

	hours := decimal.Zero
	spoofed := 0
	for _, sess := range sessions {
		if sess.IsSpoofed {
			spoofed++
		}
		if !sess.IsOpen() && sess.TotalHours != nil {
			hours = hours.Add(decimal.NewFromFloat(*sess.TotalHours))
		}
	}

	status := report.StatusNotCheckedIn
	if len(sessions) > 0 {
		status = report.StatusCheckedOut
		if sessions[len(sessions)-1].IsOpen() {
			status = report.StatusCheckedIn
		}
	}

	return report.StaffRow{
		StaffID:       st.ID,
		StaffName:     st.Name,
		StaffEmail:    st.Email,
		StaffPhone:    phone,
		Company:       companyName,
		TotalCheckIns: len(sessions),
		Spoofed:       spoofed,
		WorkingHours:  hours.StringFixed(2),
		Status:        status,
	}
}

// Range resolves the half-open interval [from, to) a request covers in loc.
// Explicit dates include the whole end day. Weeks start on Sunday. With no
// range at all the report spans from the Unix epoch to now.
func Range(req report.ReportRequest, now time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	if req.HasExplicitDates() {
		start, _ := time.ParseInLocation("2006-01-02", req.StartDate, loc)
		end, _ := time.ParseInLocation("2006-01-02", req.EndDate, loc)
		return start, end.AddDate(0, 0, 1)
	}

	switch req.RangeType {
	case report.RangeDaily:
		return today, today.AddDate(0, 0, 1)
	case report.RangeWeekly:
		start := today.AddDate(0, 0, -int(today.Weekday()))
		return start, start.AddDate(0, 0, 7)
	case report.RangeMonthly:
		start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0)
	case report.RangeYearly:
		start := time.Date(local.Year(), time.January, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(1, 0, 0)
	}
	return time.Unix(0, 0).In(loc), now
}
