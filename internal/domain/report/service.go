package report

import (
	"context"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/user"
)

// ReportService defines the interface for report generation
type ReportService interface {
	// GenerateReport aggregates attendance per staff member over the requested range.
	// Company actors are always restricted to their own company.
	GenerateReport(ctx context.Context, actor user.Actor, req ReportRequest) (StaffReport, error)

	// ExportExcel renders a report as an .xlsx workbook with a "Staff Report" sheet.
	ExportExcel(ctx context.Context, report StaffReport, req ReportRequest) (ExcelFile, error)
}
