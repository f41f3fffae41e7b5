package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/report"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Staff Report"

var excelColumns = []struct {
	header string
	width  float64
}{
	{"Staff Name", 25},
	{"Email", 30},
	{"Phone", 15},
	{"Company", 25},
	{"Total Check-Ins", 15},
	{"Spoofed Attempts", 15},
	{"Working Hours", 15},
	{"Status", 15},
}

// ExportExcel implements report.ReportService.
func (s *ReportServiceImpl) ExportExcel(ctx context.Context, rep report.StaffReport, req report.ReportRequest) (report.ExcelFile, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return report.ExcelFile{}, fmt.Errorf("failed to name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return report.ExcelFile{}, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, col := range excelColumns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return report.ExcelFile{}, err
		}
		if err := f.SetColWidth(sheetName, name, name, col.width); err != nil {
			return report.ExcelFile{}, fmt.Errorf("failed to set column width: %w", err)
		}
		if err := f.SetCellValue(sheetName, name+"1", col.header); err != nil {
			return report.ExcelFile{}, fmt.Errorf("failed to write header: %w", err)
		}
	}
	if err := f.SetRowStyle(sheetName, 1, 1, bold); err != nil {
		return report.ExcelFile{}, fmt.Errorf("failed to style header: %w", err)
	}

	for i, row := range rep.Attendance {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return report.ExcelFile{}, err
		}
		values := []interface{}{
			row.StaffName,
			row.StaffEmail,
			row.StaffPhone,
			row.Company,
			row.TotalCheckIns,
			row.Spoofed,
			row.WorkingHours,
			row.Status,
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return report.ExcelFile{}, fmt.Errorf("failed to write row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return report.ExcelFile{}, fmt.Errorf("failed to render workbook: %w", err)
	}

	return report.ExcelFile{
		FileName: excelFileName(rep, req, s.now().Format("2006-01-02")),
		Content:  buf.Bytes(),
	}, nil
}

func excelFileName(rep report.StaffReport, req report.ReportRequest, date string) string {
	companyName := "All"
	if len(rep.Companies) > 0 {
		companyName = strings.Join(strings.Fields(rep.Companies[0].Name), "_")
	}
	staffPart := "All"
	if req.StaffID != nil {
		staffPart = *req.StaffID
	}
	return fmt.Sprintf("Staff_Report_%s_%s_%s.xlsx", companyName, staffPart, date)
}
