package http

import (
	"net/http"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/handler/http/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler interface {
	Generate(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{reportService: reportService}
}

// Generate implements ReportHandler. With export=excel the report is returned as an .xlsx download.
func (h *reportHandlerImpl) Generate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	req := report.ReportRequest{
		RangeType: report.RangeType(q.Get("rangeType")),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		CompanyID: queryString(r, "companyId"),
		StaffID:   queryString(r, "staffId"),
		Export:    q.Get("export"),
	}

	result, err := h.reportService.GenerateReport(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if req.Export != report.ExportExcel {
		response.Success(w, result)
		return
	}

	file, err := h.reportService.ExportExcel(r.Context(), result, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.File(w, xlsxContentType, file.FileName, file.Content)
}
