package handler

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sangkips/dentalbill-api/internal/application/service"
	"github.com/sangkips/dentalbill-api/internal/infrastructure/export"
	"github.com/sangkips/dentalbill-api/internal/presentation/http/dto/response"
)

// ReportHandler handles revenue reporting requests
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// period reads the required from/to days. Both days are inclusive.
func period(c *gin.Context) (time.Time, time.Time, bool) {
	from, to, ok := dateRange(c, "from", "to")
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	if from == nil || to == nil {
		response.BadRequest(c, "from and to are required, expected YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	return *from, *to, true
}

// Revenue handles the revenue summary of a period
// @Summary Revenue Summary
// @Tags reports
// @Security BearerAuth
// @Produce json
// @Param from query string true "First day, YYYY-MM-DD"
// @Param to query string true "Last day, YYYY-MM-DD"
// @Success 200 {object} response.APIResponse
// @Router /reports/revenue [get]
func (h *ReportHandler) Revenue(c *gin.Context) {
	from, to, ok := period(c)
	if !ok {
		return
	}

	summary, err := h.reportService.RevenueSummary(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Revenue summary retrieved successfully", summary)
}

// Export handles downloading the receipts of a period as CSV or XLSX
// @Summary Export Receipts
// @Tags reports
// @Security BearerAuth
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param from query string true "First day, YYYY-MM-DD"
// @Param to query string true "Last day, YYYY-MM-DD"
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200 {file} file
// @Router /reports/receipts/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	format, ok := export.ParseFormat(c.DefaultQuery("format", string(export.FormatCSV)))
	if !ok {
		response.BadRequest(c, "Invalid format, expected csv or xlsx")
		return
	}
	from, to, ok := period(c)
	if !ok {
		return
	}

	// buffered so a failure halfway still produces a JSON error
	var buf bytes.Buffer
	if err := h.reportService.ExportReceipts(c.Request.Context(), from, to, format, &buf); err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+format.Filename(from, to.AddDate(0, 0, -1))+`"`)
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
