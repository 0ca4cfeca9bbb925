package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moyeo-lab/cohort-api/internal/service"
	appErrors "github.com/moyeo-lab/cohort-api/pkg/errors"
	"github.com/moyeo-lab/cohort-api/pkg/response"
)

// ReportHandler exposes roster report downloads.
type ReportHandler struct {
	service *service.ExportService
}

// NewReportHandler creates a new handler.
func NewReportHandler(svc *service.ExportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// RosterReport godoc
// @Summary Download a meeting roster report
// @Description CSV or PDF roster with per-student attendance and homework state
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param meetingId path string true "Meeting ID"
// @Param format query string false "Report format" Enums(csv, pdf) default(csv)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/meetings/{meetingId} [get]
func (h *ReportHandler) RosterReport(c *gin.Context) {
	format := service.ReportFormat(c.DefaultQuery("format", "csv"))
	if format != service.ReportFormatCSV && format != service.ReportFormatPDF {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}

	report, err := h.service.RosterReport(c.Request.Context(), c.Param("meetingId"), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+report.Filename)
	c.Data(http.StatusOK, report.ContentType, report.Data)
}
