package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ruwad-api/internal/dto"
	"github.com/noah-isme/ruwad-api/pkg/response"
)

type reportService interface {
	BehaviorReport(ctx context.Context, stage string) (*dto.BehaviorReport, error)
	Render(report *dto.BehaviorReport, format dto.ReportFormat) (*dto.RenderedReport, error)
}

// ReportHandler exposes reporting endpoints.
type ReportHandler struct {
	reports reportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Behavior godoc
// @Summary Behavior report
// @Tags Reports
// @Produce json
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param stage query string false "Restrict to a stage"
// @Param format query string false "json, csv or pdf"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reports/behavior [get]
func (h *ReportHandler) Behavior(c *gin.Context) {
	var query dto.ReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, bindError(err, "invalid query"))
		return
	}
	format := dto.ReportFormat(strings.ToLower(strings.TrimSpace(string(query.Format))))

	report, err := h.reports.BehaviorReport(c.Request.Context(), strings.TrimSpace(query.Stage))
	if err != nil {
		response.Error(c, err)
		return
	}

	if format == "" || format == dto.ReportFormatJSON {
		response.JSON(c, http.StatusOK, report, nil)
		return
	}

	rendered, err := h.reports.Render(report, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, rendered.Filename, rendered.ContentType, rendered.Body)
}
