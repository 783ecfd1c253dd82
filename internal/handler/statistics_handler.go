package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ruwad-api/internal/dto"
	"github.com/noah-isme/ruwad-api/internal/middleware"
	"github.com/noah-isme/ruwad-api/pkg/response"
)

type statisticsService interface {
	Dashboard(ctx context.Context) (*dto.DashboardResponse, bool, error)
	ResetAll(ctx context.Context) (int64, error)
}

// StatisticsHandler serves the aggregate dashboard.
type StatisticsHandler struct {
	stats statisticsService
}

// NewStatisticsHandler constructs StatisticsHandler.
func NewStatisticsHandler(stats statisticsService) *StatisticsHandler {
	return &StatisticsHandler{stats: stats}
}

// Dashboard godoc
// @Summary Statistics dashboard
// @Tags Statistics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /statistics/dashboard [get]
func (h *StatisticsHandler) Dashboard(c *gin.Context) {
	view, hit, err := h.stats.Dashboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, view, nil, middleware.ExtractMeta(c))
}

// Clear godoc
// @Summary Reset all point totals
// @Description Zeroes totals and achievements of every student
// @Tags Statistics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /statistics/clear [delete]
func (h *StatisticsHandler) Clear(c *gin.Context) {
	reset, err := h.stats.ResetAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	count := int(reset)
	response.Message(c, response.MessageBody{Message: "statistics reset", Count: &count})
}
