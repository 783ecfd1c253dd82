package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ruwad-api/internal/dto"
	"github.com/noah-isme/ruwad-api/internal/models"
	"github.com/noah-isme/ruwad-api/pkg/response"
)

type behaviorService interface {
	Record(ctx context.Context, req dto.RecordBehaviorRequest, actor dto.Actor) (*models.BehaviorRecord, error)
	List(ctx context.Context, query dto.BehaviorListQuery) ([]models.BehaviorRecord, *models.Pagination, error)
	ClearAll(ctx context.Context) (int64, error)
}

// BehaviorHandler exposes the behavior ledger.
type BehaviorHandler struct {
	behaviors behaviorService
}

// NewBehaviorHandler constructs BehaviorHandler.
func NewBehaviorHandler(behaviors behaviorService) *BehaviorHandler {
	return &BehaviorHandler{behaviors: behaviors}
}

// List godoc
// @Summary List behavior events
// @Description Newest events first
// @Tags Behaviors
// @Produce json
// @Security BearerAuth
// @Param student_id query string false "Only events of this student"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /behaviors [get]
func (h *BehaviorHandler) List(c *gin.Context) {
	var query dto.BehaviorListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, bindError(err, "invalid pagination parameters"))
		return
	}
	records, pagination, err := h.behaviors.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// Record godoc
// @Summary Record behavior
// @Description Appends an event and applies its points to the student total
// @Tags Behaviors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.RecordBehaviorRequest true "Behavior payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /behaviors [post]
func (h *BehaviorHandler) Record(c *gin.Context) {
	var req dto.RecordBehaviorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid payload"))
		return
	}
	actor, err := actorFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	record, err := h.behaviors.Record(c.Request.Context(), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Clear godoc
// @Summary Delete all behavior events
// @Description Student point totals are left unchanged
// @Tags Behaviors
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /behaviors/clear [delete]
func (h *BehaviorHandler) Clear(c *gin.Context) {
	deleted, err := h.behaviors.ClearAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	count := int(deleted)
	response.Message(c, response.MessageBody{Message: "behavior records cleared", Count: &count})
}
