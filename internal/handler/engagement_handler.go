package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moyeo-lab/cohort-api/internal/service"
	appErrors "github.com/moyeo-lab/cohort-api/pkg/errors"
	"github.com/moyeo-lab/cohort-api/pkg/response"
)

// EngagementHandler exposes derived engagement views.
type EngagementHandler struct {
	service *service.EngagementService
}

// NewEngagementHandler creates a new handler.
func NewEngagementHandler(svc *service.EngagementService) *EngagementHandler {
	return &EngagementHandler{service: svc}
}

// MySnapshot godoc
// @Summary My engagement snapshot
// @Description Quota, in-scope meeting count and attendance/homework rates, computed live
// @Tags Engagement
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /engagement/me [get]
func (h *EngagementHandler) MySnapshot(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	snapshot, err := h.service.Snapshot(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, snapshot, nil)
}

// CohortRates godoc
// @Summary Per-meeting cohort rates
// @Description Roster-denominated attendance and homework rates with missing-student lists
// @Tags Engagement
// @Produce json
// @Param meetingId path string true "Meeting ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /engagement/meetings/{meetingId} [get]
func (h *EngagementHandler) CohortRates(c *gin.Context) {
	rates, err := h.service.CohortRates(c.Request.Context(), c.Param("meetingId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, rates, nil)
}
