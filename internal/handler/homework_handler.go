package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moyeo-lab/cohort-api/internal/service"
	appErrors "github.com/moyeo-lab/cohort-api/pkg/errors"
	"github.com/moyeo-lab/cohort-api/pkg/response"
)

// HomeworkHandler exposes homework submission endpoints.
type HomeworkHandler struct {
	service *service.HomeworkService
}

// NewHomeworkHandler creates a new handler.
func NewHomeworkHandler(svc *service.HomeworkService) *HomeworkHandler {
	return &HomeworkHandler{service: svc}
}

// Submit godoc
// @Summary Submit homework
// @Description One submission per meeting; resubmitting requires deleting first
// @Tags Homework
// @Accept json
// @Produce json
// @Param payload body service.SubmitHomeworkRequest true "Submission payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /homework [post]
func (h *HomeworkHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.SubmitHomeworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid homework payload"))
		return
	}

	submission, err := h.service.Submit(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, submission)
}

// Delete godoc
// @Summary Delete my homework submission
// @Tags Homework
// @Produce json
// @Param meetingId path string true "Meeting ID"
// @Success 204 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /homework/{meetingId} [delete]
func (h *HomeworkHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), claims.UserID, c.Param("meetingId")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// ListMine godoc
// @Summary List my homework submissions
// @Tags Homework
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /homework [get]
func (h *HomeworkHandler) ListMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	submissions, err := h.service.ListMine(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, submissions, nil)
}
