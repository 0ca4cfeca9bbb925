package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moyeo-lab/cohort-api/internal/models"
	"github.com/moyeo-lab/cohort-api/internal/service"
	appErrors "github.com/moyeo-lab/cohort-api/pkg/errors"
	"github.com/moyeo-lab/cohort-api/pkg/response"
)

// PreferenceHandler exposes per-track preference endpoints.
type PreferenceHandler struct {
	service *service.PreferenceService
}

// NewPreferenceHandler creates a new handler.
func NewPreferenceHandler(svc *service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{service: svc}
}

// List godoc
// @Summary List my preferences
// @Description Preference rows whose track still exists in the catalog, plus a hidden count
// @Tags Preferences
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /preferences [get]
func (h *PreferenceHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	list, err := h.service.List(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, list, nil)
}

// SetFavorite godoc
// @Summary Set favorite flag for a track
// @Tags Preferences
// @Accept json
// @Produce json
// @Param payload body service.TogglePreferenceRequest true "Flag payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /preferences/favorite [put]
func (h *PreferenceHandler) SetFavorite(c *gin.Context) {
	h.setFlag(c, h.service.SetFavorite)
}

// SetNotify godoc
// @Summary Set notification flag for a track
// @Tags Preferences
// @Accept json
// @Produce json
// @Param payload body service.TogglePreferenceRequest true "Flag payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /preferences/notify [put]
func (h *PreferenceHandler) SetNotify(c *gin.Context) {
	h.setFlag(c, h.service.SetNotify)
}

func (h *PreferenceHandler) setFlag(c *gin.Context, apply func(ctx context.Context, studentID string, req service.TogglePreferenceRequest) (*models.PreferenceRow, error)) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.TogglePreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid preference payload"))
		return
	}

	row, err := apply(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, row, nil)
}
