package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mindwell-care/scheduling-api/internal/dto"
	"github.com/mindwell-care/scheduling-api/internal/models"
	appErrors "github.com/mindwell-care/scheduling-api/pkg/errors"
	"github.com/mindwell-care/scheduling-api/pkg/response"
)

type scheduleService interface {
	Template(ctx context.Context, userID string) (*models.WeeklyTemplate, error)
	SaveTemplate(ctx context.Context, userID string, req dto.SaveTemplateRequest) (*models.WeeklyTemplate, error)
	Overrides(ctx context.Context, userID string) ([]models.ScheduleOverride, error)
	SaveOverrides(ctx context.Context, userID string, req dto.SaveOverridesRequest) ([]models.ScheduleOverride, error)
}

// ScheduleHandler exposes the provider-facing schedule editing endpoints.
type ScheduleHandler struct {
	service scheduleService
}

// NewScheduleHandler builds a new handler.
func NewScheduleHandler(service scheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

// GetTemplate godoc
// @Summary Get the caller's weekly template
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedule/template [get]
func (h *ScheduleHandler) GetTemplate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	template, err := h.service.Template(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, template, nil)
}

// SaveTemplate godoc
// @Summary Replace the caller's weekly template
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.SaveTemplateRequest true "Template payload"
// @Success 200 {object} response.Envelope
// @Router /schedule/template [put]
func (h *ScheduleHandler) SaveTemplate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.SaveTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid template payload"))
		return
	}
	template, err := h.service.SaveTemplate(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, template, nil)
}

// GetOverrides godoc
// @Summary List the caller's upcoming date overrides
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedule/overrides [get]
func (h *ScheduleHandler) GetOverrides(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	overrides, err := h.service.Overrides(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overrides, nil)
}

// SaveOverrides godoc
// @Summary Replace all of the caller's future-dated overrides
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.SaveOverridesRequest true "Overrides payload"
// @Success 200 {object} response.Envelope
// @Router /schedule/overrides [put]
func (h *ScheduleHandler) SaveOverrides(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.SaveOverridesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid overrides payload"))
		return
	}
	overrides, err := h.service.SaveOverrides(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overrides, nil)
}
