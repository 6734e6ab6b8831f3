package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mindwell-care/scheduling-api/internal/dto"
	"github.com/mindwell-care/scheduling-api/internal/middleware"
	"github.com/mindwell-care/scheduling-api/pkg/response"
)

type availabilityService interface {
	Resolve(ctx context.Context, query dto.AvailabilityQuery) (*dto.AvailabilityResponse, error)
}

// AvailabilityHandler exposes the read side of slot resolution.
type AvailabilityHandler struct {
	service availabilityService
}

// NewAvailabilityHandler builds a new handler.
func NewAvailabilityHandler(service availabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

// Resolve godoc
// @Summary Resolve open slots for a provider
// @Tags Availability
// @Produce json
// @Param providerId path string true "Provider ID"
// @Param from query string true "Range start (YYYY-MM-DD, inclusive)"
// @Param to query string true "Range end (YYYY-MM-DD, inclusive)"
// @Success 200 {object} response.Envelope
// @Router /providers/{providerId}/availability [get]
func (h *AvailabilityHandler) Resolve(c *gin.Context) {
	query := dto.AvailabilityQuery{
		ProviderID: c.Param("providerId"),
		From:       c.Query("from"),
		To:         c.Query("to"),
	}
	result, err := h.service.Resolve(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}
