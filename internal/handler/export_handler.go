package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mindwell-care/scheduling-api/internal/dto"
	"github.com/mindwell-care/scheduling-api/internal/service"
	appErrors "github.com/mindwell-care/scheduling-api/pkg/errors"
	"github.com/mindwell-care/scheduling-api/pkg/response"
)

type exportService interface {
	DaySheet(ctx context.Context, userID string, query dto.DaySheetQuery) (*service.ExportFile, error)
	Archived(ctx context.Context, token string) (*service.ExportFile, error)
}

// ExportHandler serves provider day-sheet downloads.
type ExportHandler struct {
	service exportService
}

// NewExportHandler builds a new handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// DaySheet godoc
// @Summary Download the caller's appointments as CSV or PDF
// @Tags Exports
// @Produce text/csv,application/pdf
// @Param from query string false "Range start (YYYY-MM-DD, defaults to today)"
// @Param to query string false "Range end (YYYY-MM-DD, defaults to from)"
// @Param format query string false "csv or pdf"
// @Success 200
// @Router /exports/day-sheet [get]
func (h *ExportHandler) DaySheet(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	query := dto.DaySheetQuery{
		From:   c.Query("from"),
		To:     c.Query("to"),
		Format: c.Query("format"),
	}
	file, err := h.service.DaySheet(c.Request.Context(), claims.UserID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	if file.DownloadToken != "" {
		c.Header("X-Download-Token", file.DownloadToken)
	}
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// Archived godoc
// @Summary Download a previously generated day sheet by signed token
// @Tags Exports
// @Produce text/csv,application/pdf
// @Param token query string true "Signed download token"
// @Success 200
// @Router /exports/archive [get]
func (h *ExportHandler) Archived(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	file, err := h.service.Archived(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
