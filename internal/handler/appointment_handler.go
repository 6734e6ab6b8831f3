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

type bookingService interface {
	Book(ctx context.Context, patientID string, req dto.BookAppointmentRequest) (*models.Appointment, error)
}

type appointmentService interface {
	List(ctx context.Context, claims *models.JWTClaims, query dto.AppointmentListQuery) ([]models.Appointment, *models.Pagination, error)
	Cancel(ctx context.Context, claims *models.JWTClaims, appointmentID string) error
	MeetingReference(ctx context.Context, claims *models.JWTClaims, appointmentID string) (*dto.MeetingReferenceResponse, error)
}

// AppointmentHandler exposes booking and ledger endpoints.
type AppointmentHandler struct {
	booking      bookingService
	appointments appointmentService
}

// NewAppointmentHandler builds a new handler.
func NewAppointmentHandler(booking bookingService, appointments appointmentService) *AppointmentHandler {
	return &AppointmentHandler{booking: booking, appointments: appointments}
}

// Book godoc
// @Summary Book an open slot
// @Tags Appointments
// @Accept json
// @Produce json
// @Param payload body dto.BookAppointmentRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Slot was taken by a concurrent booking"
// @Router /appointments [post]
func (h *AppointmentHandler) Book(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid booking payload"))
		return
	}
	appointment, err := h.booking.Book(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, appointment)
}

// List godoc
// @Summary List appointments visible to the caller
// @Tags Appointments
// @Produce json
// @Param from query string false "Range start (YYYY-MM-DD)"
// @Param to query string false "Range end (YYYY-MM-DD)"
// @Param status query string false "PENDING, CONFIRMED or CANCELLED"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /appointments [get]
func (h *AppointmentHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	query := dto.AppointmentListQuery{
		ProviderID: c.Query("providerId"),
		PatientID:  c.Query("patientId"),
		From:       c.Query("from"),
		To:         c.Query("to"),
		Status:     c.Query("status"),
	}
	query.Page = intQuery(c, "page", 1)
	query.PageSize = intQuery(c, "pageSize", 20)

	appointments, pagination, err := h.appointments.List(c.Request.Context(), claims, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appointments, pagination)
}

// Cancel godoc
// @Summary Cancel a future appointment
// @Tags Appointments
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 204
// @Router /appointments/{id} [delete]
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	claims := claimsFromContext(c)
	if err := h.appointments.Cancel(c.Request.Context(), claims, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// MeetingReference godoc
// @Summary Get the conferencing room reference, assigning it on first access
// @Tags Appointments
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Envelope
// @Router /appointments/{id}/meeting-reference [get]
func (h *AppointmentHandler) MeetingReference(c *gin.Context) {
	claims := claimsFromContext(c)
	result, err := h.appointments.MeetingReference(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
