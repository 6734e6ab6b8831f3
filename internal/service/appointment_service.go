package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mindwell-care/scheduling-api/internal/dto"
	"github.com/mindwell-care/scheduling-api/internal/models"
	appErrors "github.com/mindwell-care/scheduling-api/pkg/errors"
)

type appointmentLedger interface {
	FindByID(ctx context.Context, id string) (*models.Appointment, error)
	List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, int, error)
	Cancel(ctx context.Context, id string) error
	SetMeetingReferenceIfEmpty(ctx context.Context, id, reference string) (bool, error)
}

// AppointmentService covers the ledger operations around an existing
// reservation: listing, cancellation and the conferencing-room reference.
type AppointmentService struct {
	ledger    appointmentLedger
	providers providerReader
	resolver  cacheInvalidator
	logger    *zap.Logger
	now       func() time.Time
}

// NewAppointmentService constructs the service.
func NewAppointmentService(ledger appointmentLedger, providers providerReader, resolver cacheInvalidator, logger *zap.Logger) *AppointmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AppointmentService{
		ledger:    ledger,
		providers: providers,
		resolver:  resolver,
		logger:    logger,
		now:       time.Now,
	}
}

// WithNow overrides the clock source. Test hook.
func (s *AppointmentService) WithNow(now func() time.Time) *AppointmentService {
	s.now = now
	return s
}

// List returns appointments visible to the caller. Patients see their own,
// providers see their practice, admins see whatever the filter selects.
func (s *AppointmentService) List(ctx context.Context, claims *models.JWTClaims, query dto.AppointmentListQuery) ([]models.Appointment, *models.Pagination, error) {
	if claims == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}

	filter := models.AppointmentFilter{Page: query.Page, PageSize: query.PageSize}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	if query.From != "" {
		from, err := time.Parse(dateLayout, query.From)
		if err != nil {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "from must be formatted YYYY-MM-DD")
		}
		filter.From = &from
	}
	if query.To != "" {
		to, err := time.Parse(dateLayout, query.To)
		if err != nil {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "to must be formatted YYYY-MM-DD")
		}
		end := to.AddDate(0, 0, 1)
		filter.To = &end
	}
	if query.Status != "" {
		status := models.AppointmentStatus(query.Status)
		switch status {
		case models.AppointmentStatusPending, models.AppointmentStatusConfirmed, models.AppointmentStatusCancelled:
			filter.Statuses = []models.AppointmentStatus{status}
		default:
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", query.Status))
		}
	}

	switch claims.Role {
	case models.RolePatient:
		filter.PatientID = claims.UserID
	case models.RoleProvider:
		provider, err := s.providers.FindByUserID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "provider profile not found")
			}
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load provider")
		}
		filter.ProviderID = provider.ID
	case models.RoleAdmin:
		filter.ProviderID = query.ProviderID
		filter.PatientID = query.PatientID
	default:
		return nil, nil, appErrors.ErrForbidden
	}

	appointments, total, err := s.ledger.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list appointments")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return appointments, pagination, nil
}

// Cancel transitions a future appointment to CANCELLED. Either party may
// cancel; the row stays on the ledger.
func (s *AppointmentService) Cancel(ctx context.Context, claims *models.JWTClaims, appointmentID string) error {
	appointment, err := s.authorize(ctx, claims, appointmentID)
	if err != nil {
		return err
	}
	if appointment.Status == models.AppointmentStatusCancelled {
		return appErrors.Clone(appErrors.ErrConflict, "appointment is already cancelled")
	}
	if !appointment.ScheduledAt.After(s.now()) {
		return appErrors.Clone(appErrors.ErrValidation, "only future appointments can be cancelled")
	}

	if err := s.ledger.Cancel(ctx, appointmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrConflict, "appointment is already cancelled")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel appointment")
	}

	s.resolver.InvalidateProvider(ctx, appointment.ProviderID)
	s.logger.Info("appointment cancelled",
		zap.String("appointment_id", appointmentID),
		zap.String("cancelled_by", claims.UserID))
	return nil
}

// MeetingReference returns the conferencing room reference for an
// appointment, generating it on first access. Once set it never changes;
// concurrent first readers converge on whichever write landed.
func (s *AppointmentService) MeetingReference(ctx context.Context, claims *models.JWTClaims, appointmentID string) (*dto.MeetingReferenceResponse, error) {
	appointment, err := s.authorize(ctx, claims, appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment.Status == models.AppointmentStatusCancelled {
		return nil, appErrors.Clone(appErrors.ErrConflict, "appointment is cancelled")
	}

	if appointment.MeetingReference != nil && *appointment.MeetingReference != "" {
		return &dto.MeetingReferenceResponse{AppointmentID: appointment.ID, MeetingReference: *appointment.MeetingReference}, nil
	}

	reference := "mw-" + uuid.NewString()
	won, err := s.ledger.SetMeetingReferenceIfEmpty(ctx, appointment.ID, reference)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign meeting reference")
	}
	if !won {
		// Another caller assigned it first; read theirs back.
		current, err := s.ledger.FindByID(ctx, appointment.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload appointment")
		}
		if current.MeetingReference == nil {
			return nil, appErrors.Clone(appErrors.ErrInternal, "meeting reference missing after concurrent assignment")
		}
		reference = *current.MeetingReference
	}

	return &dto.MeetingReferenceResponse{AppointmentID: appointment.ID, MeetingReference: reference}, nil
}

func (s *AppointmentService) authorize(ctx context.Context, claims *models.JWTClaims, appointmentID string) (*models.Appointment, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	appointment, err := s.ledger.FindByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointment")
	}

	switch claims.Role {
	case models.RoleAdmin:
		return appointment, nil
	case models.RolePatient:
		if appointment.PatientID == claims.UserID {
			return appointment, nil
		}
	case models.RoleProvider:
		provider, err := s.providers.FindByID(ctx, appointment.ProviderID)
		if err == nil && provider.UserID == claims.UserID {
			return appointment, nil
		}
	}
	return nil, appErrors.ErrForbidden
}
