package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mindwell-care/scheduling-api/internal/dto"
	"github.com/mindwell-care/scheduling-api/internal/models"
	"github.com/mindwell-care/scheduling-api/internal/repository"
	appErrors "github.com/mindwell-care/scheduling-api/pkg/errors"
)

type bookingLedger interface {
	Create(ctx context.Context, appointment *models.Appointment) error
}

type slotResolver interface {
	OpenSlotsForDate(ctx context.Context, provider *models.Provider, template *models.WeeklyTemplate, date string) ([]models.BookableSlot, error)
	InvalidateProvider(ctx context.Context, providerID string)
}

// BookingService is the booking write path. It re-resolves availability
// against current ledger state before every insert, and relies on the
// ledger's exclusion constraint to decide races it cannot see.
type BookingService struct {
	providers        providerReader
	templates        templateReader
	ledger           bookingLedger
	resolver         slotResolver
	metrics          *MetricsService
	validator        *validator.Validate
	logger           *zap.Logger
	minNoticeMinutes int
	now              func() time.Time
}

// NewBookingService constructs the coordinator.
func NewBookingService(
	providers providerReader,
	templates templateReader,
	ledger bookingLedger,
	resolver slotResolver,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	minNoticeMinutes int,
) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		providers:        providers,
		templates:        templates,
		ledger:           ledger,
		resolver:         resolver,
		metrics:          metrics,
		validator:        validate,
		logger:           logger,
		minNoticeMinutes: minNoticeMinutes,
		now:              time.Now,
	}
}

// WithNow overrides the clock source. Test hook.
func (s *BookingService) WithNow(now func() time.Time) *BookingService {
	s.now = now
	return s
}

// Book reserves a slot for the patient. The requested interval must be
// exactly one of the currently open slots; anything else is rejected before
// the insert, and concurrent winners are detected at the insert itself.
func (s *BookingService) Book(ctx context.Context, patientID string, req dto.BookAppointmentRequest) (*models.Appointment, error) {
	if patientID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}
	if !req.Start.Truncate(time.Minute).Equal(req.Start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start must be aligned to a whole minute")
	}

	provider, err := s.providers.FindByID(ctx, req.ProviderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "provider not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load provider")
	}

	template, err := s.templates.FindByProvider(ctx, provider.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "provider has no bookable schedule")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weekly template")
	}

	if req.DurationMinutes != template.SessionDurationMinutes {
		return nil, appErrors.Clone(appErrors.ErrValidation, "durationMinutes must equal the provider's session duration")
	}

	minStart := s.now().Add(time.Duration(s.minNoticeMinutes) * time.Minute)
	if !req.Start.After(minStart) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start must be in the future")
	}

	date := req.Start.In(provider.Location()).Format(dateLayout)
	openSlots, err := s.resolver.OpenSlotsForDate(ctx, provider, template, date)
	if err != nil {
		return nil, err
	}
	if !containsSlot(openSlots, req.Start) {
		s.metrics.RecordBookingConflict()
		return nil, appErrors.ErrSlotTaken
	}

	appointment := &models.Appointment{
		ProviderID:      provider.ID,
		PatientID:       patientID,
		ScheduledAt:     req.Start.UTC(),
		DurationMinutes: req.DurationMinutes,
		Status:          models.AppointmentStatusConfirmed,
	}
	if err := s.ledger.Create(ctx, appointment); err != nil {
		if errors.Is(err, repository.ErrOverlappingAppointment) {
			// A concurrent request won the slot between the re-resolve and
			// the insert. The constraint, not the pre-check, is the
			// authority here.
			s.metrics.RecordBookingConflict()
			return nil, appErrors.ErrSlotTaken
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create appointment")
	}

	s.resolver.InvalidateProvider(ctx, provider.ID)
	s.logger.Info("appointment booked",
		zap.String("appointment_id", appointment.ID),
		zap.String("provider_id", provider.ID),
		zap.Time("scheduled_at", appointment.ScheduledAt))
	return appointment, nil
}

func containsSlot(slots []models.BookableSlot, start time.Time) bool {
	for _, slot := range slots {
		if slot.StartsAt.Equal(start) {
			return true
		}
	}
	return false
}
