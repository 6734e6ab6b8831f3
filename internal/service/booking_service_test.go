package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mindwell-care/scheduling-api/internal/dto"
	"github.com/mindwell-care/scheduling-api/internal/models"
	"github.com/mindwell-care/scheduling-api/internal/repository"
	appErrors "github.com/mindwell-care/scheduling-api/pkg/errors"
)

type bookingLedgerStub struct {
	created []*models.Appointment
	err     error
}

func (s *bookingLedgerStub) Create(ctx context.Context, appointment *models.Appointment) error {
	if s.err != nil {
		return s.err
	}
	appointment.ID = "appt-new"
	s.created = append(s.created, appointment)
	return nil
}

type slotResolverStub struct {
	slots       []models.BookableSlot
	err         error
	invalidated []string
}

func (s *slotResolverStub) OpenSlotsForDate(ctx context.Context, provider *models.Provider, template *models.WeeklyTemplate, date string) ([]models.BookableSlot, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.slots, nil
}

func (s *slotResolverStub) InvalidateProvider(ctx context.Context, providerID string) {
	s.invalidated = append(s.invalidated, providerID)
}

func newBookingService(ledger *bookingLedgerStub, resolver *slotResolverStub) *BookingService {
	providers := &providerRepoStub{providers: map[string]*models.Provider{"prov-1": utcProvider()}}
	templates := &templateRepoStub{template: mondayTemplate(60)}
	svc := NewBookingService(providers, templates, ledger, resolver, nil, nil, zap.NewNop(), 0)
	return svc.WithNow(func() time.Time { return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC) })
}

func openMondaySlot() models.BookableSlot {
	return models.BookableSlot{
		Start:    "09:00",
		End:      "10:00",
		StartsAt: time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC),
	}
}

func TestBookOpenSlot(t *testing.T) {
	ledger := &bookingLedgerStub{}
	resolver := &slotResolverStub{slots: []models.BookableSlot{openMondaySlot()}}
	svc := newBookingService(ledger, resolver)

	appointment, err := svc.Book(context.Background(), "pat-1", dto.BookAppointmentRequest{
		ProviderID:      "prov-1",
		Start:           time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
	})
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusConfirmed, appointment.Status)
	assert.Equal(t, "pat-1", appointment.PatientID)
	assert.Equal(t, "prov-1", appointment.ProviderID)
	assert.Equal(t, time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC), appointment.ScheduledAt)
	require.Len(t, ledger.created, 1)
	assert.Equal(t, []string{"prov-1"}, resolver.invalidated)
}

func TestBookRequiresAuthenticatedPatient(t *testing.T) {
	svc := newBookingService(&bookingLedgerStub{}, &slotResolverStub{})

	_, err := svc.Book(context.Background(), "", dto.BookAppointmentRequest{
		ProviderID:      "prov-1",
		Start:           time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestBookRejectsDurationMismatch(t *testing.T) {
	ledger := &bookingLedgerStub{}
	svc := newBookingService(ledger, &slotResolverStub{slots: []models.BookableSlot{openMondaySlot()}})

	_, err := svc.Book(context.Background(), "pat-1", dto.BookAppointmentRequest{
		ProviderID:      "prov-1",
		Start:           time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC),
		DurationMinutes: 30,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, ledger.created)
}

func TestBookRejectsPastStart(t *testing.T) {
	svc := newBookingService(&bookingLedgerStub{}, &slotResolverStub{slots: []models.BookableSlot{openMondaySlot()}})

	_, err := svc.Book(context.Background(), "pat-1", dto.BookAppointmentRequest{
		ProviderID:      "prov-1",
		Start:           time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestBookRejectsUnknownProvider(t *testing.T) {
	svc := newBookingService(&bookingLedgerStub{}, &slotResolverStub{slots: []models.BookableSlot{openMondaySlot()}})

	_, err := svc.Book(context.Background(), "pat-1", dto.BookAppointmentRequest{
		ProviderID:      "prov-x",
		Start:           time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestBookRejectsSlotNotOpen(t *testing.T) {
	ledger := &bookingLedgerStub{}
	svc := newBookingService(ledger, &slotResolverStub{slots: []models.BookableSlot{openMondaySlot()}})

	// Aligned to the hour and future, but not one of the open slots.
	_, err := svc.Book(context.Background(), "pat-1", dto.BookAppointmentRequest{
		ProviderID:      "prov-1",
		Start:           time.Date(2026, 9, 7, 11, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSlotTaken.Code, appErrors.FromError(err).Code)
	assert.Empty(t, ledger.created)
}

func TestBookMapsConstraintLossToSlotTaken(t *testing.T) {
	ledger := &bookingLedgerStub{err: repository.ErrOverlappingAppointment}
	resolver := &slotResolverStub{slots: []models.BookableSlot{openMondaySlot()}}
	svc := newBookingService(ledger, resolver)

	_, err := svc.Book(context.Background(), "pat-1", dto.BookAppointmentRequest{
		ProviderID:      "prov-1",
		Start:           time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSlotTaken.Code, appErrors.FromError(err).Code)
	assert.Empty(t, resolver.invalidated)
}

func TestBookRejectsSubMinuteStart(t *testing.T) {
	svc := newBookingService(&bookingLedgerStub{}, &slotResolverStub{slots: []models.BookableSlot{openMondaySlot()}})

	_, err := svc.Book(context.Background(), "pat-1", dto.BookAppointmentRequest{
		ProviderID:      "prov-1",
		Start:           time.Date(2026, 9, 7, 9, 0, 30, 0, time.UTC),
		DurationMinutes: 60,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
