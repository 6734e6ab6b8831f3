package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mindwell-care/scheduling-api/internal/dto"
	"github.com/mindwell-care/scheduling-api/internal/models"
	appErrors "github.com/mindwell-care/scheduling-api/pkg/errors"
)

func newExportService(appointments *appointmentReaderStub) *ExportService {
	providers := &providerRepoStub{byUser: map[string]*models.Provider{"user-prov-1": utcProvider()}}
	svc := NewExportService(providers, appointments, nil, nil, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 9, 7, 8, 0, 0, 0, time.UTC) }
	return svc
}

func TestDaySheetCSV(t *testing.T) {
	appointments := &appointmentReaderStub{appointments: []models.Appointment{{
		ID: "appt-1", ProviderID: "prov-1", PatientID: "pat-1",
		ScheduledAt: time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC), DurationMinutes: 60,
		Status: models.AppointmentStatusConfirmed,
	}}}
	svc := newExportService(appointments)

	file, err := svc.DaySheet(context.Background(), "user-prov-1", dto.DaySheetQuery{From: "2026-09-07"})
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Equal(t, "day-sheet-2026-09-07-2026-09-07.csv", file.Filename)

	content := string(file.Data)
	assert.True(t, strings.HasPrefix(content, "Date,Start,End,Patient,Status\n"))
	assert.Contains(t, content, "2026-09-07,09:00,10:00,pat-1,CONFIRMED")
}

func TestDaySheetDefaultsToToday(t *testing.T) {
	svc := newExportService(&appointmentReaderStub{})

	file, err := svc.DaySheet(context.Background(), "user-prov-1", dto.DaySheetQuery{})
	require.NoError(t, err)
	assert.Equal(t, "day-sheet-2026-09-07-2026-09-07.csv", file.Filename)
}

func TestDaySheetPDF(t *testing.T) {
	svc := newExportService(&appointmentReaderStub{})

	file, err := svc.DaySheet(context.Background(), "user-prov-1", dto.DaySheetQuery{From: "2026-09-07", Format: "pdf"})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Data), "%PDF"))
}

func TestDaySheetRejectsUnknownFormat(t *testing.T) {
	svc := newExportService(&appointmentReaderStub{})

	_, err := svc.DaySheet(context.Background(), "user-prov-1", dto.DaySheetQuery{From: "2026-09-07", Format: "xlsx"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDaySheetRequiresProviderProfile(t *testing.T) {
	providers := &providerRepoStub{byUser: map[string]*models.Provider{}}
	svc := NewExportService(providers, &appointmentReaderStub{}, nil, nil, zap.NewNop())

	_, err := svc.DaySheet(context.Background(), "user-other", dto.DaySheetQuery{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
