package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindwell-care/scheduling-api/internal/models"
)

func TestAppointmentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO appointments")).
		WithArgs(sqlmock.AnyArg(), "prov-1", "pat-1", sqlmock.AnyArg(), 60, string(models.AppointmentStatusConfirmed), nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	appointment := &models.Appointment{
		ProviderID:      "prov-1",
		PatientID:       "pat-1",
		ScheduledAt:     time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
		Status:          models.AppointmentStatusConfirmed,
	}

	require.NoError(t, repo.Create(context.Background(), appointment))
	assert.NotEmpty(t, appointment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryCreateOverlap(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO appointments")).
		WillReturnError(&pq.Error{Code: "23P01", Constraint: "appointments_no_overlap"})

	appointment := &models.Appointment{
		ProviderID:      "prov-1",
		PatientID:       "pat-1",
		ScheduledAt:     time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
		Status:          models.AppointmentStatusConfirmed,
	}

	err := repo.Create(context.Background(), appointment)
	assert.ErrorIs(t, err, ErrOverlappingAppointment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryListActiveInRange(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	from := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	rows := sqlmock.NewRows([]string{"id", "provider_id", "patient_id", "scheduled_at", "duration_minutes", "status", "meeting_reference", "created_at", "updated_at"}).
		AddRow("appt-1", "prov-1", "pat-1", from.Add(9*time.Hour), 60, "CONFIRMED", nil, time.Now(), time.Now())
	mock.ExpectQuery("SELECT (.+) FROM appointments WHERE provider_id").
		WithArgs("prov-1", from, to).
		WillReturnRows(rows)

	appointments, err := repo.ListActiveInRange(context.Background(), "prov-1", from, to)
	require.NoError(t, err)
	require.Len(t, appointments, 1)
	assert.Equal(t, models.AppointmentStatusConfirmed, appointments[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryCancelAlreadyCancelled(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE appointments SET status = 'CANCELLED'")).
		WithArgs("appt-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Cancel(context.Background(), "appt-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositorySetMeetingReferenceIfEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE appointments SET meeting_reference = $2")).
		WithArgs("appt-1", "room-abc", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	won, err := repo.SetMeetingReferenceIfEmpty(context.Background(), "appt-1", "room-abc")
	require.NoError(t, err)
	assert.True(t, won)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE appointments SET meeting_reference = $2")).
		WithArgs("appt-1", "room-other", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	won, err = repo.SetMeetingReferenceIfEmpty(context.Background(), "appt-1", "room-other")
	require.NoError(t, err)
	assert.False(t, won)
	assert.NoError(t, mock.ExpectationsWereMet())
}
