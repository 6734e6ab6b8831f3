package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindwell-care/scheduling-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTemplateRepositorySave(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTemplateRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO weekly_templates")).
		WithArgs("prov-1", 60, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	template := &models.WeeklyTemplate{
		ProviderID:             "prov-1",
		SessionDurationMinutes: 60,
		Days: models.DayList{
			{Weekday: time.Monday, Enabled: true, Slots: []models.TimeSlot{{Start: "09:00", End: "11:00"}}},
		},
	}

	require.NoError(t, repo.Save(context.Background(), nil, template))
	assert.False(t, template.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateRepositoryFindByProvider(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTemplateRepository(db)

	days := []byte(`[{"weekday":1,"enabled":true,"slots":[{"start":"09:00","end":"11:00"}]}]`)
	rows := sqlmock.NewRows([]string{"provider_id", "session_duration_minutes", "days", "updated_at"}).
		AddRow("prov-1", 60, days, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT provider_id, session_duration_minutes, days, updated_at FROM weekly_templates WHERE provider_id = $1")).
		WithArgs("prov-1").
		WillReturnRows(rows)

	template, err := repo.FindByProvider(context.Background(), "prov-1")
	require.NoError(t, err)
	assert.Equal(t, 60, template.SessionDurationMinutes)
	require.Len(t, template.Days, 1)
	assert.Equal(t, time.Monday, template.Days[0].Weekday)
	assert.True(t, template.Days[0].Enabled)
	require.Len(t, template.Days[0].Slots, 1)
	assert.Equal(t, "09:00", template.Days[0].Slots[0].Start)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateRepositoryFindByProviderMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTemplateRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT provider_id, session_duration_minutes, days, updated_at FROM weekly_templates WHERE provider_id = $1")).
		WithArgs("prov-missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByProvider(context.Background(), "prov-missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
