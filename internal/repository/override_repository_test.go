package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindwell-care/scheduling-api/internal/models"
)

func TestOverrideRepositoryReplaceAllFuture(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewOverrideRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule_overrides WHERE provider_id = $1 AND date >= $2")).
		WithArgs("prov-1", "2026-09-01").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedule_overrides")).
		WithArgs(sqlmock.AnyArg(), "prov-1", "2026-09-03", string(models.OverrideKindBlocked), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedule_overrides")).
		WithArgs(sqlmock.AnyArg(), "prov-1", "2026-09-04", string(models.OverrideKindCustom), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	overrides := []models.ScheduleOverride{
		{ProviderID: "prov-1", Date: "2026-09-03", Kind: models.OverrideKindBlocked},
		{ProviderID: "prov-1", Date: "2026-09-04", Kind: models.OverrideKindCustom, Slots: models.SlotList{{Start: "13:00", End: "14:00"}}},
	}

	require.NoError(t, repo.ReplaceAllFuture(context.Background(), "prov-1", "2026-09-01", overrides))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOverrideRepositoryReplaceAllFutureRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewOverrideRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule_overrides WHERE provider_id = $1 AND date >= $2")).
		WithArgs("prov-1", "2026-09-01").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedule_overrides")).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	overrides := []models.ScheduleOverride{
		{ProviderID: "prov-1", Date: "2026-09-03", Kind: models.OverrideKindBlocked},
	}

	err := repo.ReplaceAllFuture(context.Background(), "prov-1", "2026-09-01", overrides)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOverrideRepositoryListRange(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewOverrideRepository(db)

	rows := sqlmock.NewRows([]string{"id", "provider_id", "date", "kind", "slots", "created_at"}).
		AddRow("ovr-1", "prov-1", "2026-09-03", "BLOCKED", []byte(`[]`), time.Now()).
		AddRow("ovr-2", "prov-1", "2026-09-04", "CUSTOM", []byte(`[{"start":"13:00","end":"14:00"}]`), time.Now())
	mock.ExpectQuery("SELECT id, provider_id, to_char").
		WithArgs("prov-1", "2026-09-01", "2026-09-30").
		WillReturnRows(rows)

	overrides, err := repo.ListRange(context.Background(), "prov-1", "2026-09-01", "2026-09-30")
	require.NoError(t, err)
	require.Len(t, overrides, 2)
	assert.Equal(t, models.OverrideKindBlocked, overrides[0].Kind)
	require.Len(t, overrides[1].Slots, 1)
	assert.Equal(t, "13:00", overrides[1].Slots[0].Start)
	assert.NoError(t, mock.ExpectationsWereMet())
}
