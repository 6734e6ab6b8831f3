package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mindwell-care/scheduling-api/internal/models"
)

// OverrideRepository persists date-specific schedule exceptions.
type OverrideRepository struct {
	db *sqlx.DB
}

// NewOverrideRepository constructs an OverrideRepository.
func NewOverrideRepository(db *sqlx.DB) *OverrideRepository {
	return &OverrideRepository{db: db}
}

// ListRange returns overrides for the provider with dates in [from, to],
// both inclusive, "YYYY-MM-DD" strings.
func (r *OverrideRepository) ListRange(ctx context.Context, providerID, from, to string) ([]models.ScheduleOverride, error) {
	const query = `SELECT id, provider_id, to_char(date, 'YYYY-MM-DD') AS date, kind, slots, created_at
FROM schedule_overrides WHERE provider_id = $1 AND date >= $2 AND date <= $3 ORDER BY date ASC`
	var overrides []models.ScheduleOverride
	if err := r.db.SelectContext(ctx, &overrides, query, providerID, from, to); err != nil {
		return nil, fmt.Errorf("list schedule overrides: %w", err)
	}
	return overrides, nil
}

// ReplaceAllFuture deletes every override for the provider dated today or
// later, then inserts the provided set, in one transaction. A failure rolls
// the whole operation back so no mixed state is left behind.
func (r *OverrideRepository) ReplaceAllFuture(ctx context.Context, providerID, fromDate string, overrides []models.ScheduleOverride) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace overrides: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const deleteQuery = `DELETE FROM schedule_overrides WHERE provider_id = $1 AND date >= $2`
	if _, err = tx.ExecContext(ctx, deleteQuery, providerID, fromDate); err != nil {
		return fmt.Errorf("delete future overrides: %w", err)
	}

	const insertQuery = `
INSERT INTO schedule_overrides (id, provider_id, date, kind, slots, created_at)
VALUES (:id, :provider_id, :date, :kind, :slots, :created_at)`
	now := time.Now().UTC()
	for i := range overrides {
		override := &overrides[i]
		if override.ID == "" {
			override.ID = uuid.NewString()
		}
		if override.CreatedAt.IsZero() {
			override.CreatedAt = now
		}
		if _, err = sqlx.NamedExecContext(ctx, tx, insertQuery, override); err != nil {
			return fmt.Errorf("insert schedule override: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace overrides: %w", err)
	}
	return nil
}
