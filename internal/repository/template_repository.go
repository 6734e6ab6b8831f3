package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mindwell-care/scheduling-api/internal/models"
)

// TemplateRepository persists the recurring weekly availability templates.
// One row per provider; saves overwrite the previous template entirely.
type TemplateRepository struct {
	db *sqlx.DB
}

// NewTemplateRepository constructs a TemplateRepository.
func NewTemplateRepository(db *sqlx.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// FindByProvider loads the weekly template for a provider. Returns
// sql.ErrNoRows when the provider has never saved one.
func (r *TemplateRepository) FindByProvider(ctx context.Context, providerID string) (*models.WeeklyTemplate, error) {
	const query = `SELECT provider_id, session_duration_minutes, days, updated_at
FROM weekly_templates WHERE provider_id = $1`
	var template models.WeeklyTemplate
	if err := r.db.GetContext(ctx, &template, query, providerID); err != nil {
		return nil, err
	}
	return &template, nil
}

// Save upserts the full template for a provider. No history is retained.
func (r *TemplateRepository) Save(ctx context.Context, exec sqlx.ExtContext, template *models.WeeklyTemplate) error {
	if template == nil {
		return fmt.Errorf("template payload is nil")
	}
	template.UpdatedAt = time.Now().UTC()

	const query = `
INSERT INTO weekly_templates (provider_id, session_duration_minutes, days, updated_at)
VALUES (:provider_id, :session_duration_minutes, :days, :updated_at)
ON CONFLICT (provider_id) DO UPDATE
SET session_duration_minutes = EXCLUDED.session_duration_minutes,
    days = EXCLUDED.days,
    updated_at = EXCLUDED.updated_at`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, template); err != nil {
		return fmt.Errorf("save weekly template: %w", err)
	}
	return nil
}
