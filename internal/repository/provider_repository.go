package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/mindwell-care/scheduling-api/internal/models"
)

// ProviderRepository reads provider profiles. Profile CRUD lives in the
// surrounding platform; this service only needs timezone and session
// duration to compute schedules.
type ProviderRepository struct {
	db *sqlx.DB
}

// NewProviderRepository constructs a ProviderRepository.
func NewProviderRepository(db *sqlx.DB) *ProviderRepository {
	return &ProviderRepository{db: db}
}

// FindByID loads a provider profile by id.
func (r *ProviderRepository) FindByID(ctx context.Context, id string) (*models.Provider, error) {
	const query = `SELECT id, user_id, full_name, timezone, session_duration_minutes, active, created_at, updated_at
FROM providers WHERE id = $1`
	var provider models.Provider
	if err := r.db.GetContext(ctx, &provider, query, id); err != nil {
		return nil, err
	}
	return &provider, nil
}

// FindByUserID loads the provider profile owned by a platform user.
func (r *ProviderRepository) FindByUserID(ctx context.Context, userID string) (*models.Provider, error) {
	const query = `SELECT id, user_id, full_name, timezone, session_duration_minutes, active, created_at, updated_at
FROM providers WHERE user_id = $1`
	var provider models.Provider
	if err := r.db.GetContext(ctx, &provider, query, userID); err != nil {
		return nil, err
	}
	return &provider, nil
}
