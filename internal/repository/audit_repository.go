package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mindwell-care/scheduling-api/internal/models"
)

// AuditRepository persists the mutation audit trail.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository constructs the repository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// CreateEntry appends one audit row. Failures are the caller's problem to
// log; the trail never blocks the request that produced it.
func (r *AuditRepository) CreateEntry(ctx context.Context, entry *models.AuditEntry) error {
	query := `
		INSERT INTO audit_logs (user_id, action, resource, resource_id, detail, ip_address, user_agent)
		VALUES (:user_id, :action, :resource, :resource_id, :detail, :ip_address, :user_agent)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}
