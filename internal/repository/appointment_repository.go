package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/mindwell-care/scheduling-api/internal/models"
)

// ErrOverlappingAppointment is returned when an insert collides with the
// per-provider non-overlap constraint, i.e. a concurrent request won the slot.
var ErrOverlappingAppointment = errors.New("appointment overlaps an existing one")

const (
	pqExclusionViolation = "23P01"
	pqUniqueViolation    = "23505"
)

// AppointmentRepository is the ledger of reservations. Rows are never
// deleted; cancellation is a status transition.
type AppointmentRepository struct {
	db *sqlx.DB
}

// NewAppointmentRepository constructs an AppointmentRepository.
func NewAppointmentRepository(db *sqlx.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// Create inserts an appointment. The appointments table carries an exclusion
// constraint over (provider_id, interval) for non-cancelled rows, so two
// concurrent inserts for overlapping time can never both commit; the loser
// gets ErrOverlappingAppointment.
func (r *AppointmentRepository) Create(ctx context.Context, appointment *models.Appointment) error {
	if appointment == nil {
		return fmt.Errorf("appointment payload is nil")
	}
	if appointment.ID == "" {
		appointment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if appointment.CreatedAt.IsZero() {
		appointment.CreatedAt = now
	}
	appointment.UpdatedAt = now

	const query = `
INSERT INTO appointments (id, provider_id, patient_id, scheduled_at, duration_minutes, status, meeting_reference, created_at, updated_at)
VALUES (:id, :provider_id, :patient_id, :scheduled_at, :duration_minutes, :status, :meeting_reference, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, appointment); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && (pqErr.Code == pqExclusionViolation || pqErr.Code == pqUniqueViolation) {
			return ErrOverlappingAppointment
		}
		return fmt.Errorf("create appointment: %w", err)
	}
	return nil
}

// FindByID loads an appointment by id.
func (r *AppointmentRepository) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	const query = `SELECT id, provider_id, patient_id, scheduled_at, duration_minutes, status, meeting_reference, created_at, updated_at
FROM appointments WHERE id = $1`
	var appointment models.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id); err != nil {
		return nil, err
	}
	return &appointment, nil
}

// ListActiveInRange returns non-cancelled appointments for the provider whose
// interval intersects [from, to). Used by the availability resolver to
// exclude busy time.
func (r *AppointmentRepository) ListActiveInRange(ctx context.Context, providerID string, from, to time.Time) ([]models.Appointment, error) {
	const query = `SELECT id, provider_id, patient_id, scheduled_at, duration_minutes, status, meeting_reference, created_at, updated_at
FROM appointments
WHERE provider_id = $1
  AND status <> 'CANCELLED'
  AND scheduled_at < $3
  AND scheduled_at + make_interval(mins => duration_minutes) > $2
ORDER BY scheduled_at ASC`
	var appointments []models.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, providerID, from, to); err != nil {
		return nil, fmt.Errorf("list appointments in range: %w", err)
	}
	return appointments, nil
}

// List returns appointments matching the filter along with a total count.
func (r *AppointmentRepository) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, int, error) {
	base := "FROM appointments WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.ProviderID != "" {
		conditions = append(conditions, fmt.Sprintf("provider_id = $%d", len(args)+1))
		args = append(args, filter.ProviderID)
	}
	if filter.PatientID != "" {
		conditions = append(conditions, fmt.Sprintf("patient_id = $%d", len(args)+1))
		args = append(args, filter.PatientID)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("scheduled_at >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("scheduled_at < $%d", len(args)+1))
		args = append(args, *filter.To)
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
			args = append(args, status)
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ", ")))
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT id, provider_id, patient_id, scheduled_at, duration_minutes, status, meeting_reference, created_at, updated_at %s ORDER BY scheduled_at ASC LIMIT %d OFFSET %d", base, size, offset)
	var appointments []models.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}

	return appointments, total, nil
}

// Cancel transitions an appointment to CANCELLED. Returns sql.ErrNoRows when
// the appointment does not exist or was already cancelled.
func (r *AppointmentRepository) Cancel(ctx context.Context, id string) error {
	const query = `UPDATE appointments SET status = 'CANCELLED', updated_at = $2 WHERE id = $1 AND status <> 'CANCELLED'`
	result, err := r.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("cancel appointment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("cancel appointment rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetMeetingReferenceIfEmpty stores the meeting reference only when none has
// been set yet, keeping the field immutable after first assignment. Returns
// true when this call won the write.
func (r *AppointmentRepository) SetMeetingReferenceIfEmpty(ctx context.Context, id, reference string) (bool, error) {
	const query = `UPDATE appointments SET meeting_reference = $2, updated_at = $3 WHERE id = $1 AND meeting_reference IS NULL`
	result, err := r.db.ExecContext(ctx, query, id, reference, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("set meeting reference: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set meeting reference rows affected: %w", err)
	}
	return affected > 0, nil
}
