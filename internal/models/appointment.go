package models

import "time"

// AppointmentStatus enumerates the lifecycle states of an appointment.
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "PENDING"
	AppointmentStatusConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
)

// Appointment is a reservation on the ledger. Appointments are never hard
// deleted; cancellation is a status transition. Non-cancelled appointments
// for one provider must not overlap.
type Appointment struct {
	ID               string            `db:"id" json:"id"`
	ProviderID       string            `db:"provider_id" json:"provider_id"`
	PatientID        string            `db:"patient_id" json:"patient_id"`
	ScheduledAt      time.Time         `db:"scheduled_at" json:"scheduled_at"`
	DurationMinutes  int               `db:"duration_minutes" json:"duration_minutes"`
	Status           AppointmentStatus `db:"status" json:"status"`
	MeetingReference *string           `db:"meeting_reference" json:"meeting_reference,omitempty"`
	CreatedAt        time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time         `db:"updated_at" json:"updated_at"`
}

// EndsAt returns the exclusive end instant of the appointment interval.
func (a *Appointment) EndsAt() time.Time {
	return a.ScheduledAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// Active reports whether the appointment still occupies its slot.
func (a *Appointment) Active() bool {
	return a.Status != AppointmentStatusCancelled
}

// AppointmentFilter captures filtering options for listing appointments.
type AppointmentFilter struct {
	ProviderID string
	PatientID  string
	From       *time.Time
	To         *time.Time
	Statuses   []AppointmentStatus
	Page       int
	PageSize   int
}
