package dto

import "time"

// BookAppointmentRequest is the booking confirmation payload. Start is an
// RFC 3339 instant; DurationMinutes must match the provider's configured
// session duration.
type BookAppointmentRequest struct {
	ProviderID      string    `json:"providerId" validate:"required"`
	Start           time.Time `json:"start" validate:"required"`
	DurationMinutes int       `json:"durationMinutes" validate:"required,gt=0"`
}

// CancelAppointmentRequest carries the optional cancellation reason.
type CancelAppointmentRequest struct {
	Reason string `json:"reason"`
}
