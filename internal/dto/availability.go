package dto

import "github.com/mindwell-care/scheduling-api/internal/models"

// AvailabilityQuery describes the query params for an availability read.
// Dates are "YYYY-MM-DD" in the provider's timezone, both inclusive.
type AvailabilityQuery struct {
	ProviderID string `json:"providerId" validate:"required"`
	From       string `json:"from" validate:"required"`
	To         string `json:"to" validate:"required"`
}

// AvailabilityResponse maps each date in range to its open slots.
type AvailabilityResponse struct {
	ProviderID string                   `json:"providerId"`
	Timezone   string                   `json:"timezone"`
	Days       []models.DayAvailability `json:"days"`
}
