package dto

import "github.com/mindwell-care/scheduling-api/internal/models"

// TemplateDayRequest is one weekday entry of a template save.
type TemplateDayRequest struct {
	Weekday int               `json:"weekday" validate:"min=0,max=6"`
	Enabled bool              `json:"enabled"`
	Slots   []models.TimeSlot `json:"slots"`
}

// SaveTemplateRequest replaces a provider's weekly template wholesale.
type SaveTemplateRequest struct {
	SessionDurationMinutes int                  `json:"sessionDurationMinutes" validate:"required,gt=0"`
	Days                   []TemplateDayRequest `json:"days" validate:"required,max=7,dive"`
}

// CustomOverrideRequest sets explicit hours for one date, replacing the
// template for that day.
type CustomOverrideRequest struct {
	Date  string            `json:"date" validate:"required"`
	Slots []models.TimeSlot `json:"slots" validate:"required,min=1"`
}

// SaveOverridesRequest replaces all of a provider's future-dated overrides.
type SaveOverridesRequest struct {
	Custom  []CustomOverrideRequest `json:"custom" validate:"dive"`
	Blocked []string                `json:"blocked"`
}
