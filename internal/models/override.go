package models

import "time"

// OverrideKind discriminates the two override variants.
type OverrideKind string

const (
	// OverrideKindBlocked makes the day fully unavailable regardless of template.
	OverrideKindBlocked OverrideKind = "BLOCKED"
	// OverrideKindCustom replaces the template slots for the day.
	OverrideKindCustom OverrideKind = "CUSTOM"
)

// ScheduleOverride is a date-specific exception to the weekly template,
// keyed by (provider, calendar date). The date carries no time component
// and is interpreted in the provider's timezone.
type ScheduleOverride struct {
	ID         string       `db:"id" json:"id"`
	ProviderID string       `db:"provider_id" json:"provider_id"`
	Date       string       `db:"date" json:"date"`
	Kind       OverrideKind `db:"kind" json:"kind"`
	Slots      SlotList     `db:"slots" json:"slots"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
}

// OverrideDateLayout is the wire and storage format for override dates.
const OverrideDateLayout = "2006-01-02"
