package models

import "time"

// Provider represents a psychologist profile offering sessions.
type Provider struct {
	ID                     string    `db:"id" json:"id"`
	UserID                 string    `db:"user_id" json:"user_id"`
	FullName               string    `db:"full_name" json:"full_name"`
	Timezone               string    `db:"timezone" json:"timezone"`
	SessionDurationMinutes int       `db:"session_duration_minutes" json:"session_duration_minutes"`
	Active                 bool      `db:"active" json:"active"`
	CreatedAt              time.Time `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time `db:"updated_at" json:"updated_at"`
}

// Location resolves the provider's configured IANA timezone. A provider
// without a valid timezone falls back to UTC rather than failing the request.
func (p *Provider) Location() *time.Location {
	if p == nil || p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
