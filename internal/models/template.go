package models

import (
	"fmt"
	"time"
)

// TimeSlot is a wall-clock interval within a single day, expressed in the
// provider's local time with no date component ("HH:MM", 24h).
type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Minutes returns the slot boundaries as minutes since midnight.
func (s TimeSlot) Minutes() (int, int, error) {
	start, err := ParseClock(s.Start)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid slot start %q: %w", s.Start, err)
	}
	end, err := ParseClock(s.End)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid slot end %q: %w", s.End, err)
	}
	return start, end, nil
}

// ParseClock converts an "HH:MM" string into minutes since midnight.
// "24:00" is accepted as an end-of-day boundary.
func ParseClock(value string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(value, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("expected HH:MM, got %q", value)
	}
	if len(value) != 5 || value[2] != ':' {
		return 0, fmt.Errorf("expected HH:MM, got %q", value)
	}
	if m < 0 || m > 59 || h < 0 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("clock value out of range: %q", value)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// TemplateDay holds availability for one weekday of the recurring template.
type TemplateDay struct {
	Weekday time.Weekday `json:"weekday"`
	Enabled bool         `json:"enabled"`
	Slots   []TimeSlot   `json:"slots"`
}

// WeeklyTemplate is a provider's recurring weekly availability. It is saved
// wholesale; no history is retained.
type WeeklyTemplate struct {
	ProviderID             string    `db:"provider_id" json:"provider_id"`
	SessionDurationMinutes int       `db:"session_duration_minutes" json:"session_duration_minutes"`
	Days                   DayList   `db:"days" json:"days"`
	UpdatedAt              time.Time `db:"updated_at" json:"updated_at"`
}

// Day returns the template entry for the given weekday, or nil when absent.
func (t *WeeklyTemplate) Day(weekday time.Weekday) *TemplateDay {
	if t == nil {
		return nil
	}
	for i := range t.Days {
		if t.Days[i].Weekday == weekday {
			return &t.Days[i]
		}
	}
	return nil
}
