package models

import "time"

// BookableSlot is one open, fixed-duration interval a patient can book.
// Start/End are provider-local wall clock; StartsAt/EndsAt are the same
// instants in UTC, ready to be passed back to the booking endpoint.
type BookableSlot struct {
	Start    string    `json:"start"`
	End      string    `json:"end"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// DayAvailability lists the open slots for one calendar date.
type DayAvailability struct {
	Date  string         `json:"date"`
	Slots []BookableSlot `json:"slots"`
}
