package dto

// AppointmentListQuery filters appointment listings.
type AppointmentListQuery struct {
	ProviderID string `json:"providerId"`
	PatientID  string `json:"patientId"`
	From       string `json:"from"`
	To         string `json:"to"`
	Status     string `json:"status"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
}

// MeetingReferenceResponse returns the conferencing room reference for an
// appointment.
type MeetingReferenceResponse struct {
	AppointmentID    string `json:"appointmentId"`
	MeetingReference string `json:"meetingReference"`
}

// DaySheetQuery selects the date range for a provider export.
type DaySheetQuery struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Format string `json:"format"`
}
