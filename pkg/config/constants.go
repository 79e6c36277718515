package config

// Appointment statuses. Booked is the only status the reservation engine
// writes; check-in and cancellation are receptionist transitions.
const (
	StatusBooked    = "booked"
	StatusCheckedIn = "checked_in"
	StatusCancelled = "cancelled"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)
