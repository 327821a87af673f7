package scheduling

import "time"

// Status is the lifecycle state of an appointment. The values are the
// Spanish labels the callers display, so they go over the wire as-is.
type Status string

const (
	StatusScheduled Status = "Agendada"
	StatusCancelled Status = "Cancelada"
)

// DateLayout is the calendar format bookings must use.
const DateLayout = "2006-01-02"

// Appointment is one reserved slot. Patient and doctor display names are
// snapshotted at creation time so listings need no directory lookups.
type Appointment struct {
	ID          int
	PatientRUT  string
	PatientName string
	DoctorID    int
	DoctorName  string
	Date        string // YYYY-MM-DD
	Hour        string // free-form, e.g. "10:30"
	VisitType   string
	Status      Status
	CreatedAt   time.Time
}

// BookingRequest carries the raw field values of a booking attempt. All
// fields may be empty; the booking checks decide.
type BookingRequest struct {
	PatientRUT string
	DoctorID   string // raw, must parse as an integer
	Date       string
	Hour       string
	VisitType  string
}

// Snapshot is the system-status report.
type Snapshot struct {
	Operational      bool
	PatientCount     int
	DoctorCount      int
	AppointmentCount int
	GeneratedAt      time.Time
}
