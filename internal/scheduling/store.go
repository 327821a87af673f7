package scheduling

import (
	"context"
	"errors"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// Store holds the appointment collection. Implementations assign
// identifiers on Append as current count + 1, so identifiers restart
// from 1 after Clear. The Has* scans consider only Scheduled rows;
// cancelled appointments never block a slot.
//
// Stores only need to make each call atomic. Serializing the whole
// check-then-append sequence is the Service's job.
type Store interface {
	// Append assigns the identifier and creation order and returns the
	// stored record.
	Append(ctx context.Context, appt Appointment) (Appointment, error)

	List(ctx context.Context) ([]Appointment, error)
	ListByPatient(ctx context.Context, rut string) ([]Appointment, error)
	Count(ctx context.Context) (int, error)

	// SetStatus updates the status of the appointment with the given
	// identifier, any current status. Returns ErrAppointmentNotFound if
	// no such appointment exists.
	SetStatus(ctx context.Context, id int, st Status) error

	// Clear removes every appointment record.
	Clear(ctx context.Context) error

	// Conflict scans used by the booking checks.
	HasPatientSlot(ctx context.Context, rut, date, hour string) (bool, error)
	HasDoctorSlot(ctx context.Context, doctorID int, date, hour string) (bool, error)
}
