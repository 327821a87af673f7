package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/visionclara/clinic-scheduling/internal/directory"
	redisclient "github.com/visionclara/clinic-scheduling/internal/redis"
)

var (
	ErrUnknownPatient   = errors.New("patient not registered")
	ErrUnknownDoctor    = errors.New("doctor not found")
	ErrInvalidDate      = errors.New("invalid date format")
	ErrPastDate         = errors.New("appointment date must be in the future")
	ErrPatientSlotTaken = errors.New("patient already has an appointment at this date and time")
	ErrDoctorSlotTaken  = errors.New("doctor already has an appointment at this date and time")
	ErrScheduleBusy     = errors.New("schedule is busy, please retry")
)

// MissingFieldError reports the first absent booking field. Field holds
// the wire name of the field so callers can surface it verbatim.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// Wire names of the booking fields, in validation order.
const (
	FieldPatientRUT = "rut_paciente"
	FieldDoctorID   = "doctor_id"
	FieldDate       = "fecha"
	FieldHour       = "hora"
	FieldVisitType  = "tipo_consulta"
)

// Service validates booking requests and owns
// all mutations of the appointment collection.
//
// Every mutating operation runs under one mutex covering the full
// read-validate-append sequence; two concurrent requests must never both
// pass the conflict scans before either appends. With a locker
// configured (multi-process setups over a shared store), the same
// sequence additionally runs under the external schedule lock.
type Service struct {
	mu     sync.Mutex
	dir    *directory.Directory
	store  Store
	locker redisclient.Locker // nil means in-process serialization only

	now func() time.Time
}

func NewService(dir *directory.Directory, store Store, locker redisclient.Locker) *Service {
	return &Service{
		dir:    dir,
		store:  store,
		locker: locker,
		now:    time.Now,
	}
}

// Book runs the validation sequence and, on success, appends the new
// appointment. Checks are ordered and fail fast: the first failing check
// decides the rejection.
func (s *Service) Book(ctx context.Context, req BookingRequest) (*Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locker == nil {
		return s.book(ctx, req)
	}

	var created *Appointment
	err := s.locker.WithScheduleLock(ctx, func(ctx context.Context) error {
		appt, err := s.book(ctx, req)
		created = appt
		return err
	})
	if errors.Is(err, redisclient.ErrLockNotAcquired) {
		return nil, ErrScheduleBusy
	}
	return created, err
}

func (s *Service) book(ctx context.Context, req BookingRequest) (*Appointment, error) {
	// 1. Completeness, in wire-field order.
	for _, f := range []struct {
		name  string
		value string
	}{
		{FieldPatientRUT, req.PatientRUT},
		{FieldDoctorID, req.DoctorID},
		{FieldDate, req.Date},
		{FieldHour, req.Hour},
		{FieldVisitType, req.VisitType},
	} {
		if f.value == "" {
			return nil, &MissingFieldError{Field: f.name}
		}
	}

	// 2. Patient must exist.
	patient, ok := s.dir.Patient(req.PatientRUT)
	if !ok {
		return nil, ErrUnknownPatient
	}

	// 3. Doctor must exist; the raw id must parse first.
	doctorID, err := strconv.Atoi(strings.TrimSpace(req.DoctorID))
	if err != nil {
		return nil, ErrUnknownDoctor
	}
	doctor, ok := s.dir.Doctor(doctorID)
	if !ok {
		return nil, ErrUnknownDoctor
	}

	// 4. Date must parse and not lie in the past. Today is accepted.
	day, err := time.Parse(DateLayout, req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if day.Before(today) {
		return nil, ErrPastDate
	}

	// 5. Patient slot must be free among scheduled appointments.
	taken, err := s.store.HasPatientSlot(ctx, req.PatientRUT, req.Date, req.Hour)
	if err != nil {
		return nil, fmt.Errorf("scan patient slot: %w", err)
	}
	if taken {
		return nil, ErrPatientSlotTaken
	}

	// 6. Doctor slot must be free as well.
	taken, err = s.store.HasDoctorSlot(ctx, doctorID, req.Date, req.Hour)
	if err != nil {
		return nil, fmt.Errorf("scan doctor slot: %w", err)
	}
	if taken {
		return nil, ErrDoctorSlotTaken
	}

	appt, err := s.store.Append(ctx, Appointment{
		PatientRUT:  req.PatientRUT,
		PatientName: patient.Name,
		DoctorID:    doctorID,
		DoctorName:  doctor.Name,
		Date:        req.Date,
		Hour:        req.Hour,
		VisitType:   req.VisitType,
		Status:      StatusScheduled,
		CreatedAt:   s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("append appointment: %w", err)
	}
	return &appt, nil
}

// Cancel soft-deletes an appointment by identifier. Cancelling an
// already-cancelled appointment is a no-op success.
func (s *Service) Cancel(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.SetStatus(ctx, id, StatusCancelled)
}

// List returns every appointment, any status, in creation order.
func (s *Service) List(ctx context.Context) ([]Appointment, error) {
	return s.store.List(ctx)
}

// ListByPatient returns a patient's appointments in creation order.
func (s *Service) ListByPatient(ctx context.Context, rut string) ([]Appointment, error) {
	return s.store.ListByPatient(ctx, rut)
}

// Reset empties the collection. Identifier assignment restarts from 1
// afterwards, a consequence of count-based assignment. Idempotent.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.Clear(ctx)
}

// Status reports the system snapshot. The appointment count is the total
// collection size, cancelled records included, matching what callers
// display.
func (s *Service) Status(ctx context.Context) (Snapshot, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("count appointments: %w", err)
	}
	return Snapshot{
		Operational:      true,
		PatientCount:     s.dir.PatientCount(),
		DoctorCount:      s.dir.DoctorCount(),
		AppointmentCount: count,
		GeneratedAt:      s.now(),
	}, nil
}
